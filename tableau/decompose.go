package tableau

import (
	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/internal/bitset"
)

// Recorder receives the local corrections pulled out of the tableau during
// decomposition. *clifford.Queue implements it.
type Recorder interface {
	ApplyRight(qubit int, c clifford.ID)
}

// Decompose reduces a column-major tableau to graph-state normal form: the
// active X block becomes the identity, the Z block a symmetric zero-diagonal
// adjacency matrix and the phases zero. Every local operation applied along
// the way is undone on the right of rec. The tableau is left row-major.
//
// Decompose panics with *InvariantViolation if a column has no pivot.
func (t *Tableau) Decompose(rec Recorder) {
	t.prepare(rec)
	n := t.nQubits

	for i := 0; i < n; i++ {
		t.pivot(i, rec)
		for j := i + 1; j < n; j++ {
			if bitset.Test(t.X(j), i) {
				t.Rowsum(i, j)
			}
		}
	}

	for i := 0; i < n; i++ {
		t.requirePivot(i)
		for j := 0; j < i; j++ {
			if bitset.Test(t.X(j), i) {
				t.Rowsum(i, j)
			}
		}
	}

	t.finish(rec)
}

// prepare makes every X row non-empty and transposes to row-major.
func (t *Tableau) prepare(rec Recorder) {
	t.require(ColumnMajor, "Decompose")
	n := t.nQubits
	for i := 0; i < n; i++ {
		if bitset.IsZero(t.X(i), t.rows) {
			t.ApplyLocal(clifford.H, i)
			rec.ApplyRight(i, clifford.H)
		}
	}
	t.Transpose()
}

// pivot makes X[i][i] set, trying a row swap, a Hadamard on column i, and a
// row swap followed by a Hadamard, in that order.
func (t *Tableau) pivot(i int, rec Recorder) {
	if bitset.Test(t.X(i), i) {
		return
	}
	n := t.nQubits

	if j := t.firstBelow(t.X, i, n); j != bitset.CTZSentinel {
		t.SwapRowContents(i, j)
		return
	}

	if bitset.Test(t.Z(i), i) {
		t.TransverseHadamard(i)
		rec.ApplyRight(i, clifford.H)
		return
	}

	if j := t.firstBelow(t.Z, i, n); j != bitset.CTZSentinel {
		t.SwapRowContents(i, j)
		t.TransverseHadamard(i)
		rec.ApplyRight(i, clifford.H)
		return
	}

	violate("Decompose", "no pivot for qubit %d", i)
}

// firstBelow returns the first row j in (i, n) with bit i set in block.
func (t *Tableau) firstBelow(block func(int) []uint64, i, n int) int {
	for j := i + 1; j < n; j++ {
		if bitset.Test(block(j), i) {
			return j
		}
	}
	return bitset.CTZSentinel
}

func (t *Tableau) requirePivot(i int) {
	if !bitset.Test(t.X(i), i) {
		violate("Decompose", "pivot for qubit %d lost", i)
	}
}

// finish clears the Z diagonal and the phases, recording S and Z.
func (t *Tableau) finish(rec Recorder) {
	n := t.nQubits
	for i := 0; i < n; i++ {
		if bitset.Test(t.Z(i), i) {
			t.TransversePhaseInverse(i)
			rec.ApplyRight(i, clifford.S)
		}
	}
	for i := 0; i < n; i++ {
		if bitset.Test(t.phases, i) {
			rec.ApplyRight(i, clifford.Z)
		}
	}
	t.ClearPhases()
}

// Adjacencies returns the neighbours of qubit q in a decomposed tableau.
func (t *Tableau) Adjacencies(q int) []int {
	t.require(RowMajor, "Adjacencies")
	return bitset.AppendSet(nil, t.Z(q), t.nQubits)
}

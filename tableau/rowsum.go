package tableau

import (
	"github.com/hupe1980/cabaliser/internal/bitset"
	"github.com/hupe1980/cabaliser/internal/simd"
)

// Rowsum multiplies generator row ctrl into row targ:
//
//	X[targ] ^= X[ctrl]; Z[targ] ^= Z[ctrl]
//	r[targ] ^= r[ctrl] ^ bit1(Σ g mod 4)
func (t *Tableau) Rowsum(ctrl, targ int) {
	t.require(RowMajor, "Rowsum")
	cx, cz, tx, tz := t.X(ctrl), t.Z(ctrl), t.X(targ), t.Z(targ)

	delta := simd.RowsumPhase(cx, cz, tx, tz)
	r := bitset.Get(t.phases, ctrl) ^ ((delta >> 1) & 1)
	bitset.Set(t.phases, targ, bitset.Get(t.phases, targ)^r)

	simd.XorWords(tx, cx)
	simd.XorWords(tz, cz)
}

// TransverseHadamard applies H to qubit column q of generator rows [0, n):
// the column bits swap between X and Z and phase ^= x&z.
func (t *Tableau) TransverseHadamard(q int) {
	t.require(RowMajor, "TransverseHadamard")
	for k := 0; k < t.nQubits; k++ {
		xr, zr := t.X(k), t.Z(k)
		x, z := bitset.Get(xr, q), bitset.Get(zr, q)
		if x&z == 1 {
			bitset.Flip(t.phases, k)
		}
		if x != z {
			bitset.Flip(xr, q)
			bitset.Flip(zr, q)
		}
	}
}

// TransversePhaseInverse applies S† to qubit column q of generator rows
// [0, n): phase ^= x&^z, then z ^= x.
func (t *Tableau) TransversePhaseInverse(q int) {
	t.require(RowMajor, "TransversePhaseInverse")
	for k := 0; k < t.nQubits; k++ {
		xr, zr := t.X(k), t.Z(k)
		if bitset.Get(xr, q) == 0 {
			continue
		}
		if bitset.Get(zr, q) == 0 {
			bitset.Flip(t.phases, k)
		}
		bitset.Flip(zr, q)
	}
}

package tableau

import (
	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/internal/simd"
)

// Kernel selects the gate engine form.
type Kernel uint8

const (
	// KernelVector composes the lane kernels of internal/simd.
	KernelVector Kernel = iota
	// KernelScalar loops over words with the closed-form update.
	KernelScalar
)

func (k Kernel) String() string {
	if k == KernelScalar {
		return "scalar"
	}
	return "vector"
}

// ==============================================================================
// Local Cliffords
// ==============================================================================
//
// A local gate rewrites the column-major (x, z) rows of one qubit and XORs
// the sign change into the phase vector. Phase terms read the rows before
// they change. Gates sharing a shape differ only in the phase term:
//
//	swap:  x, z = z, x        (H HX HY HZ)
//	z^=x:  z ^= x             (S R SX RX)
//	SH:    x, z = z, x^z      (SH RH SHY RHY)
//	HS:    x, z = x^z, x      (HS HR HSX HRX)
//	x^=z:  x ^= z             (HSH HRH RHS SHR)

type localVector func(r, x, z []uint64)

type localScalar func(x, z uint64) (xOut, zOut, dr uint64)

func shapeSH(x, z []uint64) {
	simd.XorWords(x, z)
	simd.SwapWords(x, z)
}

func shapeHS(x, z []uint64) {
	simd.XorWords(z, x)
	simd.SwapWords(x, z)
}

var vectorGates = [clifford.Count]localVector{
	clifford.I: func(_, _, _ []uint64) {},
	clifford.X: func(r, _, z []uint64) { simd.XorWords(r, z) },
	clifford.Y: func(r, x, z []uint64) { simd.XorXor(r, x, z) },
	clifford.Z: func(r, x, _ []uint64) { simd.XorWords(r, x) },
	clifford.H: func(r, x, z []uint64) {
		simd.XorAnd(r, x, z)
		simd.SwapWords(x, z)
	},
	clifford.S: func(r, x, z []uint64) {
		simd.XorAnd(r, x, z)
		simd.XorWords(z, x)
	},
	clifford.R: func(r, x, z []uint64) {
		simd.XorAndNot(r, x, z)
		simd.XorWords(z, x)
	},
	clifford.HX: func(r, x, z []uint64) {
		simd.XorAndNot(r, z, x)
		simd.SwapWords(x, z)
	},
	clifford.SX: func(r, x, z []uint64) {
		simd.XorAndNot(r, z, x)
		simd.XorWords(z, x)
	},
	clifford.RX: func(r, x, z []uint64) {
		simd.XorOr(r, x, z)
		simd.XorWords(z, x)
	},
	clifford.HY: func(r, x, z []uint64) {
		simd.XorOr(r, x, z)
		simd.SwapWords(x, z)
	},
	clifford.HZ: func(r, x, z []uint64) {
		simd.XorAndNot(r, x, z)
		simd.SwapWords(x, z)
	},
	clifford.SH: func(_, x, z []uint64) { shapeSH(x, z) },
	clifford.RH: func(r, x, z []uint64) {
		simd.XorWords(r, z)
		shapeSH(x, z)
	},
	clifford.HS: func(r, x, z []uint64) {
		simd.XorWords(r, x)
		shapeHS(x, z)
	},
	clifford.HR: func(_, x, z []uint64) { shapeHS(x, z) },
	clifford.HSX: func(r, x, z []uint64) {
		simd.XorXor(r, x, z)
		shapeHS(x, z)
	},
	clifford.HRX: func(r, x, z []uint64) {
		simd.XorWords(r, z)
		shapeHS(x, z)
	},
	clifford.SHY: func(r, x, z []uint64) {
		simd.XorXor(r, x, z)
		shapeSH(x, z)
	},
	clifford.RHY: func(r, x, z []uint64) {
		simd.XorWords(r, x)
		shapeSH(x, z)
	},
	clifford.HSH: func(r, x, z []uint64) {
		simd.XorAndNot(r, z, x)
		simd.XorWords(x, z)
	},
	clifford.HRH: func(r, x, z []uint64) {
		simd.XorAnd(r, x, z)
		simd.XorWords(x, z)
	},
	clifford.RHS: func(r, x, z []uint64) {
		simd.XorOr(r, x, z)
		simd.XorWords(x, z)
	},
	clifford.SHR: func(r, x, z []uint64) {
		simd.XorAndNot(r, x, z)
		simd.XorWords(x, z)
	},
}

var scalarGates = [clifford.Count]localScalar{
	clifford.I:   func(x, z uint64) (uint64, uint64, uint64) { return x, z, 0 },
	clifford.X:   func(x, z uint64) (uint64, uint64, uint64) { return x, z, z },
	clifford.Y:   func(x, z uint64) (uint64, uint64, uint64) { return x, z, x ^ z },
	clifford.Z:   func(x, z uint64) (uint64, uint64, uint64) { return x, z, x },
	clifford.H:   func(x, z uint64) (uint64, uint64, uint64) { return z, x, x & z },
	clifford.S:   func(x, z uint64) (uint64, uint64, uint64) { return x, z ^ x, x & z },
	clifford.R:   func(x, z uint64) (uint64, uint64, uint64) { return x, z ^ x, x &^ z },
	clifford.HX:  func(x, z uint64) (uint64, uint64, uint64) { return z, x, z &^ x },
	clifford.SX:  func(x, z uint64) (uint64, uint64, uint64) { return x, z ^ x, z &^ x },
	clifford.RX:  func(x, z uint64) (uint64, uint64, uint64) { return x, z ^ x, x | z },
	clifford.HY:  func(x, z uint64) (uint64, uint64, uint64) { return z, x, x | z },
	clifford.HZ:  func(x, z uint64) (uint64, uint64, uint64) { return z, x, x &^ z },
	clifford.SH:  func(x, z uint64) (uint64, uint64, uint64) { return z, x ^ z, 0 },
	clifford.RH:  func(x, z uint64) (uint64, uint64, uint64) { return z, x ^ z, z },
	clifford.HS:  func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, x, x },
	clifford.HR:  func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, x, 0 },
	clifford.HSX: func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, x, x ^ z },
	clifford.HRX: func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, x, z },
	clifford.SHY: func(x, z uint64) (uint64, uint64, uint64) { return z, x ^ z, x ^ z },
	clifford.RHY: func(x, z uint64) (uint64, uint64, uint64) { return z, x ^ z, x },
	clifford.HSH: func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, z, z &^ x },
	clifford.HRH: func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, z, x & z },
	clifford.RHS: func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, z, x | z },
	clifford.SHR: func(x, z uint64) (uint64, uint64, uint64) { return x ^ z, z, x &^ z },
}

// ApplyLocal applies the local Clifford id to qubit q with the vector engine.
func (t *Tableau) ApplyLocal(id clifford.ID, q int) {
	t.ApplyLocalRange(id, q, 0, t.wordsPerRow)
}

// ApplyLocalRange applies id to qubit q over words [lo, hi) of its rows.
func (t *Tableau) ApplyLocalRange(id clifford.ID, q, lo, hi int) {
	t.require(ColumnMajor, "ApplyLocal")
	vectorGates[id](t.phases[lo:hi], t.X(q)[lo:hi], t.Z(q)[lo:hi])
}

// ApplyScalarLocal applies id to qubit q with the scalar engine.
func (t *Tableau) ApplyScalarLocal(id clifford.ID, q int) {
	t.ApplyScalarLocalRange(id, q, 0, t.wordsPerRow)
}

// ApplyScalarLocalRange applies id to qubit q over words [lo, hi) with the
// scalar engine.
func (t *Tableau) ApplyScalarLocalRange(id clifford.ID, q, lo, hi int) {
	t.require(ColumnMajor, "ApplyScalarLocal")
	gate := scalarGates[id]
	x, z, r := t.X(q), t.Z(q), t.phases
	for i := lo; i < hi; i++ {
		var dr uint64
		x[i], z[i], dr = gate(x[i], z[i])
		r[i] ^= dr
	}
}

// ==============================================================================
// Two-qubit gates
// ==============================================================================

// ApplyCNOT applies CNOT(ctrl, targ) with the vector engine.
func (t *Tableau) ApplyCNOT(ctrl, targ int) {
	t.ApplyCNOTRange(ctrl, targ, 0, t.wordsPerRow)
}

// ApplyCNOTRange applies CNOT(ctrl, targ) over words [lo, hi).
func (t *Tableau) ApplyCNOTRange(ctrl, targ, lo, hi int) {
	t.require(ColumnMajor, "ApplyCNOT")
	t.requireDistinct("ApplyCNOT", ctrl, targ)
	simd.CNOT(t.phases[lo:hi], t.X(ctrl)[lo:hi], t.Z(ctrl)[lo:hi], t.X(targ)[lo:hi], t.Z(targ)[lo:hi])
}

// ApplyScalarCNOT applies CNOT(ctrl, targ) with the scalar engine.
func (t *Tableau) ApplyScalarCNOT(ctrl, targ int) {
	t.ApplyScalarCNOTRange(ctrl, targ, 0, t.wordsPerRow)
}

// ApplyScalarCNOTRange applies CNOT(ctrl, targ) over words [lo, hi) with the
// scalar engine.
func (t *Tableau) ApplyScalarCNOTRange(ctrl, targ, lo, hi int) {
	t.require(ColumnMajor, "ApplyScalarCNOT")
	t.requireDistinct("ApplyScalarCNOT", ctrl, targ)
	xc, zc, xt, zt, r := t.X(ctrl), t.Z(ctrl), t.X(targ), t.Z(targ), t.phases
	for i := lo; i < hi; i++ {
		r[i] ^= xc[i] & zt[i] &^ (xt[i] ^ zc[i])
		xt[i] ^= xc[i]
		zc[i] ^= zt[i]
	}
}

// ApplyCZ applies CZ(a, b) with the vector engine.
func (t *Tableau) ApplyCZ(a, b int) {
	t.ApplyCZRange(a, b, 0, t.wordsPerRow)
}

// ApplyCZRange applies CZ(a, b) over words [lo, hi).
func (t *Tableau) ApplyCZRange(a, b, lo, hi int) {
	t.require(ColumnMajor, "ApplyCZ")
	t.requireDistinct("ApplyCZ", a, b)
	simd.CZ(t.phases[lo:hi], t.X(a)[lo:hi], t.Z(a)[lo:hi], t.X(b)[lo:hi], t.Z(b)[lo:hi])
}

// ApplyScalarCZ applies CZ(a, b) with the scalar engine.
func (t *Tableau) ApplyScalarCZ(a, b int) {
	t.ApplyScalarCZRange(a, b, 0, t.wordsPerRow)
}

// ApplyScalarCZRange applies CZ(a, b) over words [lo, hi) with the scalar
// engine.
func (t *Tableau) ApplyScalarCZRange(a, b, lo, hi int) {
	t.require(ColumnMajor, "ApplyScalarCZ")
	t.requireDistinct("ApplyScalarCZ", a, b)
	xa, za, xb, zb, r := t.X(a), t.Z(a), t.X(b), t.Z(b), t.phases
	for i := lo; i < hi; i++ {
		r[i] ^= xa[i] & xb[i] & (za[i] ^ zb[i])
		za[i] ^= xb[i]
		zb[i] ^= xa[i]
	}
}

func (t *Tableau) requireDistinct(op string, a, b int) {
	if a == b {
		violate(op, "operands must differ, both are %d", a)
	}
}

// ==============================================================================
// Kernel-selected entry points
// ==============================================================================

// LocalRange applies id to qubit q over [lo, hi) with kernel k.
func (t *Tableau) LocalRange(k Kernel, id clifford.ID, q, lo, hi int) {
	if k == KernelScalar {
		t.ApplyScalarLocalRange(id, q, lo, hi)
		return
	}
	t.ApplyLocalRange(id, q, lo, hi)
}

// CNOTRange applies CNOT(ctrl, targ) over [lo, hi) with kernel k.
func (t *Tableau) CNOTRange(k Kernel, ctrl, targ, lo, hi int) {
	if k == KernelScalar {
		t.ApplyScalarCNOTRange(ctrl, targ, lo, hi)
		return
	}
	t.ApplyCNOTRange(ctrl, targ, lo, hi)
}

// CZRange applies CZ(a, b) over [lo, hi) with kernel k.
func (t *Tableau) CZRange(k Kernel, a, b, lo, hi int) {
	if k == KernelScalar {
		t.ApplyScalarCZRange(a, b, lo, hi)
		return
	}
	t.ApplyCZRange(a, b, lo, hi)
}

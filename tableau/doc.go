// Package tableau implements a bit-packed stabilizer tableau and its
// reduction to graph-state normal form.
//
// Rows live in one 64-byte aligned buffer: the X block, then the Z block.
// Column-major rows are qubits and carry the gate engine; row-major rows are
// generators and carry rowsum and decomposition. Transpose switches between
// the two.
//
// Every local gate and CNOT/CZ exists in a vector form built from the lane
// kernels of internal/simd and a scalar form; both produce identical bits.
// Range forms restrict a gate to a word range so a pool can split it.
//
//	tab, _ := tableau.New(3, 9)
//	tab.ApplyLocal(clifford.H, 0)
//	tab.ApplyCNOT(0, 1)
//	tab.Decompose(queue) // queue receives the local corrections
package tableau

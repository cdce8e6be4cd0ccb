// Package simd provides the bit-parallel kernels behind the tableau.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON, SVE2
//
// Runtime CPU feature detection selects the lane kernels, which step four
// 64-bit words at a time. Build with -tags noasm, or set CABALISER_SIMD=words,
// to force the word-at-a-time kernels. Both paths compute identical results.
//
// # Operations
//
//   - Words: And, AndNot, Or, Xor, Swap, Popcount
//   - Gates: XorAnd, XorAndNot, XorOr, XorXor, CNOT, CZ
//   - Transpose: 64x64 bit tiles (masked swap, 16x16 blocks, bit loop)
//   - Rowsum: the phase exponent of a Pauli string product
package simd

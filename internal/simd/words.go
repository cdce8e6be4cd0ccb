package simd

import "math/bits"

// ==============================================================================
// Word kernels
// ==============================================================================
//
// These operate on []uint64 bit rows. Every kernel assumes all slices have the
// same length; callers slice them first. The generic versions walk one word at
// a time. The lane versions (see lanes.go) process four words per step, the
// width of one 256-bit register, and are chosen at init.

var (
	kernelAndWords      = andWordsGeneric
	kernelAndNotWords   = andNotWordsGeneric
	kernelOrWords       = orWordsGeneric
	kernelXorWords      = xorWordsGeneric
	kernelSwapWords     = swapWordsGeneric
	kernelPopcountWords = popcountWordsGeneric

	kernelXorAnd    = xorAndGeneric
	kernelXorAndNot = xorAndNotGeneric
	kernelXorOr     = xorOrGeneric
	kernelXorXor    = xorXorGeneric
	kernelCNOT      = cnotGeneric
	kernelCZ        = czGeneric
)

// AndWords performs dst[i] &= src[i].
func AndWords(dst, src []uint64) {
	kernelAndWords(dst, src)
}

// AndNotWords performs dst[i] &= ^src[i].
func AndNotWords(dst, src []uint64) {
	kernelAndNotWords(dst, src)
}

// OrWords performs dst[i] |= src[i].
func OrWords(dst, src []uint64) {
	kernelOrWords(dst, src)
}

// XorWords performs dst[i] ^= src[i].
func XorWords(dst, src []uint64) {
	kernelXorWords(dst, src)
}

// SwapWords exchanges a[i] and b[i].
func SwapWords(a, b []uint64) {
	kernelSwapWords(a, b)
}

// PopcountWords counts all set bits across words.
func PopcountWords(words []uint64) int {
	return kernelPopcountWords(words)
}

// XorAnd performs r[i] ^= a[i] & b[i].
func XorAnd(r, a, b []uint64) {
	kernelXorAnd(r, a, b)
}

// XorAndNot performs r[i] ^= a[i] &^ b[i].
func XorAndNot(r, a, b []uint64) {
	kernelXorAndNot(r, a, b)
}

// XorOr performs r[i] ^= a[i] | b[i].
func XorOr(r, a, b []uint64) {
	kernelXorOr(r, a, b)
}

// XorXor performs r[i] ^= a[i] ^ b[i].
func XorXor(r, a, b []uint64) {
	kernelXorXor(r, a, b)
}

// CNOT applies the controlled-not update to the control rows (xc, zc),
// the target rows (xt, zt) and the phase row r:
//
//	r ^= xc & zt & ^(xt ^ zc); xt ^= xc; zc ^= zt
func CNOT(r, xc, zc, xt, zt []uint64) {
	kernelCNOT(r, xc, zc, xt, zt)
}

// CZ applies the controlled-Z update to rows (xa, za), (xb, zb) and phase r:
//
//	r ^= xa & xb & (za ^ zb); za ^= xb; zb ^= xa
func CZ(r, xa, za, xb, zb []uint64) {
	kernelCZ(r, xa, za, xb, zb)
}

// ==============================================================================
// Generic implementations
// ==============================================================================

func andWordsGeneric(dst, src []uint64) {
	for i := range dst {
		dst[i] &= src[i]
	}
}

func andNotWordsGeneric(dst, src []uint64) {
	for i := range dst {
		dst[i] &^= src[i]
	}
}

func orWordsGeneric(dst, src []uint64) {
	for i := range dst {
		dst[i] |= src[i]
	}
}

func xorWordsGeneric(dst, src []uint64) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func swapWordsGeneric(a, b []uint64) {
	for i := range a {
		a[i], b[i] = b[i], a[i]
	}
}

func popcountWordsGeneric(words []uint64) int {
	count := 0
	for _, w := range words {
		count += bits.OnesCount64(w)
	}
	return count
}

func xorAndGeneric(r, a, b []uint64) {
	for i := range r {
		r[i] ^= a[i] & b[i]
	}
}

func xorAndNotGeneric(r, a, b []uint64) {
	for i := range r {
		r[i] ^= a[i] &^ b[i]
	}
}

func xorOrGeneric(r, a, b []uint64) {
	for i := range r {
		r[i] ^= a[i] | b[i]
	}
}

func xorXorGeneric(r, a, b []uint64) {
	for i := range r {
		r[i] ^= a[i] ^ b[i]
	}
}

func cnotGeneric(r, xc, zc, xt, zt []uint64) {
	for i := range r {
		r[i] ^= xc[i] & zt[i] &^ (xt[i] ^ zc[i])
		xt[i] ^= xc[i]
		zc[i] ^= zt[i]
	}
}

func czGeneric(r, xa, za, xb, zb []uint64) {
	for i := range r {
		r[i] ^= xa[i] & xb[i] & (za[i] ^ zb[i])
		za[i] ^= xb[i]
		zb[i] ^= xa[i]
	}
}

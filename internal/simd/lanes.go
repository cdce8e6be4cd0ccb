package simd

import "math/bits"

// Lane kernels process one 256-bit register worth of words (four uint64 lanes)
// per step and finish the tail word by word. They compute exactly the same
// function as the generic kernels.

// LaneWords is the number of 64-bit lanes per step.
const LaneWords = 4

// UseLaneKernels installs the lane kernels. Called from the per-arch init.
func UseLaneKernels() {
	kernelAndWords = andWordsLanes
	kernelAndNotWords = andNotWordsLanes
	kernelOrWords = orWordsLanes
	kernelXorWords = xorWordsLanes
	kernelSwapWords = swapWordsLanes
	kernelPopcountWords = popcountWordsLanes
	kernelXorAnd = xorAndLanes
	kernelXorAndNot = xorAndNotLanes
	kernelXorOr = xorOrLanes
	kernelXorXor = xorXorLanes
	kernelCNOT = cnotLanes
	kernelCZ = czLanes
	kernelRowsumPhase = rowsumPhaseLanes
	kernelTranspose64 = Transpose64Words
}

// UseGenericKernels restores the word-at-a-time kernels.
func UseGenericKernels() {
	kernelAndWords = andWordsGeneric
	kernelAndNotWords = andNotWordsGeneric
	kernelOrWords = orWordsGeneric
	kernelXorWords = xorWordsGeneric
	kernelSwapWords = swapWordsGeneric
	kernelPopcountWords = popcountWordsGeneric
	kernelXorAnd = xorAndGeneric
	kernelXorAndNot = xorAndNotGeneric
	kernelXorOr = xorOrGeneric
	kernelXorXor = xorXorGeneric
	kernelCNOT = cnotGeneric
	kernelCZ = czGeneric
	kernelRowsumPhase = rowsumPhaseGeneric
	kernelTranspose64 = Transpose64Words
}

func andWordsLanes(dst, src []uint64) {
	i := 0
	for ; i+LaneWords <= len(dst); i += LaneWords {
		dst[i] &= src[i]
		dst[i+1] &= src[i+1]
		dst[i+2] &= src[i+2]
		dst[i+3] &= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] &= src[i]
	}
}

func andNotWordsLanes(dst, src []uint64) {
	i := 0
	for ; i+LaneWords <= len(dst); i += LaneWords {
		dst[i] &^= src[i]
		dst[i+1] &^= src[i+1]
		dst[i+2] &^= src[i+2]
		dst[i+3] &^= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] &^= src[i]
	}
}

func orWordsLanes(dst, src []uint64) {
	i := 0
	for ; i+LaneWords <= len(dst); i += LaneWords {
		dst[i] |= src[i]
		dst[i+1] |= src[i+1]
		dst[i+2] |= src[i+2]
		dst[i+3] |= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] |= src[i]
	}
}

func xorWordsLanes(dst, src []uint64) {
	i := 0
	for ; i+LaneWords <= len(dst); i += LaneWords {
		dst[i] ^= src[i]
		dst[i+1] ^= src[i+1]
		dst[i+2] ^= src[i+2]
		dst[i+3] ^= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] ^= src[i]
	}
}

func swapWordsLanes(a, b []uint64) {
	i := 0
	for ; i+LaneWords <= len(a); i += LaneWords {
		a0, a1, a2, a3 := a[i], a[i+1], a[i+2], a[i+3]
		a[i], a[i+1], a[i+2], a[i+3] = b[i], b[i+1], b[i+2], b[i+3]
		b[i], b[i+1], b[i+2], b[i+3] = a0, a1, a2, a3
	}
	for ; i < len(a); i++ {
		a[i], b[i] = b[i], a[i]
	}
}

func popcountWordsLanes(words []uint64) int {
	var c0, c1, c2, c3 int
	i := 0
	for ; i+LaneWords <= len(words); i += LaneWords {
		c0 += bits.OnesCount64(words[i])
		c1 += bits.OnesCount64(words[i+1])
		c2 += bits.OnesCount64(words[i+2])
		c3 += bits.OnesCount64(words[i+3])
	}
	for ; i < len(words); i++ {
		c0 += bits.OnesCount64(words[i])
	}
	return c0 + c1 + c2 + c3
}

func xorAndLanes(r, a, b []uint64) {
	i := 0
	for ; i+LaneWords <= len(r); i += LaneWords {
		r[i] ^= a[i] & b[i]
		r[i+1] ^= a[i+1] & b[i+1]
		r[i+2] ^= a[i+2] & b[i+2]
		r[i+3] ^= a[i+3] & b[i+3]
	}
	for ; i < len(r); i++ {
		r[i] ^= a[i] & b[i]
	}
}

func xorAndNotLanes(r, a, b []uint64) {
	i := 0
	for ; i+LaneWords <= len(r); i += LaneWords {
		r[i] ^= a[i] &^ b[i]
		r[i+1] ^= a[i+1] &^ b[i+1]
		r[i+2] ^= a[i+2] &^ b[i+2]
		r[i+3] ^= a[i+3] &^ b[i+3]
	}
	for ; i < len(r); i++ {
		r[i] ^= a[i] &^ b[i]
	}
}

func xorOrLanes(r, a, b []uint64) {
	i := 0
	for ; i+LaneWords <= len(r); i += LaneWords {
		r[i] ^= a[i] | b[i]
		r[i+1] ^= a[i+1] | b[i+1]
		r[i+2] ^= a[i+2] | b[i+2]
		r[i+3] ^= a[i+3] | b[i+3]
	}
	for ; i < len(r); i++ {
		r[i] ^= a[i] | b[i]
	}
}

func xorXorLanes(r, a, b []uint64) {
	i := 0
	for ; i+LaneWords <= len(r); i += LaneWords {
		r[i] ^= a[i] ^ b[i]
		r[i+1] ^= a[i+1] ^ b[i+1]
		r[i+2] ^= a[i+2] ^ b[i+2]
		r[i+3] ^= a[i+3] ^ b[i+3]
	}
	for ; i < len(r); i++ {
		r[i] ^= a[i] ^ b[i]
	}
}

func cnotLanes(r, xc, zc, xt, zt []uint64) {
	i := 0
	for ; i+LaneWords <= len(r); i += LaneWords {
		for l := i; l < i+LaneWords; l++ {
			r[l] ^= xc[l] & zt[l] &^ (xt[l] ^ zc[l])
			xt[l] ^= xc[l]
			zc[l] ^= zt[l]
		}
	}
	for ; i < len(r); i++ {
		r[i] ^= xc[i] & zt[i] &^ (xt[i] ^ zc[i])
		xt[i] ^= xc[i]
		zc[i] ^= zt[i]
	}
}

func czLanes(r, xa, za, xb, zb []uint64) {
	i := 0
	for ; i+LaneWords <= len(r); i += LaneWords {
		for l := i; l < i+LaneWords; l++ {
			r[l] ^= xa[l] & xb[l] & (za[l] ^ zb[l])
			za[l] ^= xb[l]
			zb[l] ^= xa[l]
		}
	}
	for ; i < len(r); i++ {
		r[i] ^= xa[i] & xb[i] & (za[i] ^ zb[i])
		za[i] ^= xb[i]
		zb[i] ^= xa[i]
	}
}

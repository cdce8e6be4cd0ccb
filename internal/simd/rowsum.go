package simd

import "math/bits"

// gTable holds the phase exponent (mod 4) picked up when the single-qubit
// Pauli (tx, tz) is multiplied on the left by (cx, cz). Index is
// cx | cz<<1 | tx<<2 | tz<<3; 3 stands for -1.
var gTable = [16]uint8{0, 0, 0, 0, 0, 0, 1, 3, 0, 3, 0, 1, 0, 1, 3, 0}

var kernelRowsumPhase = rowsumPhaseGeneric

// GFunction returns the phase exponent mod 4 for one qubit position.
func GFunction(cx, cz, tx, tz uint64) uint8 {
	return gTable[(cx&1)|(cz&1)<<1|(tx&1)<<2|(tz&1)<<3]
}

// RowsumPhase returns the summed phase exponent mod 4 of multiplying the
// target Pauli string (tx, tz) by the control string (cx, cz).
func RowsumPhase(cx, cz, tx, tz []uint64) uint64 {
	return kernelRowsumPhase(cx, cz, tx, tz)
}

// RowsumPhaseLookup computes RowsumPhase one bit at a time through GFunction.
func RowsumPhaseLookup(cx, cz, tx, tz []uint64) uint64 {
	var sum uint64
	for w := range cx {
		for b := uint(0); b < 64; b++ {
			sum += uint64(GFunction(cx[w]>>b, cz[w]>>b, tx[w]>>b, tz[w]>>b))
		}
	}
	return sum & 3
}

func rowsumTerms(cx, cz, tx, tz uint64) (plus, minus uint64) {
	plus = (^cx & cz & tx & ^tz) | (cx & cz & ^tx & tz) | (cx & ^cz & tx & tz)
	minus = (cx & cz & tx & ^tz) | (cx & ^cz & ^tx & tz) | (^cx & cz & tx & tz)
	return plus, minus
}

func rowsumPhaseGeneric(cx, cz, tx, tz []uint64) uint64 {
	var plus, minus int
	for i := range cx {
		p, m := rowsumTerms(cx[i], cz[i], tx[i], tz[i])
		plus += bits.OnesCount64(p)
		minus += bits.OnesCount64(m)
	}
	return uint64((plus - minus) & 3)
}

func rowsumPhaseLanes(cx, cz, tx, tz []uint64) uint64 {
	var acc [LaneWords]int
	i := 0
	for ; i+LaneWords <= len(cx); i += LaneWords {
		for l := 0; l < LaneWords; l++ {
			p, m := rowsumTerms(cx[i+l], cz[i+l], tx[i+l], tz[i+l])
			acc[l] += bits.OnesCount64(p) - bits.OnesCount64(m)
		}
	}
	for ; i < len(cx); i++ {
		p, m := rowsumTerms(cx[i], cz[i], tx[i], tz[i])
		acc[0] += bits.OnesCount64(p) - bits.OnesCount64(m)
	}
	return uint64((acc[0] + acc[1] + acc[2] + acc[3]) & 3)
}

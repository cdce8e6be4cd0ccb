package bitset

import (
	"math/bits"

	"github.com/hupe1980/cabaliser/internal/simd"
)

// CTZSentinel is returned by CountTrailingZero and NextSet when no bit is set.
const CTZSentinel = -1

// WordBits is the number of bits per word.
const WordBits = 64

// Words returns the number of words needed to hold nBits bits.
func Words(nBits int) int {
	return (nBits + WordBits - 1) / WordBits
}

// Get returns bit i of row as 0 or 1.
func Get(row []uint64, i int) uint64 {
	return (row[i>>6] >> (uint(i) & 63)) & 1
}

// Test reports whether bit i of row is set.
func Test(row []uint64, i int) bool {
	return row[i>>6]&(uint64(1)<<(uint(i)&63)) != 0
}

// Set writes the low bit of v into bit i of row.
func Set(row []uint64, i int, v uint64) {
	mask := uint64(1) << (uint(i) & 63)
	w := i >> 6
	row[w] = (row[w] &^ mask) | ((v & 1) << (uint(i) & 63))
}

// Flip toggles bit i of row.
func Flip(row []uint64, i int) {
	row[i>>6] ^= uint64(1) << (uint(i) & 63)
}

// CountTrailingZero returns the index of the first set bit below nBits,
// or CTZSentinel if there is none.
func CountTrailingZero(row []uint64, nBits int) int {
	return NextSet(row, 0, nBits)
}

// NextSet returns the index of the first set bit in [from, nBits),
// or CTZSentinel if there is none.
func NextSet(row []uint64, from, nBits int) int {
	if from >= nBits {
		return CTZSentinel
	}

	w := from >> 6
	last := (nBits - 1) >> 6

	word := row[w] &^ ((uint64(1) << (uint(from) & 63)) - 1)
	for {
		if w == last {
			// Mask bits at or above nBits in the final word.
			if tail := uint(nBits) & 63; tail != 0 {
				word &= (uint64(1) << tail) - 1
			}
		}
		if word != 0 {
			return w<<6 + bits.TrailingZeros64(word)
		}
		w++
		if w > last {
			return CTZSentinel
		}
		word = row[w]
	}
}

// IsZero reports whether no bit below nBits is set.
func IsZero(row []uint64, nBits int) bool {
	return CountTrailingZero(row, nBits) == CTZSentinel
}

// Count returns the number of set bits below nBits.
func Count(row []uint64, nBits int) int {
	full := nBits >> 6
	n := simd.PopcountWords(row[:full])
	if tail := uint(nBits) & 63; tail != 0 {
		n += bits.OnesCount64(row[full] & ((uint64(1) << tail) - 1))
	}
	return n
}

// Xor performs dst ^= src over the shorter of the two rows.
func Xor(dst, src []uint64) {
	n := min(len(dst), len(src))
	simd.XorWords(dst[:n], src[:n])
}

// Swap exchanges the contents of a and b.
func Swap(a, b []uint64) {
	n := min(len(a), len(b))
	simd.SwapWords(a[:n], b[:n])
}

// Clear zeroes every word of row.
func Clear(row []uint64) {
	clear(row)
}

// AppendSet appends the indices of all set bits below nBits to dst.
func AppendSet(dst []int, row []uint64, nBits int) []int {
	for i := NextSet(row, 0, nBits); i != CTZSentinel; i = NextSet(row, i+1, nBits) {
		dst = append(dst, i)
	}
	return dst
}

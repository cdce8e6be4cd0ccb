package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every buffer handed out by this package.
// It matches a cache line and an AVX-512 register.
const Alignment = 64

// WordsPerLine is the number of 64-bit words in one aligned line.
const WordsPerLine = Alignment / 8

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// The function allocates slightly more memory than requested; the underlying
// array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedWords allocates n zeroed uint64 words starting on a 64-byte boundary.
func AllocAlignedWords(n int) []uint64 {
	if n <= 0 {
		return nil
	}
	raw := AllocAligned(n * 8)
	ptr := unsafe.Pointer(&raw[0])     //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*uint64)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}

// RoundUpWords rounds n up to a whole number of aligned lines.
func RoundUpWords(n int) int {
	if n <= 0 {
		return WordsPerLine
	}
	return (n + WordsPerLine - 1) / WordsPerLine * WordsPerLine
}

// IsAligned reports whether the first element of words sits on a 64-byte boundary.
func IsAligned(words []uint64) bool {
	if len(words) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&words[0]))%Alignment == 0 //nolint:gosec // address inspection only
}

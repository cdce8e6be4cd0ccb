// Package bitset provides bit-slice primitives over packed []uint64 rows.
//
// Bit i of a row lives in word i/64 at position i%64. Every higher-level
// tableau routine is written in terms of Get, Set, CountTrailingZero and
// whole-row Xor; no accessor reads or writes outside [0, nBits).
package bitset

// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Tableau buffers are carved from 64-byte aligned word slices so that every
// row starts on a cache line and whole-line vector loads never straddle two
// lines.
package mem

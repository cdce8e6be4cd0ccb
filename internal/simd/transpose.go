package simd

// ==============================================================================
// 64x64 bit-tile transpose
// ==============================================================================
//
// A tile is 64 words; bit c of word r is element (r, c). Transposing moves it
// to bit r of word c. Three kernels compute the same result:
//
//   - Transpose64Chunk: nested loops over bits, the reference.
//   - Transpose64Words: recursive masked swap over halves, quarters, ...
//   - Transpose64Blocks: sixteen 16x16 transposes, each built from a
//     byte-lane extract/deposit primitive (Transpose16).
//
// Both kernel sets dispatch to Transpose64Words. Transpose64Blocks is kept
// as the cross-checked block form.

// Tile is a 64x64 bit matrix.
type Tile = [64]uint64

var kernelTranspose64 = Transpose64Words

// Transpose64 transposes t in place with the kernel set chosen at init.
func Transpose64(t *Tile) {
	kernelTranspose64(t)
}

// Transpose64Chunk is the bit-by-bit reference transpose.
func Transpose64Chunk(t *Tile) {
	var out Tile
	for r := 0; r < 64; r++ {
		w := t[r]
		for c := 0; c < 64; c++ {
			out[c] |= ((w >> uint(c)) & 1) << uint(r)
		}
	}
	*t = out
}

// Transpose64Words transposes t with six rounds of masked block swaps.
func Transpose64Words(t *Tile) {
	j := uint(32)
	m := uint64(0x00000000FFFFFFFF)
	for j != 0 {
		for k := uint(0); k < 64; k = (k + j + 1) &^ j {
			x := ((t[k] >> j) ^ t[k+j]) & m
			t[k+j] ^= x
			t[k] ^= x << j
		}
		j >>= 1
		m ^= m << j
	}
}

// Transpose64Blocks transposes t as a 4x4 grid of 16x16 blocks. Block (R, C)
// is transposed by Transpose16 and routed to block (C, R).
func Transpose64Blocks(t *Tile) {
	var out Tile
	var block [16]uint16
	for br := 0; br < 4; br++ {
		for bc := 0; bc < 4; bc++ {
			shift := uint(bc * 16)
			for r := 0; r < 16; r++ {
				block[r] = uint16(t[br*16+r] >> shift)
			}
			Transpose16(&block)
			dst := uint(br * 16)
			for c := 0; c < 16; c++ {
				out[bc*16+c] |= uint64(block[c]) << dst
			}
		}
	}
	*t = out
}

const byteColumn = 0x0101010101010101

// Transpose16 transposes a 16x16 bit block in place.
//
// The block is viewed as one 256-bit value held in four 64-bit lanes: the low
// and high bytes of rows 0-7 (left half) and of rows 8-15 (right half). Output
// row c takes bit c&7 of every byte in the lane that holds byte c/8 of its
// rows: an extract with mask 0x0101..01<<(c&7) per half. The left half fills
// the low byte of the result and the right half the high byte.
func Transpose16(b *[16]uint16) {
	var lowLeft, highLeft, lowRight, highRight uint64
	for r := 0; r < 8; r++ {
		sh := uint(8 * r)
		lowLeft |= uint64(b[r]&0xFF) << sh
		highLeft |= uint64(b[r]>>8) << sh
		lowRight |= uint64(b[r+8]&0xFF) << sh
		highRight |= uint64(b[r+8]>>8) << sh
	}

	for c := 0; c < 16; c++ {
		left, right := lowLeft, lowRight
		if c >= 8 {
			left, right = highLeft, highRight
		}
		bit := uint(c & 7)
		b[c] = uint16(extractByteColumn(left, bit) | extractByteColumn(right, bit)<<8)
	}
}

// extractByteColumn is PEXT with mask byteColumn<<bit: bit k of the result is
// bit (8k + bit) of x. The multiply gathers the eight isolated bits into the
// top byte without carries between partial products.
func extractByteColumn(x uint64, bit uint) uint64 {
	y := (x >> bit) & byteColumn
	return (y * 0x0102040810204080) >> 56
}

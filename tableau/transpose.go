package tableau

import (
	"github.com/hupe1980/cabaliser/internal/bitset"
	"github.com/hupe1980/cabaliser/internal/simd"
)

// naiveTransposeLimit is the active size below which transposes go bit by bit.
const naiveTransposeLimit = 64

// Transpose transposes the active n×n square of both blocks and flips the
// orientation. Bits outside the square are identity or zero in both
// orientations and are left alone.
func (t *Tableau) Transpose() {
	if t.nQubits < naiveTransposeLimit {
		t.TransposeNaive()
		return
	}
	t.TransposeTiled()
}

// TransposeNaive swaps (i, j) with (j, i) for every i < j < n.
func (t *Tableau) TransposeNaive() {
	n := t.nQubits
	for _, row := range []func(int) []uint64{t.X, t.Z} {
		for i := 0; i < n; i++ {
			ri := row(i)
			for j := i + 1; j < n; j++ {
				rj := row(j)
				a, b := bitset.Get(ri, j), bitset.Get(rj, i)
				if a != b {
					bitset.Flip(ri, j)
					bitset.Flip(rj, i)
				}
			}
		}
	}
	t.flip()
}

// TransposeTiled transposes the leading ceil(n/64) tiles of each block with
// the 64x64 kernel of the active ISA.
func (t *Tableau) TransposeTiled() {
	tiles := (t.nQubits + 63) / 64
	var a, b simd.Tile
	for _, row := range []func(int) []uint64{t.X, t.Z} {
		for ti := 0; ti < tiles; ti++ {
			loadTile(row, ti, ti, &a)
			simd.Transpose64(&a)
			storeTile(row, ti, ti, &a)

			for tj := ti + 1; tj < tiles; tj++ {
				loadTile(row, ti, tj, &a)
				loadTile(row, tj, ti, &b)
				simd.Transpose64(&a)
				simd.Transpose64(&b)
				storeTile(row, tj, ti, &a)
				storeTile(row, ti, tj, &b)
			}
		}
	}
	t.flip()
}

func loadTile(row func(int) []uint64, ti, tj int, tile *simd.Tile) {
	base := ti * 64
	for r := 0; r < 64; r++ {
		tile[r] = row(base + r)[tj]
	}
}

func storeTile(row func(int) []uint64, ti, tj int, tile *simd.Tile) {
	base := ti * 64
	for r := 0; r < 64; r++ {
		row(base + r)[tj] = tile[r]
	}
}

func (t *Tableau) flip() {
	if t.orientation == ColumnMajor {
		t.orientation = RowMajor
	} else {
		t.orientation = ColumnMajor
	}
}

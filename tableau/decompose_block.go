package tableau

import (
	"math/bits"

	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/internal/bitset"
	"github.com/hupe1980/cabaliser/internal/simd"
)

// columnCache holds the diagonal X tile of the current pivot, transposed:
// bit r of cols[k] is X[base+r][base+k].
type columnCache struct {
	t    *Tableau
	tile int
	cols simd.Tile
}

func (c *columnCache) load(tile int) {
	c.tile = tile
	loadTile(c.t.X, tile, tile, &c.cols)
	simd.Transpose64(&c.cols)
}

func (c *columnCache) ensure(tile int) {
	if c.tile != tile {
		c.load(tile)
	}
}

func (c *columnCache) reload() {
	c.load(c.tile)
}

// eliminated records that row i was added into the tile rows in mask.
func (c *columnCache) eliminated(i int, mask uint64) {
	if mask == 0 {
		return
	}
	for w := c.t.X(i)[c.tile]; w != 0; w &= w - 1 {
		c.cols[bits.TrailingZeros64(w)] ^= mask
	}
}

// DecomposeBlock is Decompose with pivot search and elimination done on
// 64-row tiles. It finds pivots with a count-trailing-zeros over a cached
// transposed diagonal tile and gathers column words for the other tiles.
// The result is bit-identical to Decompose.
func (t *Tableau) DecomposeBlock(rec Recorder) {
	t.prepare(rec)
	n := t.nQubits
	tiles := (n + 63) / 64
	cache := &columnCache{t: t, tile: -1}

	for i := 0; i < n; i++ {
		tile, k := i/64, uint(i%64)
		cache.ensure(tile)
		t.blockPivot(cache, i, rec)

		local := cache.cols[k] & above(k) & rowMask(tile, n)
		for m := local; m != 0; m &= m - 1 {
			t.Rowsum(i, tile*64+bits.TrailingZeros64(m))
		}
		cache.eliminated(i, local)

		for u := tile + 1; u < tiles; u++ {
			for m := t.gather(t.X, u, i, n); m != 0; m &= m - 1 {
				t.Rowsum(i, u*64+bits.TrailingZeros64(m))
			}
		}
	}

	cache.tile = -1
	for i := 0; i < n; i++ {
		tile, k := i/64, uint(i%64)
		cache.ensure(tile)
		if cache.cols[k]&(uint64(1)<<k) == 0 {
			violate("DecomposeBlock", "pivot for qubit %d lost", i)
		}

		for u := 0; u < tile; u++ {
			for m := t.gather(t.X, u, i, n); m != 0; m &= m - 1 {
				t.Rowsum(i, u*64+bits.TrailingZeros64(m))
			}
		}

		local := cache.cols[k] & (uint64(1)<<k - 1)
		for m := local; m != 0; m &= m - 1 {
			t.Rowsum(i, tile*64+bits.TrailingZeros64(m))
		}
		cache.eliminated(i, local)
	}

	t.finish(rec)
}

func (t *Tableau) blockPivot(cache *columnCache, i int, rec Recorder) {
	tile, k := i/64, uint(i%64)
	if cache.cols[k]&(uint64(1)<<k) != 0 {
		return
	}
	n := t.nQubits

	if j := t.blockFirstBelow(t.X, cache.cols[k], i); j != bitset.CTZSentinel {
		t.SwapRowContents(i, j)
		cache.reload()
		return
	}

	if bitset.Test(t.Z(i), i) {
		t.TransverseHadamard(i)
		rec.ApplyRight(i, clifford.H)
		cache.reload()
		return
	}

	if j := t.blockFirstBelow(t.Z, t.gather(t.Z, tile, i, n), i); j != bitset.CTZSentinel {
		t.SwapRowContents(i, j)
		t.TransverseHadamard(i)
		rec.ApplyRight(i, clifford.H)
		cache.reload()
		return
	}

	violate("DecomposeBlock", "no pivot for qubit %d", i)
}

// blockFirstBelow returns the first row j > i with bit i set in block.
// column holds that bit for the rows of i's own tile.
func (t *Tableau) blockFirstBelow(block func(int) []uint64, column uint64, i int) int {
	n := t.nQubits
	tile, k := i/64, uint(i%64)
	if m := column & above(k) & rowMask(tile, n); m != 0 {
		return tile*64 + bits.TrailingZeros64(m)
	}
	for u := tile + 1; u < (n+63)/64; u++ {
		if m := t.gather(block, u, i, n); m != 0 {
			return u*64 + bits.TrailingZeros64(m)
		}
	}
	return bitset.CTZSentinel
}

// gather returns bit i of rows [tile*64, tile*64+64) ∩ [0, n) of block as
// one word.
func (t *Tableau) gather(block func(int) []uint64, tile, i, n int) uint64 {
	var w uint64
	base := tile * 64
	for r := 0; r < 64 && base+r < n; r++ {
		w |= bitset.Get(block(base+r), i) << uint(r)
	}
	return w
}

// above masks bits strictly greater than k.
func above(k uint) uint64 {
	if k == 63 {
		return 0
	}
	return ^uint64(0) << (k + 1)
}

// rowMask masks the rows of tile below n.
func rowMask(tile, n int) uint64 {
	rows := n - tile*64
	if rows >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(rows) - 1
}

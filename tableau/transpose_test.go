package tableau

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cabaliser/internal/bitset"
)

// randomSquare fills the active n×n square of both blocks with random bits
// and leaves the identity/zero frame around it.
func randomSquare(tab *Tableau, rng *rand.Rand) {
	n := tab.NQubits()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			bitset.Set(tab.X(i), j, rng.Uint64())
			bitset.Set(tab.Z(i), j, rng.Uint64())
		}
	}
}

var transposeSizes = []struct {
	name      string
	n, maxQ   int
	wantTiled bool
}{
	{"one", 1, 1, false},
	{"small", 7, 9, false},
	{"below_tile", 63, 63, false},
	{"one_tile", 64, 64, true},
	{"two_tiles", 128, 128, true},
	{"unaligned", 100, 130, true},
	{"unaligned_wide", 333, 600, true},
}

func TestTransposeMovesBits(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 10))
	for _, tt := range transposeSizes {
		t.Run(tt.name, func(t *testing.T) {
			tab := mustNew(t, tt.n, tt.maxQ)
			randomSquare(tab, rng)
			ref := tab.Clone()

			tab.Transpose()
			assert.Equal(t, RowMajor, tab.Orientation())
			for i := 0; i < tt.n; i++ {
				for j := 0; j < tt.n; j++ {
					require.Equal(t, bitset.Get(ref.X(i), j), bitset.Get(tab.X(j), i), "X(%d,%d)", i, j)
					require.Equal(t, bitset.Get(ref.Z(i), j), bitset.Get(tab.Z(j), i), "Z(%d,%d)", i, j)
				}
			}
			// The frame outside the square is unchanged.
			for i := tt.n; i < tab.Rows(); i++ {
				require.True(t, bitset.IsZero(tab.X(i), tab.Rows()), "X row %d", i)
				require.Equal(t, 1, bitset.Count(tab.Z(i), tab.Rows()), "Z row %d", i)
				require.True(t, bitset.Test(tab.Z(i), i))
			}
		})
	}
}

func TestTransposeInvolution(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	for _, tt := range transposeSizes {
		t.Run(tt.name, func(t *testing.T) {
			tab := mustNew(t, tt.n, tt.maxQ)
			randomSquare(tab, rng)
			ref := tab.Clone()

			tab.Transpose()
			tab.Transpose()
			assert.Equal(t, ColumnMajor, tab.Orientation())
			assert.True(t, tab.Equal(ref))
		})
	}
}

func TestTransposeNaiveMatchesTiled(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 12))
	for _, tt := range transposeSizes {
		if !tt.wantTiled {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			tiled := mustNew(t, tt.n, tt.maxQ)
			randomSquare(tiled, rng)
			naive := tiled.Clone()

			tiled.TransposeTiled()
			naive.TransposeNaive()
			assert.True(t, tiled.Equal(naive))
		})
	}
}

func TestTransposeFollowsRowOffsets(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 13))
	tab := mustNew(t, 70, 70)
	randomSquare(tab, rng)
	tab.Transpose()
	tab.SwapRows(3, 66)
	ref := tab.Clone()

	tab.Transpose()
	ref.Transpose()
	assert.True(t, tab.Equal(ref))
}

func BenchmarkTranspose(b *testing.B) {
	tab := mustNew(b, 1024, 1024)
	for i := 0; i < b.N; i++ {
		tab.Transpose()
	}
}

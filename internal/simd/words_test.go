package simd

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomWords(rng *rand.Rand, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
	}
	return out
}

func clone(w []uint64) []uint64 {
	return append([]uint64(nil), w...)
}

// Lengths cover the empty case, sub-lane tails and whole lanes.
var parityLengths = []int{0, 1, 3, 4, 5, 8, 13, 64}

func TestWordKernelsLanesMatchGeneric(t *testing.T) {
	binary := []struct {
		name    string
		generic func(dst, src []uint64)
		lanes   func(dst, src []uint64)
	}{
		{"and", andWordsGeneric, andWordsLanes},
		{"andnot", andNotWordsGeneric, andNotWordsLanes},
		{"or", orWordsGeneric, orWordsLanes},
		{"xor", xorWordsGeneric, xorWordsLanes},
		{"swap", swapWordsGeneric, swapWordsLanes},
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for _, k := range binary {
		for _, n := range parityLengths {
			a, b := randomWords(rng, n), randomWords(rng, n)
			ga, gb := clone(a), clone(b)
			la, lb := clone(a), clone(b)
			k.generic(ga, gb)
			k.lanes(la, lb)
			assert.Equal(t, ga, la, "%s n=%d dst", k.name, n)
			assert.Equal(t, gb, lb, "%s n=%d src", k.name, n)
		}
	}
}

func TestTernaryKernelsLanesMatchGeneric(t *testing.T) {
	ternary := []struct {
		name    string
		generic func(r, a, b []uint64)
		lanes   func(r, a, b []uint64)
	}{
		{"xorand", xorAndGeneric, xorAndLanes},
		{"xorandnot", xorAndNotGeneric, xorAndNotLanes},
		{"xoror", xorOrGeneric, xorOrLanes},
		{"xorxor", xorXorGeneric, xorXorLanes},
	}

	rng := rand.New(rand.NewPCG(3, 4))
	for _, k := range ternary {
		for _, n := range parityLengths {
			r, a, b := randomWords(rng, n), randomWords(rng, n), randomWords(rng, n)
			gr, lr := clone(r), clone(r)
			k.generic(gr, a, b)
			k.lanes(lr, a, b)
			assert.Equal(t, gr, lr, "%s n=%d", k.name, n)
		}
	}
}

func TestTwoQubitKernelsLanesMatchGeneric(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, n := range parityLengths {
		in := make([][]uint64, 5)
		for i := range in {
			in[i] = randomWords(rng, n)
		}

		g := make([][]uint64, 5)
		l := make([][]uint64, 5)
		for i := range in {
			g[i], l[i] = clone(in[i]), clone(in[i])
		}
		cnotGeneric(g[0], g[1], g[2], g[3], g[4])
		cnotLanes(l[0], l[1], l[2], l[3], l[4])
		assert.Equal(t, g, l, "cnot n=%d", n)

		for i := range in {
			g[i], l[i] = clone(in[i]), clone(in[i])
		}
		czGeneric(g[0], g[1], g[2], g[3], g[4])
		czLanes(l[0], l[1], l[2], l[3], l[4])
		assert.Equal(t, g, l, "cz n=%d", n)
	}
}

func TestPopcountWords(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for _, n := range parityLengths {
		w := randomWords(rng, n)
		want := 0
		for _, x := range w {
			want += bits.OnesCount64(x)
		}
		require.Equal(t, want, popcountWordsGeneric(w))
		require.Equal(t, want, popcountWordsLanes(w))
		require.Equal(t, want, PopcountWords(w))
	}
}

func TestCNOTSingleBit(t *testing.T) {
	// X on the control spreads to the target: X⊗I -> X⊗X.
	r, xc, zc, xt, zt := []uint64{0}, []uint64{1}, []uint64{0}, []uint64{0}, []uint64{0}
	CNOT(r, xc, zc, xt, zt)
	assert.Equal(t, []uint64{1}, xt)
	assert.Equal(t, []uint64{0}, zc)
	assert.Equal(t, []uint64{0}, r)

	// Z on the target spreads to the control: I⊗Z -> Z⊗Z.
	r, xc, zc, xt, zt = []uint64{0}, []uint64{0}, []uint64{0}, []uint64{0}, []uint64{1}
	CNOT(r, xc, zc, xt, zt)
	assert.Equal(t, []uint64{1}, zc)
	assert.Equal(t, []uint64{0}, xt)

	// X⊗Z picks up a sign: CNOT (X⊗Z) CNOT = -Y⊗Y.
	r, xc, zc, xt, zt = []uint64{0}, []uint64{1}, []uint64{0}, []uint64{0}, []uint64{1}
	CNOT(r, xc, zc, xt, zt)
	assert.Equal(t, []uint64{1}, r)
	assert.Equal(t, []uint64{1}, zc)
	assert.Equal(t, []uint64{1}, xt)
}

func TestCZSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	xa, za, xb, zb := randomWords(rng, 6), randomWords(rng, 6), randomWords(rng, 6), randomWords(rng, 6)
	r1 := make([]uint64, 6)
	r2 := make([]uint64, 6)

	a1, a2, b1, b2 := clone(za), clone(za), clone(zb), clone(zb)
	CZ(r1, xa, a1, xb, b1)
	CZ(r2, xb, b2, xa, a2)

	assert.Equal(t, r1, r2)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestUseKernelsRoundTrip(t *testing.T) {
	defer func() {
		if Vectorized() {
			UseLaneKernels()
		} else {
			UseGenericKernels()
		}
	}()

	rng := rand.New(rand.NewPCG(11, 12))
	a, b := randomWords(rng, 9), randomWords(rng, 9)

	UseGenericKernels()
	g := clone(a)
	XorWords(g, b)

	UseLaneKernels()
	l := clone(a)
	XorWords(l, b)

	assert.Equal(t, g, l)
}

func BenchmarkCNOT(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	const n = 1024
	r, xc, zc, xt, zt := randomWords(rng, n), randomWords(rng, n), randomWords(rng, n), randomWords(rng, n), randomWords(rng, n)
	b.SetBytes(5 * n * 8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CNOT(r, xc, zc, xt, zt)
	}
}

package cabaliser

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cabaliser/blobstore"
	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/internal/bitset"
	"github.com/hupe1980/cabaliser/internal/pool"
	"github.com/hupe1980/cabaliser/internal/resource"
	"github.com/hupe1980/cabaliser/snapshot"
	"github.com/hupe1980/cabaliser/tableau"
	"github.com/hupe1980/cabaliser/tracker"
)

const (
	tagT    = 1
	tagTdag = 2
)

func ghzStream() []instruction.Instruction {
	return []instruction.Instruction{
		instruction.Local(clifford.H, 0),
		instruction.NewCNOT(0, 1),
		instruction.NewCNOT(1, 2),
	}
}

// toffoliStream is the 14-instruction Toffoli gadget with six T-type rotations.
func toffoliStream() []instruction.Instruction {
	return []instruction.Instruction{
		instruction.Local(clifford.H, 2),
		instruction.NewCNOT(1, 2),
		instruction.NewRZ(2, tagTdag),
		instruction.NewCNOT(0, 2),
		instruction.NewRZ(2, tagT),
		instruction.NewCNOT(1, 2),
		instruction.NewRZ(2, tagTdag),
		instruction.NewCNOT(1, 2),
		instruction.NewRZ(2, tagT),
		instruction.NewCNOT(0, 1),
		instruction.NewRZ(0, tagT),
		instruction.NewRZ(1, tagTdag),
		instruction.NewCNOT(0, 1),
		instruction.Local(clifford.H, 2),
	}
}

func newWidget(t *testing.T, n, maxQubits int, opts ...Option) *Widget {
	t.Helper()
	w, err := New(n, maxQubits, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestNew_InvalidQubitCount(t *testing.T) {
	tests := []struct {
		name         string
		initial, max int
	}{
		{"zero initial", 0, 4},
		{"negative initial", -1, 4},
		{"max below initial", 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.initial, tt.max)
			var e *ErrInvalidQubitCount
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.initial, e.Initial)
			assert.Equal(t, tt.max, e.Max)
		})
	}
}

func TestWidget_GHZ(t *testing.T) {
	variants := map[string][]Option{
		"vector":  nil,
		"scalar":  {WithKernel(tableau.KernelScalar)},
		"block":   {WithBlockDecomposition()},
		"workers": {WithWorkers(3)},
	}

	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			w := newWidget(t, 3, 3, opts...)
			require.NoError(t, w.ApplyAll(ghzStream()))
			require.NoError(t, w.Decompose())

			adj0, err := w.Adjacencies(0)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2}, adj0)
			adj1, err := w.Adjacencies(1)
			require.NoError(t, err)
			assert.Equal(t, []int{0}, adj1)
			adj2, err := w.Adjacencies(2)
			require.NoError(t, err)
			assert.Equal(t, []int{0}, adj2)

			assert.Equal(t, []clifford.ID{clifford.I, clifford.H, clifford.H}, w.LocalCliffords())
			assert.Equal(t, []uint32{0, 0, 0}, w.NonCliffordTags())
		})
	}
}

func TestWidget_Toffoli(t *testing.T) {
	w := newWidget(t, 3, 9)
	require.NoError(t, w.ApplyAll(toffoliStream()))

	assert.Equal(t, 9, w.NQubits())
	assert.Equal(t, []int{7, 8, 6}, w.QubitMap())
	assert.Equal(t, []uint32{tagT, tagTdag, tagTdag, tagT, tagTdag, tagT, 0, 0, 0}, w.NonCliffordTags())

	require.NoError(t, w.Decompose())

	for q := 0; q < 9; q++ {
		adj, err := w.Adjacencies(q)
		require.NoError(t, err)
		switch {
		case q == 2:
			assert.Equal(t, []int{3, 4, 5, 6}, adj)
		case q >= 3 && q <= 6:
			assert.Equal(t, []int{2}, adj, "row %d", q)
		default:
			assert.Empty(t, adj, "row %d", q)
		}
	}

	H, I := clifford.H, clifford.I
	assert.Equal(t, []clifford.ID{H, H, I, H, H, H, I, H, H}, w.LocalCliffords())

	g, err := w.Graph()
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	gd := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gd.AssertJson(t, "toffoli_document", g.Document())
}

func TestWidget_ToffoliBlockMatchesNaive(t *testing.T) {
	naive := newWidget(t, 3, 9)
	block := newWidget(t, 3, 9, WithBlockDecomposition(), WithWorkers(2))

	for _, w := range []*Widget{naive, block} {
		require.NoError(t, w.ApplyAll(toffoliStream()))
		require.NoError(t, w.Decompose())
	}

	gn, err := naive.Graph()
	require.NoError(t, err)
	gb, err := block.Graph()
	require.NoError(t, err)
	assert.True(t, gn.Equal(gb))
}

func TestWidget_RandomStreamsAgree(t *testing.T) {
	shared := pool.New(4)
	defer shared.Close()

	for seed := uint64(1); seed <= 5; seed++ {
		gen, err := instruction.NewGenerator(instruction.GeneratorConfig{
			Qubits:    12,
			MaxQubits: 80,
			Seed:      seed,
		})
		require.NoError(t, err)
		stream := gen.Generate(400)

		variants := [][]Option{
			nil,
			{WithKernel(tableau.KernelScalar)},
			{WithPool(shared)},
			{WithBlockDecomposition(), WithWorkers(2)},
		}

		var ref *Widget
		for i, opts := range variants {
			w := newWidget(t, 12, 80, opts...)
			require.NoError(t, w.ApplyAll(stream))
			require.NoError(t, w.Decompose())

			g, err := w.Graph()
			require.NoError(t, err)
			require.NoError(t, g.Validate(), "seed %d variant %d", seed, i)

			if ref == nil {
				ref = w
				continue
			}
			gr, err := ref.Graph()
			require.NoError(t, err)
			assert.True(t, gr.Equal(g), "seed %d variant %d", seed, i)
		}
	}
}

func TestWidget_RZQubitLimit(t *testing.T) {
	w := newWidget(t, 1, 2)

	require.NoError(t, w.Apply(instruction.NewRZ(0, tagT)))
	assert.Equal(t, []int{1}, w.QubitMap())

	err := w.Apply(instruction.NewRZ(0, tagT))
	require.ErrorIs(t, err, ErrQubitLimitExceeded)
	var e *ErrQubitLimit
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Max)

	// Unchanged by the rejected rotation.
	assert.Equal(t, 2, w.NQubits())
	assert.Equal(t, []int{1}, w.QubitMap())
	assert.Equal(t, []uint32{tagT, 0}, w.NonCliffordTags())
}

func TestWidget_ApplyErrors(t *testing.T) {
	w := newWidget(t, 2, 4)

	tests := []struct {
		name string
		ins  instruction.Instruction
		err  error
	}{
		{"unknown local", instruction.Instruction{Op: instruction.TypeLocal | 0x1f}, ErrUnknownOpcode},
		{"unknown two-qubit", instruction.Instruction{Op: 0x42, A: 0, B: 1}, ErrUnknownOpcode},
		{"unknown rz", instruction.Instruction{Op: 0x81}, ErrUnknownOpcode},
		{"unknown type", instruction.Instruction{Op: 0x10}, ErrUnknownOpcode},
		{"same qubit", instruction.NewCZ(1, 1), ErrSameQubit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, w.Apply(tt.ins), tt.err)
		})
	}

	var oor *ErrQubitOutOfRange
	require.ErrorAs(t, w.Apply(instruction.Local(clifford.X, 2)), &oor)
	assert.Equal(t, uint32(2), oor.Qubit)
	assert.Equal(t, 2, oor.Qubits)
	assert.ErrorAs(t, w.Apply(instruction.NewCNOT(0, 7)), &oor)
	assert.ErrorAs(t, w.Apply(instruction.NewRZ(9, tagT)), &oor)

	assert.NoError(t, w.Apply(instruction.Instruction{Op: instruction.NOP}))
	assert.Equal(t, 2, w.NQubits())

	err := w.ApplyAll([]instruction.Instruction{instruction.Local(clifford.H, 0), instruction.NewCZ(0, 0)})
	assert.ErrorIs(t, err, ErrSameQubit)
	assert.Contains(t, err.Error(), "instruction 1")
}

func TestWidget_LocalCliffordsQueue(t *testing.T) {
	w := newWidget(t, 2, 2)

	require.NoError(t, w.Apply(instruction.Local(clifford.H, 0)))
	require.NoError(t, w.Apply(instruction.Local(clifford.S, 0)))
	assert.Equal(t, clifford.ComposeLeft(clifford.S, clifford.H), w.LocalCliffords()[0])

	require.NoError(t, w.ApplyLocalCliffords())
	assert.Equal(t, []clifford.ID{clifford.I, clifford.I}, w.LocalCliffords())

	// Applying the inverse directly restores |00⟩.
	ref, err := tableau.New(2, 2)
	require.NoError(t, err)
	require.NoError(t, w.Apply(instruction.Local(clifford.Inverse(clifford.ComposeLeft(clifford.S, clifford.H)), 0)))
	require.NoError(t, w.ApplyLocalCliffords())
	assert.True(t, ref.Equal(w.tab))
}

func TestWidget_Lifecycle(t *testing.T) {
	w := newWidget(t, 2, 2)

	_, err := w.Graph()
	assert.ErrorIs(t, err, ErrNotDecomposed)
	_, err = w.Adjacencies(0)
	assert.ErrorIs(t, err, ErrNotDecomposed)

	require.NoError(t, w.Decompose())
	assert.True(t, w.Decomposed())

	assert.ErrorIs(t, w.Apply(instruction.Local(clifford.H, 0)), ErrDecomposed)
	assert.ErrorIs(t, w.Decompose(), ErrDecomposed)
	assert.ErrorIs(t, w.ApplyLocalCliffords(), ErrDecomposed)
	assert.ErrorIs(t, w.TeleportInput(), ErrDecomposed)

	var oor *ErrQubitOutOfRange
	_, err = w.Adjacencies(5)
	assert.ErrorAs(t, err, &oor)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Apply(instruction.Local(clifford.H, 0)), ErrClosed)
}

func TestWidget_Tracker(t *testing.T) {
	rec := tracker.NewRecorder()
	w := newWidget(t, 2, 3, WithTracker(rec))

	require.NoError(t, w.Apply(instruction.NewCNOT(0, 1)))
	require.NoError(t, w.Apply(instruction.NewCZ(1, 0)))
	require.NoError(t, w.Apply(instruction.NewRZ(1, tagT)))

	assert.Equal(t, []tracker.Event{
		{Kind: tracker.KindX, Measured: 0, Target: 1},
		{Kind: tracker.KindZ, Measured: 1, Target: 0},
		{Kind: tracker.KindZ, Measured: 1, Target: 2},
	}, rec.Events())

	require.NoError(t, w.Close())
	assert.True(t, rec.Closed())
}

func TestWidget_TeleportInput(t *testing.T) {
	rec := tracker.NewRecorder()
	w := newWidget(t, 2, 6, WithTeleportInput(), WithTracker(rec))

	assert.Equal(t, 4, w.NQubits())
	assert.Equal(t, []int{2, 3}, w.QubitMap())
	assert.Equal(t, []int{0, 1}, w.InputNodes())
	assert.Equal(t, []tracker.Event{
		{Kind: tracker.KindZ, Measured: 0, Target: 2},
		{Kind: tracker.KindX, Measured: 0, Target: 2},
		{Kind: tracker.KindZ, Measured: 1, Target: 3},
		{Kind: tracker.KindX, Measured: 1, Target: 3},
	}, rec.Events())

	assert.ErrorIs(t, w.TeleportInput(), ErrTeleportInput)

	require.NoError(t, w.Decompose())
	g, err := w.Graph()
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.True(t, g.HasEdge(0, 2))
	assert.True(t, g.HasEdge(1, 3))
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, []int{0, 1}, g.InputNodes)
	assert.Equal(t, []int{2, 3}, g.OutputNodes)
}

func TestWidget_TeleportInputErrors(t *testing.T) {
	_, err := New(3, 5, WithTeleportInput())
	assert.ErrorIs(t, err, ErrQubitLimitExceeded)

	w := newWidget(t, 2, 4)
	require.NoError(t, w.Apply(instruction.Local(clifford.X, 0)))
	assert.ErrorIs(t, w.TeleportInput(), ErrTeleportInput)
}

func TestWidget_DecomposeInvariantViolation(t *testing.T) {
	w := newWidget(t, 2, 2)

	// Row 1 carries neither X nor Z: not a stabilizer state.
	bitset.Clear(w.tab.Z(1))
	bitset.Set(w.tab.X(0), 0, 1)
	bitset.Set(w.tab.X(0), 1, 1)

	err := w.Decompose()
	require.ErrorIs(t, err, ErrInvariantViolation)
	assert.Contains(t, err.Error(), "Decompose")
	assert.False(t, w.Decomposed())

	// The tableau is unusable afterwards; every mutation reports the failure.
	assert.ErrorIs(t, w.Apply(instruction.Local(clifford.H, 0)), ErrInvariantViolation)
	assert.ErrorIs(t, w.Apply(instruction.NewCNOT(0, 1)), ErrInvariantViolation)
	assert.ErrorIs(t, w.ApplyLocalCliffords(), ErrInvariantViolation)
	assert.ErrorIs(t, w.TeleportInput(), ErrInvariantViolation)
	assert.ErrorIs(t, w.Decompose(), ErrInvariantViolation)
	_, err = w.Graph()
	assert.ErrorIs(t, err, ErrNotDecomposed)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Apply(instruction.Local(clifford.H, 0)), ErrClosed)
}

func TestWidget_ApplySource(t *testing.T) {
	stream := toffoliStream()
	src := instruction.NewSliceSource(instruction.Chunk(stream, 4)...)

	w := newWidget(t, 3, 9)
	require.NoError(t, w.ApplySource(context.Background(), src))
	assert.Equal(t, []int{7, 8, 6}, w.QubitMap())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w2 := newWidget(t, 3, 9)
	err := w2.ApplySource(ctx, instruction.NewSliceSource(stream))
	assert.ErrorIs(t, err, context.Canceled)

	w3 := newWidget(t, 1, 1)
	err = w3.ApplySource(context.Background(), instruction.NewSliceSource(stream[:1]))
	var oor *ErrQubitOutOfRange
	assert.ErrorAs(t, err, &oor)
	assert.Contains(t, err.Error(), "layer 0")
}

func TestWidget_ResourceController(t *testing.T) {
	need := tableau.BufferBytes(64)

	rc := resource.NewController(resource.Config{MemoryLimit: need})
	w, err := New(4, 64, WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, need, rc.MemoryUsage())

	_, err = New(4, 64, WithResourceController(rc))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	require.NoError(t, w.Close())
	assert.Zero(t, rc.MemoryUsage())

	_, err = New(4, 7, WithResourceController(rc), WithTeleportInput())
	assert.ErrorIs(t, err, ErrQubitLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}

func TestWidget_Metrics(t *testing.T) {
	m := &BasicMetricsCollector{}
	w := newWidget(t, 3, 9, WithMetricsCollector(m))

	require.NoError(t, w.ApplyAll(toffoliStream()))
	assert.Error(t, w.Apply(instruction.NewCZ(0, 0)))
	require.NoError(t, w.Decompose())

	s := m.GetStats()
	assert.Equal(t, int64(2), s.LocalCount)
	assert.Equal(t, int64(6), s.TwoQubitCount)
	assert.Equal(t, int64(6), s.RZCount)
	assert.Equal(t, int64(1), s.ApplyErrors)
	assert.Equal(t, int64(1), s.DecomposeCount)
	assert.Equal(t, int64(9), s.DecomposeQubits)
	assert.Equal(t, int64(1), s.FlushedCliffords)
	assert.Zero(t, s.TeleportCount)
}

func TestWidget_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	w := newWidget(t, 3, 3, WithLogger(logger))

	require.NoError(t, w.ApplyAll(ghzStream()))
	require.NoError(t, w.Decompose())

	out := buf.String()
	assert.Contains(t, out, `"msg":"apply"`)
	assert.Contains(t, out, `"instruction":"CNOT(0, 1)"`)
	assert.Contains(t, out, `"msg":"decompose completed"`)
	assert.Contains(t, out, w.ID().String())
}

func TestLogger_LogApplyDisabled(t *testing.T) {
	ctx := context.Background()
	ins := instruction.NewCNOT(0, 1)

	var buf bytes.Buffer
	info := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	for _, l := range []*Logger{NoopLogger(), info} {
		allocs := testing.AllocsPerRun(100, func() {
			l.LogApply(ctx, ins, nil)
			l.LogApply(ctx, ins, ErrSameQubit)
		})
		assert.Zero(t, allocs)
	}
	assert.Empty(t, buf.String())
}

func TestWidget_TimesOnlyWithMetrics(t *testing.T) {
	assert.False(t, newWidget(t, 1, 1).timed)
	assert.False(t, newWidget(t, 1, 1, WithMetricsCollector(nil)).timed)
	assert.True(t, newWidget(t, 1, 1, WithMetricsCollector(&BasicMetricsCollector{})).timed)
}

func TestWidget_Save(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	w := newWidget(t, 3, 9, WithResourceController(resource.NewController(resource.Config{})))
	require.NoError(t, w.ApplyAll(toffoliStream()))

	_, err := w.Save(ctx, store)
	assert.ErrorIs(t, err, ErrNotDecomposed)

	require.NoError(t, w.Decompose())
	id, err := w.Save(ctx, store, snapshot.WithCompression(snapshot.CompressionZSTD))
	require.NoError(t, err)

	loaded, err := snapshot.Load(ctx, store, id)
	require.NoError(t, err)
	g, err := w.Graph()
	require.NoError(t, err)
	assert.True(t, g.Equal(loaded))

	cur, err := snapshot.Current(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, id, cur)
}

func TestErrQubitLimit(t *testing.T) {
	err := error(&ErrQubitLimit{Max: 9, Op: "RZ"})
	assert.True(t, errors.Is(err, ErrQubitLimitExceeded))
	assert.Equal(t, "RZ: qubit limit exceeded (max 9)", err.Error())
}

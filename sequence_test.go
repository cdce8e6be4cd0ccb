package cabaliser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/internal/pool"
	"github.com/hupe1980/cabaliser/internal/resource"
	"github.com/hupe1980/cabaliser/tableau"
	"github.com/hupe1980/cabaliser/tracker"
)

// cphase is a controlled phase built from three rotations and two CNOTs.
func cphase(ctrl, targ, tag uint32) []instruction.Instruction {
	return []instruction.Instruction{
		instruction.NewRZ(ctrl, tag),
		instruction.NewRZ(targ, tag),
		instruction.NewCNOT(ctrl, targ),
		instruction.NewRZ(targ, tag),
		instruction.NewCNOT(ctrl, targ),
	}
}

// qftStream is a QFT-shaped stream over n qubits with 3*n*(n-1)/2 rotations.
func qftStream(n int) []instruction.Instruction {
	var ins []instruction.Instruction
	for i := 0; i < n; i++ {
		ins = append(ins, instruction.Local(clifford.H, uint32(i)))
		for j := i; j < n-1; j++ {
			ins = append(ins, cphase(uint32(n-1), uint32(j), 1)...)
		}
	}
	return ins
}

func newSequence(t *testing.T, width, maxQubits int, opts ...Option) *Sequence {
	t.Helper()
	s, err := NewSequence(width, maxQubits, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewSequence_InvalidSize(t *testing.T) {
	for _, tc := range []struct{ width, max int }{
		{0, 10},
		{3, 6},
		{3, 5},
	} {
		_, err := NewSequence(tc.width, tc.max)
		var inv *ErrInvalidQubitCount
		assert.ErrorAs(t, err, &inv, "width %d max %d", tc.width, tc.max)
	}

	s := newSequence(t, 3, 7)
	assert.Equal(t, 1, s.RZBudget())
	assert.Equal(t, 3, s.Width())
	assert.Equal(t, 7, s.MaxQubits())
}

func TestSequence_QFT(t *testing.T) {
	tests := []struct {
		width, maxQubits int
		segments         int
	}{
		{10, 30, 14},
		{6, 20, 6},
		{4, 9, 18},
	}

	for _, tc := range tests {
		stream := qftStream(tc.width)
		rotations := 3 * tc.width * (tc.width - 1) / 2

		s := newSequence(t, tc.width, tc.maxQubits)
		graphs, err := s.Compile(context.Background(), instruction.NewSliceSource(instruction.Chunk(stream, 7)...))
		require.NoError(t, err)
		require.Len(t, graphs, tc.segments, "width %d max %d", tc.width, tc.maxQubits)

		total := 0
		for i, g := range graphs {
			require.NoError(t, g.Validate(), "segment %d", i)
			assert.Equal(t, tc.width, g.NQubits)
			assert.Len(t, g.InputNodes, tc.width)
			assert.Len(t, g.OutputNodes, tc.width)
			assert.LessOrEqual(t, g.StateNodes, tc.maxQubits)

			tagged := len(g.Tagged())
			assert.Equal(t, 2*tc.width+tagged, g.StateNodes, "segment %d", i)
			if i < len(graphs)-1 {
				assert.Equal(t, s.RZBudget(), tagged, "segment %d is full", i)
			}
			total += tagged
		}
		assert.Equal(t, rotations, total)
	}
}

func TestSequence_SingleSegmentMatchesWidget(t *testing.T) {
	stream := toffoliStream()

	w := newWidget(t, 3, 12, WithTeleportInput())
	require.NoError(t, w.ApplyAll(stream))
	require.NoError(t, w.Decompose())
	want, err := w.Graph()
	require.NoError(t, err)

	s := newSequence(t, 3, 12)
	graphs, err := s.Compile(context.Background(), instruction.NewSliceSource(stream))
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	assert.True(t, want.Equal(graphs[0]))
}

func TestSequence_CutsBeforeRotation(t *testing.T) {
	stream := toffoliStream()

	s := newSequence(t, 3, 9)
	graphs, err := s.Compile(context.Background(), instruction.NewSliceSource(stream))
	require.NoError(t, err)
	require.Len(t, graphs, 2)

	// The first segment ends at the instruction before the fourth RZ.
	cut := 0
	for seen := 0; seen < 4; cut++ {
		if stream[cut].Op == instruction.RZ {
			seen++
		}
	}
	cut--

	w := newWidget(t, 3, 9, WithTeleportInput())
	require.NoError(t, w.ApplyAll(stream[:cut]))
	require.NoError(t, w.Decompose())
	first, err := w.Graph()
	require.NoError(t, err)
	assert.True(t, first.Equal(graphs[0]))

	for _, g := range graphs {
		assert.Len(t, g.Tagged(), 3)
		assert.Equal(t, 9, g.StateNodes)
	}
}

func TestSequence_EmptyStream(t *testing.T) {
	s := newSequence(t, 2, 5)
	graphs, err := s.Compile(context.Background(), instruction.NewSliceSource())
	require.NoError(t, err)
	assert.Empty(t, graphs)
}

func TestSequence_Errors(t *testing.T) {
	s := newSequence(t, 2, 5)

	stream := []instruction.Instruction{
		instruction.NewRZ(0, 1),
		instruction.NewRZ(1, 1),
		instruction.NewCNOT(0, 7),
	}
	_, err := s.Compile(context.Background(), instruction.NewSliceSource(stream))
	var oor *ErrQubitOutOfRange
	require.ErrorAs(t, err, &oor)
	assert.Contains(t, err.Error(), "segment 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Compile(ctx, instruction.NewSliceSource(stream[:1]))
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Compile(context.Background(), instruction.NewSliceSource(stream[:1]))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSequence_SharesResources(t *testing.T) {
	stream := qftStream(5)

	rc := resource.NewController(resource.Config{MemoryLimit: tableau.BufferBytes(16)})
	rec := tracker.NewRecorder()
	m := &BasicMetricsCollector{}
	s := newSequence(t, 5, 16,
		WithWorkers(3),
		WithResourceController(rc),
		WithTracker(rec),
		WithMetricsCollector(m),
	)
	require.True(t, s.ownPool)
	assert.Equal(t, 3, s.pool.Workers())

	graphs, err := s.Compile(context.Background(), instruction.NewSliceSource(stream))
	require.NoError(t, err)
	assert.Len(t, graphs, 5)
	assert.Zero(t, rc.MemoryUsage())
	assert.False(t, rec.Closed())
	assert.Positive(t, rec.Len())

	stats := m.GetStats()
	assert.Equal(t, int64(5), stats.DecomposeCount)
	assert.Equal(t, int64(5), stats.TeleportCount)
	assert.Equal(t, int64(30), stats.RZCount)

	require.NoError(t, s.Close())
	assert.True(t, rec.Closed())
}

func TestSequence_CallerPool(t *testing.T) {
	p := pool.New(2)
	t.Cleanup(p.Close)

	s := newSequence(t, 3, 9, WithPool(p))
	assert.False(t, s.ownPool)

	graphs, err := s.Compile(context.Background(), instruction.NewSliceSource(toffoliStream()))
	require.NoError(t, err)
	assert.Len(t, graphs, 2)

	require.NoError(t, s.Close())
	require.NoError(t, p.Distribute([]int{0}, 8, func(int, int) {}))
	p.Barrier()
}

package cabaliser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/cabaliser/graph"
	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/internal/pool"
	"github.com/hupe1980/cabaliser/tracker"
)

// Sequence compiles a stream whose rotations do not fit one tableau.
//
// The stream is cut into segments of at most RZBudget rotations. Each
// segment runs on a fresh widget with teleported inputs, so its graph has
// its own input and output nodes, and segment k+1 continues where the
// outputs of segment k left off. Only one widget is alive at a time. All of
// them share one pool and one resource controller.
//
// A Sequence is not safe for concurrent use.
type Sequence struct {
	width     int
	maxQubits int
	opts      []Option

	tracker tracker.Tracker
	pool    *pool.Pool
	ownPool bool
	logger  *Logger
	closed  bool
}

// NewSequence creates a sequence of widgets over width logical qubits, each
// sized to maxQubits rows. maxQubits must exceed 2*width so that every
// segment has room for at least one rotation.
//
// optFns configure every widget. WithTeleportInput is implied. A tracker set
// with WithTracker receives the calls of all segments and is closed by
// Close. Without WithPool, WithWorkers creates one pool for all segments.
func NewSequence(width, maxQubits int, optFns ...Option) (*Sequence, error) {
	if width <= 0 || 2*width >= maxQubits {
		return nil, &ErrInvalidQubitCount{Initial: width, Max: maxQubits}
	}

	o := applyOptions(optFns)
	s := &Sequence{
		width:     width,
		maxQubits: maxQubits,
		tracker:   o.tracker,
		pool:      o.pool,
		logger:    o.logger,
	}
	if s.pool == nil && o.workers != 0 {
		s.pool = pool.New(max(o.workers, 0))
		s.ownPool = true
	}

	s.opts = append(slices.Clone(optFns),
		WithPool(s.pool),
		WithTracker(sharedTracker{o.tracker}),
		WithTeleportInput(),
	)
	return s, nil
}

// Width returns the number of logical qubits.
func (s *Sequence) Width() int { return s.width }

// MaxQubits returns the row count of every segment widget.
func (s *Sequence) MaxQubits() int { return s.maxQubits }

// RZBudget returns the number of rotations one segment holds.
func (s *Sequence) RZBudget() int { return s.maxQubits - 2*s.width }

// Compile drains src and returns one decomposed graph per segment, in stream
// order. An empty stream yields no graphs.
func (s *Sequence) Compile(ctx context.Context, src instruction.Source) ([]*graph.Graph, error) {
	if s.closed {
		return nil, ErrClosed
	}

	var (
		graphs []*graph.Graph
		w      *Widget
		rz     int
	)
	defer func() {
		if w != nil {
			_ = w.Close()
		}
	}()

	finish := func() error {
		seg := len(graphs)
		err := w.DecomposeContext(ctx)
		var g *graph.Graph
		if err == nil {
			g, err = w.Graph()
		}
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		w = nil
		s.logger.LogSegment(ctx, seg, rz, err)
		if err != nil {
			return fmt.Errorf("segment %d: %w", seg, err)
		}
		graphs = append(graphs, g)
		return nil
	}

	budget := s.RZBudget()
	for layer := 0; ; layer++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ins, err := src.NextLayer(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", layer, err)
		}

		for i, in := range ins {
			isRZ := in.Op.Type() == instruction.TypeRZ
			if w != nil && isRZ && rz == budget {
				if err := finish(); err != nil {
					return nil, err
				}
			}
			if w == nil {
				if w, err = New(s.width, s.maxQubits, s.opts...); err != nil {
					return nil, fmt.Errorf("segment %d: %w", len(graphs), err)
				}
				rz = 0
			}
			if err := w.apply(ctx, in); err != nil {
				return nil, fmt.Errorf("segment %d, layer %d, instruction %d (%s): %w",
					len(graphs), layer, i, in, err)
			}
			if isRZ {
				rz++
			}
		}
	}

	if w != nil {
		if err := finish(); err != nil {
			return nil, err
		}
	}
	return graphs, nil
}

// Close stops an owned pool and closes the tracker. It is idempotent.
func (s *Sequence) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if s.ownPool {
		s.pool.Close()
	}
	return s.tracker.Close()
}

// sharedTracker hands one tracker to many widgets; Sequence.Close closes it.
type sharedTracker struct {
	tracker.Tracker
}

func (sharedTracker) Close() error { return nil }

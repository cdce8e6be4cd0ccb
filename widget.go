package cabaliser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/cabaliser/blobstore"
	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/graph"
	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/internal/pool"
	"github.com/hupe1980/cabaliser/internal/resource"
	"github.com/hupe1980/cabaliser/snapshot"
	"github.com/hupe1980/cabaliser/tableau"
	"github.com/hupe1980/cabaliser/tracker"
)

// Widget compiles an instruction stream into a graph state.
//
// It owns one tableau, the queue of local Cliffords not yet applied to it,
// and the map from logical qubits to tableau rows. Every RZ teleports its
// qubit onto a fresh row, so the tableau grows by one row per rotation up
// to MaxQubits.
//
// A Widget is not safe for concurrent use.
type Widget struct {
	id       uuid.UUID
	tab      *tableau.Tableau
	queue    *clifford.Queue
	qmap     []int
	nInitial int
	inputs   []int

	tracker tracker.Tracker
	pool    *pool.Pool
	ownPool bool
	kernel  tableau.Kernel
	block   bool

	rc       *resource.Controller
	reserved *resource.Reservation

	logger  *Logger
	metrics MetricsCollector
	timed   bool

	touched    bool
	decomposed bool
	closed     bool
	failed     error
}

// New creates a widget over nInitial logical qubits that may grow to
// maxQubits tableau rows.
func New(nInitial, maxQubits int, optFns ...Option) (*Widget, error) {
	if nInitial <= 0 || maxQubits < nInitial {
		return nil, &ErrInvalidQubitCount{Initial: nInitial, Max: maxQubits}
	}

	o := applyOptions(optFns)

	res, err := o.rc.Reserve(tableau.BufferBytes(maxQubits))
	if err != nil {
		return nil, fmt.Errorf("reserve tableau: %w", err)
	}

	tab, err := tableau.New(nInitial, maxQubits)
	if err != nil {
		res.Release()
		return nil, err
	}

	w := &Widget{
		id:       uuid.New(),
		tab:      tab,
		queue:    clifford.NewQueue(maxQubits),
		qmap:     make([]int, nInitial),
		nInitial: nInitial,
		tracker:  o.tracker,
		pool:     o.pool,
		kernel:   o.kernel,
		block:    o.block,
		rc:       o.rc,
		reserved: res,
		metrics:  o.metricsCollector,
	}
	_, noop := o.metricsCollector.(NoopMetricsCollector)
	w.timed = !noop
	for i := range w.qmap {
		w.qmap[i] = i
	}
	if w.pool == nil && o.workers != 0 {
		w.pool = pool.New(max(o.workers, 0))
		w.ownPool = true
	}
	w.logger = o.logger.WithWidget(w.id.String())

	if o.teleportInput {
		if err := w.TeleportInput(); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}

// ID returns the widget's random identifier.
func (w *Widget) ID() uuid.UUID { return w.id }

// NQubits returns the number of tableau rows in use.
func (w *Widget) NQubits() int { return w.tab.NQubits() }

// NInitialQubits returns the number of logical qubits.
func (w *Widget) NInitialQubits() int { return w.nInitial }

// MaxQubits returns the row capacity of the tableau.
func (w *Widget) MaxQubits() int { return w.tab.MaxQubits() }

// QubitMap returns the tableau row currently holding each logical qubit.
func (w *Widget) QubitMap() []int {
	return append([]int(nil), w.qmap...)
}

// InputNodes returns the rows holding the teleported inputs, or nil.
func (w *Widget) InputNodes() []int {
	return append([]int(nil), w.inputs...)
}

// LocalCliffords returns the queued local Clifford of every row in use.
// After Decompose these are the graph state's local corrections.
func (w *Widget) LocalCliffords() []clifford.ID {
	return w.queue.Ops(w.NQubits())
}

// NonCliffordTags returns the rotation tag recorded on every row in use.
// Rows that did not host a rotation carry tag 0.
func (w *Widget) NonCliffordTags() []uint32 {
	return w.queue.Tags(w.NQubits())
}

// Decomposed reports whether Decompose has completed.
func (w *Widget) Decomposed() bool { return w.decomposed }

func (w *Widget) usable() error {
	switch {
	case w.closed:
		return ErrClosed
	case w.failed != nil:
		return w.failed
	case w.decomposed:
		return ErrDecomposed
	}
	return nil
}

func (w *Widget) logical(q uint32) (int, error) {
	if int(q) >= w.nInitial {
		return 0, &ErrQubitOutOfRange{Qubit: q, Qubits: w.nInitial}
	}
	return w.qmap[q], nil
}

// Apply applies one instruction. A rejected instruction leaves the widget
// unchanged.
func (w *Widget) Apply(ins instruction.Instruction) error {
	return w.apply(context.Background(), ins)
}

func (w *Widget) apply(ctx context.Context, ins instruction.Instruction) (err error) {
	var start time.Time
	if w.timed {
		start = time.Now()
	}
	kind := "nop"
	defer func() {
		if w.timed {
			w.metrics.RecordApply(kind, time.Since(start), err)
		}
		w.logger.LogApply(ctx, ins, err)
	}()

	if err := w.usable(); err != nil {
		return err
	}

	switch ins.Op.Type() {
	case instruction.TypeLocal:
		kind = "local"
		id, ok := ins.Op.Clifford()
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOpcode, ins.Op)
		}
		t, err := w.logical(ins.A)
		if err != nil {
			return err
		}
		w.touched = true
		w.queue.ApplyLeft(t, id)
		tracker.TrackLocal(w.tracker, id, t)
		return nil

	case instruction.TypeTwoQubit:
		kind = "two-qubit"
		if !ins.Op.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownOpcode, ins.Op)
		}
		a, err := w.logical(ins.A)
		if err != nil {
			return err
		}
		b, err := w.logical(ins.B)
		if err != nil {
			return err
		}
		if a == b {
			return fmt.Errorf("%w: %s", ErrSameQubit, ins)
		}
		w.touched = true
		if err := w.twoQubit(ins.Op, a, b); err != nil {
			return err
		}
		if ins.Op == instruction.CNOT {
			w.tracker.TrackX(a, b)
		} else {
			w.tracker.TrackZ(a, b)
		}
		return nil

	case instruction.TypeRZ:
		kind = "rz"
		if ins.Op != instruction.RZ {
			return fmt.Errorf("%w: %s", ErrUnknownOpcode, ins.Op)
		}
		ctrl, err := w.logical(ins.A)
		if err != nil {
			return err
		}
		n := w.NQubits()
		if n == w.MaxQubits() {
			return &ErrQubitLimit{Max: w.MaxQubits(), Op: "RZ"}
		}
		w.touched = true
		return w.teleport(ctrl, n, ins.A, ins.B)

	case instruction.NOP:
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, ins.Op)
	}
}

// teleport moves logical qubit arg from row ctrl to the fresh row targ and
// leaves tag on ctrl for measurement.
func (w *Widget) teleport(ctrl, targ int, arg, tag uint32) error {
	w.queue.SetTag(ctrl, tag)
	w.qmap[arg] = targ
	w.tab.SetNQubits(targ + 1)

	if err := w.twoQubit(instruction.CNOT, ctrl, targ); err != nil {
		return err
	}
	w.tracker.TrackZ(ctrl, targ)
	return nil
}

// twoQubit flushes both rows and applies the gate.
func (w *Widget) twoQubit(op instruction.Opcode, a, b int) error {
	if err := w.flush(a, b); err != nil {
		return err
	}
	if op == instruction.CNOT {
		return w.run([]int{a, b}, func(lo, hi int) {
			w.tab.CNOTRange(w.kernel, a, b, lo, hi)
		})
	}
	return w.run([]int{a, b}, func(lo, hi int) {
		w.tab.CZRange(w.kernel, a, b, lo, hi)
	})
}

// flush applies the queued Cliffords of rows to the tableau.
func (w *Widget) flush(rows ...int) error {
	count := 0
	for _, t := range rows {
		id := w.queue.Take(t)
		if id == clifford.I {
			continue
		}
		count++
		if err := w.run([]int{t}, func(lo, hi int) {
			w.tab.LocalRange(w.kernel, id, t, lo, hi)
		}); err != nil {
			return err
		}
	}
	if count > 0 {
		w.metrics.RecordFlush(count)
	}
	return nil
}

// run executes a gate over all words, on the pool when one is configured.
func (w *Widget) run(rows []int, fn func(lo, hi int)) error {
	words := w.tab.WordsPerRow()
	if w.pool == nil {
		fn(0, words)
		return nil
	}
	return w.pool.Distribute(rows, words, fn)
}

func (w *Widget) barrier() {
	if w.pool != nil {
		w.pool.Barrier()
	}
}

// ApplyAll applies instructions in order and stops at the first error.
func (w *Widget) ApplyAll(ins []instruction.Instruction) error {
	for i, in := range ins {
		if err := w.Apply(in); err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, in, err)
		}
	}
	return nil
}

// ApplySource drains src layer by layer.
func (w *Widget) ApplySource(ctx context.Context, src instruction.Source) error {
	for layer := 0; ; layer++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ins, err := src.NextLayer(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("layer %d: %w", layer, err)
		}
		for i, in := range ins {
			if err := w.apply(ctx, in); err != nil {
				return fmt.Errorf("layer %d, instruction %d (%s): %w", layer, i, in, err)
			}
		}
	}
}

// ApplyLocalCliffords applies every queued local Clifford to the tableau and
// resets the queue entries to I.
func (w *Widget) ApplyLocalCliffords() error {
	if err := w.usable(); err != nil {
		return err
	}
	rows := make([]int, w.NQubits())
	for i := range rows {
		rows[i] = i
	}
	return w.flush(rows...)
}

// TeleportInput entangles every initial qubit with a fresh partner row and
// moves the logical qubit onto the partner. The original rows become the
// input nodes of the graph. It must run before any instruction and needs
// room for twice the initial qubits.
func (w *Widget) TeleportInput() error {
	if err := w.usable(); err != nil {
		return err
	}
	n0 := w.nInitial
	switch {
	case w.touched || len(w.inputs) > 0 || w.NQubits() != n0:
		return fmt.Errorf("%w: widget already modified", ErrTeleportInput)
	case 2*n0 > w.MaxQubits():
		return &ErrQubitLimit{Max: w.MaxQubits(), Op: "TeleportInput"}
	}

	w.touched = true
	w.tab.SetNQubits(2 * n0)
	w.inputs = make([]int, n0)
	for i := 0; i < n0; i++ {
		w.queue.ApplyLeft(i, clifford.H)
		if err := w.twoQubit(instruction.CNOT, i, n0+i); err != nil {
			return err
		}
		w.qmap[i] += n0
		w.inputs[i] = i
		w.tracker.TrackZ(i, n0+i)
		w.tracker.TrackX(i, n0+i)
	}

	w.metrics.RecordTeleport()
	w.logger.LogTeleport(context.Background(), n0)
	return nil
}

// Decompose reduces the tableau to graph-state form. The local corrections
// it pulls out are composed onto the queue, which is not flushed first.
func (w *Widget) Decompose() error {
	return w.DecomposeContext(context.Background())
}

// DecomposeContext is Decompose with a context for logging.
func (w *Widget) DecomposeContext(ctx context.Context) (err error) {
	if err := w.usable(); err != nil {
		return err
	}
	w.barrier()

	start := time.Now()
	n := w.NQubits()
	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(*tableau.InvariantViolation)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("%w: %s", ErrInvariantViolation, v)
			// The tableau is left mid-elimination and row-major.
			w.failed = err
		}
		if err == nil {
			w.decomposed = true
		}
		w.metrics.RecordDecompose(n, time.Since(start), err)
		w.logger.LogDecompose(ctx, n, time.Since(start), err)
	}()

	if w.block {
		w.tab.DecomposeBlock(w.queue)
	} else {
		w.tab.Decompose(w.queue)
	}
	return nil
}

// Adjacencies returns the graph neighbours of row q.
func (w *Widget) Adjacencies(q int) ([]int, error) {
	if !w.decomposed {
		return nil, ErrNotDecomposed
	}
	if q < 0 || q >= w.NQubits() {
		return nil, &ErrQubitOutOfRange{Qubit: uint32(q), Qubits: w.NQubits()}
	}
	return w.tab.Adjacencies(q), nil
}

// Graph exports the decomposed graph state.
func (w *Widget) Graph() (*graph.Graph, error) {
	if !w.decomposed {
		return nil, ErrNotDecomposed
	}

	n := w.NQubits()
	g := graph.New(w.nInitial, n)
	for i := 0; i < n; i++ {
		g.SetNeighbors(i, w.tab.Adjacencies(i))
	}
	g.LocalCliffords = w.LocalCliffords()
	g.MeasurementTags = w.NonCliffordTags()
	g.OutputNodes = w.QubitMap()
	if len(w.inputs) > 0 {
		g.InputNodes = w.InputNodes()
	}
	return g, nil
}

// Save writes the decomposed graph as a snapshot.
func (w *Widget) Save(ctx context.Context, store blobstore.BlobStore, opts ...snapshot.Option) (uuid.UUID, error) {
	g, err := w.Graph()
	if err != nil {
		return uuid.Nil, err
	}
	if w.rc != nil {
		opts = append([]snapshot.Option{snapshot.WithResourceController(w.rc)}, opts...)
	}

	id, err := snapshot.Save(ctx, store, g, opts...)
	w.logger.LogSnapshot(ctx, id.String(), err)
	return id, err
}

// Close waits for pending gate updates, stops an owned pool, releases the
// tableau reservation and closes the tracker. It is idempotent.
func (w *Widget) Close() error {
	if w == nil || w.closed {
		return nil
	}
	w.closed = true

	w.barrier()
	if w.ownPool {
		w.pool.Close()
	}
	w.reserved.Release()
	return w.tracker.Close()
}

// Package tracker defines the Pauli-frame tracker the widget reports to and
// an in-process recorder.
package tracker

import (
	"sync"

	"github.com/hupe1980/cabaliser/clifford"
)

// Tracker follows the Pauli corrections that measurements on a compiled
// graph state induce. Rows are physical tableau rows.
type Tracker interface {
	// TrackX records that measuring row measured propagates an X
	// correction to row target.
	TrackX(measured, target int)
	// TrackZ records that measuring row measured propagates a Z
	// correction to row target.
	TrackZ(measured, target int)
	// Close releases the tracker.
	Close() error
}

// Action is what a local Clifford reports to the tracker.
type Action uint8

const (
	ActionNone Action = iota
	ActionX
	ActionZ
	ActionBoth
)

func (a Action) String() string {
	switch a {
	case ActionX:
		return "x"
	case ActionZ:
		return "z"
	case ActionBoth:
		return "xz"
	default:
		return "none"
	}
}

// LocalAction maps each local Clifford to the tracker calls it triggers:
// the trailing Pauli factor of its name, with Y reporting both.
var LocalAction = [clifford.Count]Action{
	clifford.X:   ActionX,
	clifford.Y:   ActionBoth,
	clifford.Z:   ActionZ,
	clifford.HX:  ActionX,
	clifford.SX:  ActionX,
	clifford.RX:  ActionX,
	clifford.HY:  ActionBoth,
	clifford.HZ:  ActionZ,
	clifford.HSX: ActionX,
	clifford.HRX: ActionX,
	clifford.SHY: ActionBoth,
	clifford.RHY: ActionBoth,
}

// TrackLocal reports local Clifford id on row t.
func TrackLocal(tr Tracker, id clifford.ID, t int) {
	Conditional(tr, LocalAction[id], t, t)
}

// Conditional issues the tracker calls for action a.
func Conditional(tr Tracker, a Action, measured, target int) {
	switch a {
	case ActionX:
		ConditionalX(tr, measured, target)
	case ActionZ:
		ConditionalZ(tr, measured, target)
	case ActionBoth:
		ConditionalY(tr, measured, target)
	default:
		ConditionalI(tr, measured, target)
	}
}

// ConditionalI tracks nothing.
func ConditionalI(Tracker, int, int) {}

// ConditionalX tracks an X correction.
func ConditionalX(tr Tracker, measured, target int) {
	tr.TrackX(measured, target)
}

// ConditionalZ tracks a Z correction.
func ConditionalZ(tr Tracker, measured, target int) {
	tr.TrackZ(measured, target)
}

// ConditionalY tracks an X then a Z correction.
func ConditionalY(tr Tracker, measured, target int) {
	tr.TrackX(measured, target)
	tr.TrackZ(measured, target)
}

// Noop discards every call.
type Noop struct{}

func (Noop) TrackX(int, int) {}
func (Noop) TrackZ(int, int) {}
func (Noop) Close() error    { return nil }

// Kind distinguishes recorded calls.
type Kind uint8

const (
	KindX Kind = iota
	KindZ
)

func (k Kind) String() string {
	if k == KindZ {
		return "z"
	}
	return "x"
}

// Event is one recorded tracker call.
type Event struct {
	Kind     Kind `json:"kind"`
	Measured int  `json:"measured"`
	Target   int  `json:"target"`
}

// Recorder keeps every call in order. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) TrackX(measured, target int) {
	r.record(Event{Kind: KindX, Measured: measured, Target: target})
}

func (r *Recorder) TrackZ(measured, target int) {
	r.record(Event{Kind: KindZ, Measured: measured, Target: target})
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Close marks the recorder closed. Recorded events remain readable.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Events returns a copy of the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

package clifford

// Queue holds, per tableau row, the local Clifford not yet applied to the
// tableau and the non-Clifford tag recorded for that row.
//
// A Queue is owned by a single widget and is not safe for concurrent use.
type Queue struct {
	ops  []ID
	tags []uint32
}

// NewQueue returns a queue of n identity entries with zero tags.
func NewQueue(n int) *Queue {
	return &Queue{
		ops:  make([]ID, n),
		tags: make([]uint32, n),
	}
}

// Len returns the number of rows the queue covers.
func (q *Queue) Len() int {
	return len(q.ops)
}

// Get returns the pending element for row t.
func (q *Queue) Get(t int) ID {
	return q.ops[t]
}

// Set replaces the pending element for row t.
func (q *Queue) Set(t int, id ID) {
	q.ops[t] = id
}

// ApplyLeft records gate g arriving after the pending element: q[t] = g∘q[t].
func (q *Queue) ApplyLeft(t int, g ID) {
	q.ops[t] = ComposeLeft(g, q.ops[t])
}

// ApplyRight records correction c on the right: q[t] = q[t]∘c.
func (q *Queue) ApplyRight(t int, c ID) {
	q.ops[t] = ComposeRight(q.ops[t], c)
}

// Take returns the pending element for row t and resets it to I.
func (q *Queue) Take(t int) ID {
	id := q.ops[t]
	q.ops[t] = I
	return id
}

// Pending reports whether row t has a non-identity element queued.
func (q *Queue) Pending(t int) bool {
	return q.ops[t] != I
}

// Tag returns the non-Clifford tag recorded for row t.
func (q *Queue) Tag(t int) uint32 {
	return q.tags[t]
}

// SetTag records the non-Clifford tag for row t.
func (q *Queue) SetTag(t int, tag uint32) {
	q.tags[t] = tag
}

// Ops returns a copy of the first n pending elements.
func (q *Queue) Ops(n int) []ID {
	return append([]ID(nil), q.ops[:n]...)
}

// Tags returns a copy of the first n tags.
func (q *Queue) Tags(n int) []uint32 {
	return append([]uint32(nil), q.tags[:n]...)
}

// Names returns the names of the first n pending elements.
func (q *Queue) Names(n int) []string {
	out := make([]string, n)
	for i, id := range q.ops[:n] {
		out[i] = id.String()
	}
	return out
}

// Reset clears every entry to I and every tag to zero.
func (q *Queue) Reset() {
	for i := range q.ops {
		q.ops[i] = I
		q.tags[i] = 0
	}
}

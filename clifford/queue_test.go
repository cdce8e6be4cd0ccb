package clifford

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	q := NewQueue(4)
	assert.Equal(t, 4, q.Len())
	assert.False(t, q.Pending(0))

	q.ApplyLeft(1, S)
	q.ApplyLeft(1, H)
	assert.Equal(t, HS, q.Get(1))
	assert.True(t, q.Pending(1))

	q.ApplyRight(2, H)
	q.ApplyRight(2, S)
	assert.Equal(t, HS, q.Get(2))

	assert.Equal(t, HS, q.Take(1))
	assert.Equal(t, I, q.Get(1))

	q.SetTag(3, 7)
	assert.Equal(t, uint32(7), q.Tag(3))
	assert.Equal(t, []uint32{0, 0, 0, 7}, q.Tags(4))
	assert.Equal(t, []string{"I", "I", "HS"}, q.Names(3))

	ops := q.Ops(3)
	ops[2] = X
	assert.Equal(t, HS, q.Get(2), "Ops returns a copy")

	q.Reset()
	assert.Equal(t, []ID{I, I, I, I}, q.Ops(4))
	assert.Equal(t, uint32(0), q.Tag(3))
}

func TestQueueGatesCancel(t *testing.T) {
	q := NewQueue(1)
	for _, g := range []ID{H, S, X, HSX, RH} {
		q.ApplyLeft(0, g)
		q.ApplyLeft(0, Inverse(g))
		assert.Equal(t, I, q.Get(0), "%s", g)
	}
}

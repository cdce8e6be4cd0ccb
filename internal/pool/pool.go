// Package pool runs the row update of a single gate on a fixed set of
// workers. Each gate is split into one contiguous word range per worker.
package pool

import (
	"errors"
	"runtime"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// ErrClosed is returned by Distribute after Close.
var ErrClosed = errors.New("pool closed")

type job struct {
	chunk  int
	lo, hi int
	fn     func(lo, hi int)
}

// Pool is a fixed set of workers fed from one mutex-guarded FIFO.
//
// Jobs from different gates may run concurrently. Jobs covering the same
// word range serialize on that range's lock: the phase words are the only
// state two gates on disjoint qubits share, and their XOR updates commute.
// A gate touching a qubit that still has jobs in flight waits for a barrier
// first.
type Pool struct {
	mu       sync.Mutex
	work     *sync.Cond
	idle     *sync.Cond
	jobs     []job
	pending  int
	inFlight *bitset.BitSet
	closed   bool

	chunks []sync.Mutex
	wg     sync.WaitGroup
}

// New starts a pool with the given number of workers.
// If workers <= 0, GOMAXPROCS workers are started.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		inFlight: bitset.New(64),
		chunks:   make([]sync.Mutex, workers),
	}
	p.work = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return len(p.chunks)
}

// Distribute splits [0, sliceLen) into one contiguous range per worker and
// queues fn for each non-empty range. qubits are the rows fn writes.
func (p *Pool) Distribute(qubits []int, sliceLen int, fn func(lo, hi int)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	for _, q := range qubits {
		if p.inFlight.Test(uint(q)) {
			p.waitIdle()
			break
		}
	}

	workers := len(p.chunks)
	step := (sliceLen + workers - 1) / workers
	for c := 0; c < workers; c++ {
		lo := c * step
		hi := min(lo+step, sliceLen)
		if lo >= hi {
			break
		}
		p.jobs = append(p.jobs, job{chunk: c, lo: lo, hi: hi, fn: fn})
		p.pending++
	}

	for _, q := range qubits {
		p.inFlight.Set(uint(q))
	}
	p.work.Broadcast()
	return nil
}

// Barrier blocks until every queued job has completed and clears the
// in-flight mask.
func (p *Pool) Barrier() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitIdle()
}

// InFlight reports whether qubit q has jobs that may not have completed.
func (p *Pool) InFlight(q int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight.Test(uint(q))
}

// Close drains the queue, stops the workers and waits for them to exit.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.work.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// waitIdle must be called with p.mu held.
func (p *Pool) waitIdle() {
	for p.pending > 0 {
		p.idle.Wait()
	}
	p.inFlight.ClearAll()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.jobs) == 0 && !p.closed {
			p.work.Wait()
		}
		if len(p.jobs) == 0 {
			p.mu.Unlock()
			return
		}
		j := p.jobs[0]
		p.jobs[0] = job{}
		p.jobs = p.jobs[1:]
		p.mu.Unlock()

		p.chunks[j.chunk].Lock()
		j.fn(j.lo, j.hi)
		p.chunks[j.chunk].Unlock()

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.inFlight.ClearAll()
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

package cabaliser

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives widget operation metrics.
// Implement it to integrate with a monitoring system.
type MetricsCollector interface {
	// RecordApply is called after each instruction. kind is "local",
	// "two-qubit", "rz" or "nop".
	RecordApply(kind string, duration time.Duration, err error)

	// RecordTeleport is called after input teleportation.
	RecordTeleport()

	// RecordDecompose is called after each decomposition of n qubits.
	RecordDecompose(n int, duration time.Duration, err error)

	// RecordFlush is called with the number of queued Cliffords applied to
	// the tableau by one flush.
	RecordFlush(count int)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordApply(string, time.Duration, error)  {}
func (NoopMetricsCollector) RecordTeleport()                           {}
func (NoopMetricsCollector) RecordDecompose(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFlush(int)                           {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	LocalCount       atomic.Int64
	TwoQubitCount    atomic.Int64
	RZCount          atomic.Int64
	ApplyErrors      atomic.Int64
	ApplyTotalNanos  atomic.Int64
	TeleportCount    atomic.Int64
	DecomposeCount   atomic.Int64
	DecomposeErrors  atomic.Int64
	DecomposeQubits  atomic.Int64
	DecomposeNanos   atomic.Int64
	FlushedCliffords atomic.Int64
}

// RecordApply implements MetricsCollector.
func (b *BasicMetricsCollector) RecordApply(kind string, duration time.Duration, err error) {
	b.ApplyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ApplyErrors.Add(1)
		return
	}
	switch kind {
	case "local":
		b.LocalCount.Add(1)
	case "two-qubit":
		b.TwoQubitCount.Add(1)
	case "rz":
		b.RZCount.Add(1)
	}
}

// RecordTeleport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTeleport() {
	b.TeleportCount.Add(1)
}

// RecordDecompose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecompose(n int, duration time.Duration, err error) {
	b.DecomposeCount.Add(1)
	b.DecomposeNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecomposeErrors.Add(1)
		return
	}
	b.DecomposeQubits.Add(int64(n))
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(count int) {
	b.FlushedCliffords.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	applies := b.LocalCount.Load() + b.TwoQubitCount.Load() + b.RZCount.Load() + b.ApplyErrors.Load()

	s := BasicMetricsStats{
		LocalCount:       b.LocalCount.Load(),
		TwoQubitCount:    b.TwoQubitCount.Load(),
		RZCount:          b.RZCount.Load(),
		ApplyErrors:      b.ApplyErrors.Load(),
		TeleportCount:    b.TeleportCount.Load(),
		DecomposeCount:   b.DecomposeCount.Load(),
		DecomposeErrors:  b.DecomposeErrors.Load(),
		DecomposeQubits:  b.DecomposeQubits.Load(),
		FlushedCliffords: b.FlushedCliffords.Load(),
	}
	if applies > 0 {
		s.ApplyAvgNanos = b.ApplyTotalNanos.Load() / applies
	}
	if s.DecomposeCount > 0 {
		s.DecomposeAvgNanos = b.DecomposeNanos.Load() / s.DecomposeCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LocalCount        int64
	TwoQubitCount     int64
	RZCount           int64
	ApplyErrors       int64
	ApplyAvgNanos     int64
	TeleportCount     int64
	DecomposeCount    int64
	DecomposeErrors   int64
	DecomposeQubits   int64
	DecomposeAvgNanos int64
	FlushedCliffords  int64
}

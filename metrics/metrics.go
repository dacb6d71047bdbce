// Package metrics provides lock-free counters for authcore observability.
//
// Counters live in cache-line-padded uint64 slots and are incremented
// atomically. The write path is allocation-free. Export formats live in
// metrics/export/ and read [Snapshot] values; this package performs no
// I/O and imports no sibling package.
package metrics

import "sync/atomic"

// MetricID names a single counter.
type MetricID uint16

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginLockedOut
	MetricLogout
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricPasswordResetRequest
	MetricPasswordResetSuccess
	MetricPasswordResetFailure
	MetricPasswordChangeSuccess
	MetricPasswordChangeFailure
	MetricEmailVerificationSuccess
	MetricEmailVerificationFailure
	MetricSessionCreated
	MetricSessionEvicted
	MetricSessionSwept
	MetricSessionRemoved
	metricIDCount
)

// MetricIDCount is the number of defined counters, for exporters that
// iterate the full range.
const MetricIDCount = int(metricIDCount)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls whether counters record at all. A disabled Metrics
// turns every Inc into a no-op.
type Config struct {
	Enabled bool
}

// Metrics holds the counter slots. The zero value is unusable; use
// [New]. All methods are safe on a nil receiver.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[MetricID]uint64{}}
	}
	s := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}

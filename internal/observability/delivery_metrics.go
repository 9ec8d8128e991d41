package observability

import (
	"sync/atomic"
	"time"
)

// DeliveryMetrics counts what the mail worker did since start. It backs the
// worker's /metrics snapshot; the API process uses Prom instead.
type DeliveryMetrics struct {
	popped  atomic.Uint64
	sent    atomic.Uint64
	failed  atomic.Uint64
	invalid atomic.Uint64

	// duration stats (nanoseconds)
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewDeliveryMetrics() *DeliveryMetrics {
	return &DeliveryMetrics{}
}

func (m *DeliveryMetrics) IncPopped() {
	m.popped.Add(1)
}
func (m *DeliveryMetrics) IncSent() {
	m.sent.Add(1)
}
func (m *DeliveryMetrics) IncFailed() {
	m.failed.Add(1)
}

// IncInvalid counts payloads that could not be decoded and were dropped.
func (m *DeliveryMetrics) IncInvalid() {
	m.invalid.Add(1)
}

func (m *DeliveryMetrics) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type DeliverySnapshot struct {
	Popped          uint64        `json:"popped"`
	Sent            uint64        `json:"sent"`
	Failed          uint64        `json:"failed"`
	Invalid         uint64        `json:"invalid"`
	DurationCount   uint64        `json:"durationCount"`
	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
}

func (m *DeliveryMetrics) Snapshot() DeliverySnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()
	max := m.durationMax.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return DeliverySnapshot{
		Popped:          m.popped.Load(),
		Sent:            m.sent.Load(),
		Failed:          m.failed.Load(),
		Invalid:         m.invalid.Load(),
		DurationCount:   count,
		AverageDuration: avg,
		MaxDuration:     time.Duration(max),
	}
}

// File: services/pipeline/metrics.go
package pipeline

import (
	"sync"
	"sync/atomic"

	"frontdesk/models"
)

// Metrics tracks pipeline activity: an atomic in-flight turn counter plus a
// mutex-guarded snapshot of totals and the last turn's timings.
type Metrics struct {
	active int64

	mu            sync.Mutex
	totalTurns    int64
	totalClosings int64
	last          models.TurnMetrics
}

// MetricsSnapshot is the point-in-time view served by the status surface.
type MetricsSnapshot struct {
	ActiveTurns   int64              `json:"active_turns"`
	TotalTurns    int64              `json:"total_turns"`
	TotalClosings int64              `json:"total_closings"`
	LastTurn      models.TurnMetrics `json:"last_turn"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) TurnStarted() {
	atomic.AddInt64(&m.active, 1)
}

func (m *Metrics) TurnFinished() {
	atomic.AddInt64(&m.active, -1)
}

// ActiveTurns reports turns currently in flight.
func (m *Metrics) ActiveTurns() int {
	return int(atomic.LoadInt64(&m.active))
}

// RecordTurn folds one finished turn into the totals.
func (m *Metrics) RecordTurn(turn models.TurnMetrics, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalTurns++
	if closed {
		m.totalClosings++
	}
	m.last = turn
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		ActiveTurns:   atomic.LoadInt64(&m.active),
		TotalTurns:    m.totalTurns,
		TotalClosings: m.totalClosings,
		LastTurn:      m.last,
	}
}

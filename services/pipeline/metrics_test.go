package pipeline

import (
	"testing"
	"time"

	"frontdesk/models"
)

func TestMetricsLifecycle(t *testing.T) {
	m := NewMetrics()

	m.TurnStarted()
	m.TurnStarted()
	if got := m.ActiveTurns(); got != 2 {
		t.Errorf("ActiveTurns = %d, want 2", got)
	}
	m.TurnFinished()
	if got := m.ActiveTurns(); got != 1 {
		t.Errorf("ActiveTurns = %d, want 1", got)
	}
	m.TurnFinished()

	m.RecordTurn(models.TurnMetrics{Total: 5 * time.Millisecond}, false)
	m.RecordTurn(models.TurnMetrics{Total: 9 * time.Millisecond}, true)

	snap := m.Snapshot()
	if snap.TotalTurns != 2 {
		t.Errorf("TotalTurns = %d, want 2", snap.TotalTurns)
	}
	if snap.TotalClosings != 1 {
		t.Errorf("TotalClosings = %d, want 1", snap.TotalClosings)
	}
	if snap.LastTurn.Total != 9*time.Millisecond {
		t.Errorf("LastTurn.Total = %v", snap.LastTurn.Total)
	}
	if snap.ActiveTurns != 0 {
		t.Errorf("ActiveTurns = %d, want 0", snap.ActiveTurns)
	}
}

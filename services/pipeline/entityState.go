// File: services/pipeline/entityState.go
package pipeline

import (
	"sync"

	"frontdesk/models"
)

// EntityStateStore holds one conversation's slot values. Every operation
// takes the store-wide lock, so readers never observe a half-applied write.
type EntityStateStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewEntityStateStore() *EntityStateStore {
	return &EntityStateStore{values: make(map[string]string, len(models.RequiredSlots))}
}

// Set writes a slot value. Empty values and unknown slots are dropped, so a
// written value is never cleared implicitly.
func (s *EntityStateStore) Set(slot, value string) bool {
	if value == "" || !isRequiredSlot(slot) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[slot] = value
	return true
}

func (s *EntityStateStore) Get(slot string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[slot]
	return v, ok && v != ""
}

func (s *EntityStateStore) Has(slot string) bool {
	_, ok := s.Get(slot)
	return ok
}

// Missing lists unfilled slots in required-slot order.
func (s *EntityStateStore) Missing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []string
	for _, slot := range models.RequiredSlots {
		if s.values[slot] == "" {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Known returns a snapshot of the non-empty slot values.
func (s *EntityStateStore) Known() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := make(map[string]string, len(s.values))
	for slot, value := range s.values {
		if value != "" {
			known[slot] = value
		}
	}
	return known
}

func (s *EntityStateStore) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range models.RequiredSlots {
		if s.values[slot] == "" {
			return false
		}
	}
	return true
}

// CompletionPercent reports filled/required x 100.
func (s *EntityStateStore) CompletionPercent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	filled := 0
	for _, slot := range models.RequiredSlots {
		if s.values[slot] != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(models.RequiredSlots)) * 100
}

// SetAll applies a bulk update, with the same drop rules as Set.
func (s *EntityStateStore) SetAll(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slot, value := range values {
		if value != "" && isRequiredSlot(slot) {
			s.values[slot] = value
		}
	}
}

func (s *EntityStateStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string, len(models.RequiredSlots))
}

// Required returns the fixed required-slot set in canonical order.
func (s *EntityStateStore) Required() []string {
	return append([]string(nil), models.RequiredSlots...)
}

func isRequiredSlot(slot string) bool {
	for _, s := range models.RequiredSlots {
		if s == slot {
			return true
		}
	}
	return false
}

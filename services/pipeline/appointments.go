// File: services/pipeline/appointments.go
package pipeline

import (
	"errors"
	"strings"
	"sync"

	"frontdesk/models"
)

// ErrTimeConflict reports an appointment that collides with an existing one
// on the same day and time.
var ErrTimeConflict = errors.New("an appointment already exists for that day and time")

// AppointmentStore is the in-memory collection of finalized bookings,
// guarded by a single lock.
type AppointmentStore struct {
	mu    sync.Mutex
	appts []models.Appointment
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{}
}

// Store appends the appointment unless another booking already occupies the
// same (day, time). Conflicting inserts are rejected, never merged.
func (s *AppointmentStore) Store(appt models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasConflictLocked(appt.Day, appt.Time) {
		return ErrTimeConflict
	}
	s.appts = append(s.appts, appt)
	return nil
}

// hasConflictLocked must be called with s.mu held.
func (s *AppointmentStore) hasConflictLocked(day, timeSlot string) bool {
	for _, existing := range s.appts {
		if strings.EqualFold(existing.Day, day) && strings.EqualFold(existing.Time, timeSlot) {
			return true
		}
	}
	return false
}

// All returns a copy of every stored appointment.
func (s *AppointmentStore) All() []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Appointment(nil), s.appts...)
}

// ByDay returns the appointments booked for the given day.
func (s *AppointmentStore) ByDay(day string) []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, appt := range s.appts {
		if strings.EqualFold(appt.Day, day) {
			out = append(out, appt)
		}
	}
	return out
}

func (s *AppointmentStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appts)
}

// CountByService tallies stored appointments per service.
func (s *AppointmentStore) CountByService() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, appt := range s.appts {
		counts[appt.Service]++
	}
	return counts
}

// Alternatives suggests nearby slots when (day, time) is taken.
func (s *AppointmentStore) Alternatives(day, timeSlot string) []string {
	return []string{
		"Earlier time on " + day,
		"Later time on " + day,
		"Same time on a different day",
	}
}

// Reset empties the store unconditionally.
func (s *AppointmentStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appts = nil
}

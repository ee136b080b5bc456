package pipeline

import (
	"testing"

	"frontdesk/models"
)

func testAppointment(id, day, timeSlot, service string) models.Appointment {
	return models.Appointment{
		ID:           id,
		CustomerName: "John Smith",
		Phone:        "555-123-4567",
		Day:          day,
		Time:         timeSlot,
		Service:      service,
		Status:       models.AppointmentConfirmed,
	}
}

func TestAppointmentStoreConflict(t *testing.T) {
	store := NewAppointmentStore()

	if err := store.Store(testAppointment("a1", "Friday", "2:00 PM", "haircut")); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := store.Store(testAppointment("a2", "Friday", "2:00 PM", "color")); err != ErrTimeConflict {
		t.Fatalf("conflicting Store returned %v, want ErrTimeConflict", err)
	}
	if got := store.Count(); got != 1 {
		t.Errorf("Count after rejected conflict = %d, want 1", got)
	}
}

func TestAppointmentStoreConflictIsCaseInsensitive(t *testing.T) {
	store := NewAppointmentStore()

	if err := store.Store(testAppointment("a1", "Friday", "2:00 PM", "haircut")); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := store.Store(testAppointment("a2", "friday", "2:00 pm", "color")); err != ErrTimeConflict {
		t.Errorf("case-variant conflict returned %v, want ErrTimeConflict", err)
	}
}

func TestAppointmentStoreDistinctSlots(t *testing.T) {
	store := NewAppointmentStore()

	appts := []models.Appointment{
		testAppointment("a1", "Friday", "2:00 PM", "haircut"),
		testAppointment("a2", "Friday", "3:00 PM", "haircut"),
		testAppointment("a3", "Monday", "2:00 PM", "color"),
	}
	for _, appt := range appts {
		if err := store.Store(appt); err != nil {
			t.Fatalf("Store(%s) failed: %v", appt.ID, err)
		}
	}

	if got := store.Count(); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
	if got := len(store.ByDay("friday")); got != 2 {
		t.Errorf("ByDay(friday) = %d appointments, want 2", got)
	}

	counts := store.CountByService()
	if counts["haircut"] != 2 || counts["color"] != 1 {
		t.Errorf("CountByService = %v", counts)
	}
}

func TestAppointmentStoreAllReturnsCopy(t *testing.T) {
	store := NewAppointmentStore()
	if err := store.Store(testAppointment("a1", "Friday", "2:00 PM", "haircut")); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	all := store.All()
	all[0].Day = "Sunday"

	if store.All()[0].Day != "Friday" {
		t.Error("mutating All() leaked into the store")
	}
}

func TestAppointmentStoreAlternatives(t *testing.T) {
	store := NewAppointmentStore()

	alts := store.Alternatives("Friday", "2:00 PM")
	if len(alts) != 3 {
		t.Fatalf("Alternatives returned %d suggestions, want 3", len(alts))
	}
	if alts[0] != "Earlier time on Friday" {
		t.Errorf("Alternatives[0] = %q", alts[0])
	}
}

func TestAppointmentStoreReset(t *testing.T) {
	store := NewAppointmentStore()
	if err := store.Store(testAppointment("a1", "Friday", "2:00 PM", "haircut")); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	store.Reset()

	if got := store.Count(); got != 0 {
		t.Errorf("Count after Reset = %d, want 0", got)
	}
	if err := store.Store(testAppointment("a2", "Friday", "2:00 PM", "color")); err != nil {
		t.Errorf("Store after Reset failed: %v", err)
	}
}

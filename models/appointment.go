package models

import "time"

// Appointment statuses.
const (
	AppointmentConfirmed = "confirmed"
	AppointmentPending   = "pending" // awaiting a follow-up call to pin down the time
)

// Appointment is a finalized booking held for the lifetime of the process.
type Appointment struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Day          string    `json:"day"`
	Time         string    `json:"time"`
	Service      string    `json:"service"`
	BookedAt     time.Time `json:"booked_at"`
	Status       string    `json:"status"`
}

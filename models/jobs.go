package models

// Booking notice kinds dispatched through the job queue.
const (
	NoticeConfirmation = "confirmation"
	NoticeReminder     = "reminder"
)

// BookingNotice is the payload of an asynchronous booking notification task.
type BookingNotice struct {
	Kind          string `json:"kind"`
	AppointmentID string `json:"appointment_id"`
	CustomerName  string `json:"customer_name"`
	Day           string `json:"day"`
	Time          string `json:"time"`
	Service       string `json:"service"`
	Status        string `json:"status"`
}

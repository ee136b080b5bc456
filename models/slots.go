package models

// Canonical slot identifiers for the five required booking details.
const (
	SlotName    = "name"
	SlotPhone   = "phone"
	SlotDay     = "day"
	SlotTime    = "time"
	SlotService = "service"
)

// RequiredSlots is the fixed required-slot set, in canonical order. The
// order is load-bearing: missing-slot listings and per-turn result rows
// follow it.
var RequiredSlots = []string{SlotName, SlotPhone, SlotDay, SlotTime, SlotService}

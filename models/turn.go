package models

import "time"

// SlotDetection is the outcome of probing one slot against an utterance.
type SlotDetection struct {
	Slot       string  `json:"slot"`
	Confidence float64 `json:"confidence"` // 0..1
	Detected   bool    `json:"detected"`
}

// SlotExtraction is the outcome of pulling one slot's value out of an utterance.
type SlotExtraction struct {
	Slot       string  `json:"slot"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Found      bool    `json:"found"`
	Method     string  `json:"method"` // e.g. "model", "lexicon", "lexicon_fallback", "none"
}

// SlotOutcome combines a slot's detection and extraction records for one turn.
type SlotOutcome struct {
	Slot       string  `json:"slot"`
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
	Value      string  `json:"value,omitempty"`
	Found      bool    `json:"found"`
	Method     string  `json:"method,omitempty"`
}

// TurnMetrics carries per-phase wall times for one processed turn.
type TurnMetrics struct {
	Detection       time.Duration `json:"detection"`
	Extraction      time.Duration `json:"extraction"`
	Composition     time.Duration `json:"composition"`
	Closing         time.Duration `json:"closing"`
	Total           time.Duration `json:"total"`
	ConcurrentUnits int           `json:"concurrent_units"` // parallel units launched in the extract/compose phase
	CoresUsed       int           `json:"cores_used"`
}

// TurnResult is everything one pipeline turn produced.
type TurnResult struct {
	Slots                []SlotOutcome      `json:"slots"`
	Composition          *CompositionResult `json:"composition,omitempty"`
	CompositionTriggered bool               `json:"composition_triggered"`
	Closing              *ClosingResult     `json:"closing,omitempty"`
	ClosingTriggered     bool               `json:"closing_triggered"`
	AppointmentID        string             `json:"appointment_id,omitempty"` // set only when the booking was stored
	Metrics              TurnMetrics        `json:"metrics"`
}

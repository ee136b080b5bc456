package models

// ClosingRequest asks for a closing message once every required slot is filled.
type ClosingRequest struct {
	Slots               map[string]string `json:"slots"`
	ConversationSummary string            `json:"conversation_summary,omitempty"`
	BusinessContext     string            `json:"business_context,omitempty"`
}

// ClosingResult is the final confirmation message and its booking metadata.
type ClosingResult struct {
	Message          string   `json:"message"`
	Summary          string   `json:"summary"` // formatted slot details
	ConfirmationCode string   `json:"confirmation_code"`
	NeedsFollowUp    bool     `json:"needs_follow_up"`
	NextSteps        []string `json:"next_steps"`
	Confidence       float64  `json:"confidence"`
	Valid            bool     `json:"valid"`
	Method           string   `json:"method"`
}

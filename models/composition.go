package models

// CompositionRequest asks for a question targeting up to two missing slots.
type CompositionRequest struct {
	MissingSlots []string          `json:"missing_slots"`
	KnownSlots   map[string]string `json:"known_slots"`
	Context      string            `json:"context,omitempty"` // most recent utterance / conversation so far
}

// CompositionResult is the generated question plus its quality assessment.
type CompositionResult struct {
	Question     string   `json:"question"`
	TargetSlots  []string `json:"target_slots"`
	QualityScore float64  `json:"quality_score"`
	Valid        bool     `json:"valid"`
	Method       string   `json:"method"` // "llm_primary", "template", "template_fallback", "none"
}

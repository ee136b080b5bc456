package models

// SessionEnvelope is the response body returned by every session operation.
// The "entities" key carries the current slot map; clients rely on these names.
type SessionEnvelope struct {
	Response      string            `json:"response"`
	Question      string            `json:"question"`
	SessionActive bool              `json:"session_active"`
	Entities      map[string]string `json:"entities"`
}

// DialogueInput is the request body for an update turn.
type DialogueInput struct {
	Sentence string `json:"sentence"`
}

// VoiceEnvelope adds the recognized transcript to the standard session payload.
type VoiceEnvelope struct {
	SessionEnvelope
	Transcription string `json:"transcription"`
}

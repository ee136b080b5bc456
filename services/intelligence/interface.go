// File: service/ai/interface.go
package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"frontdesk/models"
)

// GenerationKind selects what the generation backend is asked to produce.
type GenerationKind string

const (
	KindQuestion GenerationKind = "question"
	KindClosing  GenerationKind = "closing"
)

// GenerationRequest carries everything a backend needs to produce a question
// or a closing message.
type GenerationRequest struct {
	Kind        GenerationKind
	TargetSlots []string          // slots the text should ask for (empty for closings)
	KnownSlots  map[string]string // values collected so far
	Context     string            // recent conversational context
}

// DetectionCapability judges whether a slot's information is present in an
// utterance. Implementations report raw confidence; thresholding is the
// caller's concern.
type DetectionCapability interface {
	Detect(ctx context.Context, utterance, slot string) (confidence float64, detected bool, err error)
}

// ExtractionCapability pulls literal slot values out of an utterance.
type ExtractionCapability interface {
	Extract(ctx context.Context, utterance string, slots []string) ([]models.SlotExtraction, error)
}

// GenerationCapability produces natural-language questions and closings.
// Backends may be unavailable (network down, key missing); callers must
// check IsAvailable and degrade to templates when it reports false.
type GenerationCapability interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	AssessQuality(ctx context.Context, text string, req GenerationRequest) (float64, error)
	IsAvailable(ctx context.Context) bool
}

// buildPrompt renders a GenerationRequest into the prompt shared by all
// generation backends.
func buildPrompt(req GenerationRequest) string {
	var sb strings.Builder

	known := make([]string, 0, len(req.KnownSlots))
	for slot, value := range req.KnownSlots {
		known = append(known, fmt.Sprintf("%s=%s", slot, value))
	}
	sort.Strings(known)

	switch req.Kind {
	case KindClosing:
		sb.WriteString("You are a salon receptionist wrapping up a booking call. ")
		sb.WriteString("Write one short, warm confirmation message for the appointment details: ")
		sb.WriteString(strings.Join(known, ", "))
		sb.WriteString(".")
	default:
		sb.WriteString("You are a salon receptionist collecting booking details. ")
		sb.WriteString("Write one short, polite question asking the caller for: ")
		sb.WriteString(strings.Join(req.TargetSlots, " and "))
		sb.WriteString(".")
		if len(known) > 0 {
			sb.WriteString(" Already known: ")
			sb.WriteString(strings.Join(known, ", "))
			sb.WriteString(".")
		}
	}
	if req.Context != "" {
		sb.WriteString(" Conversation so far: ")
		sb.WriteString(req.Context)
	}
	return sb.String()
}

// heuristicQuality scores generated text without a model round-trip: base
// 0.7, one bonus each for substance, interrogative form and politeness.
// Scores land on exact tenths.
func heuristicQuality(text string) float64 {
	tenths := 7
	if len(text) > 10 {
		tenths++
	}
	if strings.Contains(text, "?") {
		tenths++
	}
	if strings.Contains(strings.ToLower(text), "please") {
		tenths++
	}
	return float64(tenths) / 10
}

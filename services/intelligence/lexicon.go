// File: service/ai/lexicon.go
package ai

import (
	"context"
	"regexp"
	"strings"

	"frontdesk/models"
)

// LexiconEngine is the deterministic detection/extraction backend built on
// regex and keyword matching. It is the default primary when no model server
// is configured and always serves as the extraction fallback.
type LexiconEngine struct{}

func NewLexiconEngine() *LexiconEngine {
	return &LexiconEngine{}
}

var (
	namePattern  = regexp.MustCompile(`(?i)\b(?:my name is|i'm|i am|this is|call me)\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`)
	phonePattern = regexp.MustCompile(`\d{3}-\d{3}-\d{4}|\(\d{3}\)\s*\d{3}-\d{4}|\d{10}`)
	dayPattern   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow)\b`)
	timePattern  = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`)
	vaguePattern = regexp.MustCompile(`(?i)\b(morning|afternoon|evening|noon)\b`)
)

// serviceKeywords lists recognizable salon services. Scan order breaks ties
// when an utterance mentions more than one.
var serviceKeywords = []string{
	"haircut", "trim", "color", "highlights", "perm", "styling", "blowout", "treatment",
}

// per-slot confidence assigned when the slot's pattern matches.
var lexiconConfidence = map[string]float64{
	models.SlotName:    0.85,
	models.SlotPhone:   0.95,
	models.SlotDay:     0.9,
	models.SlotTime:    0.9,
	models.SlotService: 0.85,
}

func (e *LexiconEngine) Detect(ctx context.Context, utterance, slot string) (float64, bool, error) {
	if matchSlot(utterance, slot) != "" {
		return lexiconConfidence[slot], true, nil
	}
	return 0, false, nil
}

func (e *LexiconEngine) Extract(ctx context.Context, utterance string, slots []string) ([]models.SlotExtraction, error) {
	results := make([]models.SlotExtraction, 0, len(slots))
	for _, slot := range slots {
		value := matchSlot(utterance, slot)
		results = append(results, models.SlotExtraction{
			Slot:       slot,
			Value:      value,
			Confidence: extractionConfidence(slot, value),
			Found:      value != "",
			Method:     "lexicon",
		})
	}
	return results, nil
}

func extractionConfidence(slot, value string) float64 {
	if value == "" {
		return 0
	}
	return lexiconConfidence[slot]
}

// matchSlot returns the utterance's value for the slot, or "" when absent.
func matchSlot(utterance, slot string) string {
	switch slot {
	case models.SlotName:
		if m := namePattern.FindStringSubmatch(utterance); m != nil {
			return strings.TrimSpace(m[1])
		}
	case models.SlotPhone:
		return phonePattern.FindString(utterance)
	case models.SlotDay:
		if m := dayPattern.FindString(utterance); m != "" {
			return capitalize(m)
		}
	case models.SlotTime:
		if m := timePattern.FindString(utterance); m != "" {
			return normalizeTime(m)
		}
		if m := vaguePattern.FindString(utterance); m != "" {
			return strings.ToLower(m)
		}
	case models.SlotService:
		lower := strings.ToLower(utterance)
		for _, kw := range serviceKeywords {
			if strings.Contains(lower, kw) {
				return kw
			}
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// normalizeTime uppercases the meridiem and pads a bare hour, so "2pm"
// becomes "2:00 PM".
func normalizeTime(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	meridiem := "AM"
	if strings.Contains(s, "PM") {
		meridiem = "PM"
	}
	s = strings.TrimSpace(strings.NewReplacer("AM", "", "PM", "").Replace(s))
	if !strings.Contains(s, ":") {
		s += ":00"
	}
	return s + " " + meridiem
}

// File: service/ai/local_generator.go
package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"frontdesk/models"
)

// LocalGenerator produces questions and closings without any external model.
// It is the default backend and, with a fixed seed, the reproducible one
// used in tests.
type LocalGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalGenerator builds a generator seeded from seed; a zero seed falls
// back to the current time.
func NewLocalGenerator(seed int64) *LocalGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LocalGenerator{rng: rand.New(rand.NewSource(seed))}
}

var questionOpeners = []string{
	"Could you please share %s?",
	"May I have %s, please?",
	"Could you let me know %s?",
}

var slotPhrases = map[string]string{
	models.SlotName:    "your name",
	models.SlotPhone:   "your phone number",
	models.SlotDay:     "your preferred day",
	models.SlotTime:    "a time that works for you",
	models.SlotService: "the service you'd like",
}

func (l *LocalGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if req.Kind == KindClosing {
		return l.closingText(req), nil
	}

	phrases := make([]string, 0, len(req.TargetSlots))
	for _, slot := range req.TargetSlots {
		phrase, ok := slotPhrases[slot]
		if !ok {
			phrase = "that detail"
		}
		phrases = append(phrases, phrase)
	}
	if len(phrases) == 0 {
		return "Could you please provide some additional information?", nil
	}

	l.mu.Lock()
	opener := questionOpeners[l.rng.Intn(len(questionOpeners))]
	l.mu.Unlock()
	return fmt.Sprintf(opener, strings.Join(phrases, " and ")), nil
}

func (l *LocalGenerator) closingText(req GenerationRequest) string {
	name := valueOr(req.KnownSlots, models.SlotName, "there")
	service := valueOr(req.KnownSlots, models.SlotService, "appointment")
	day := valueOr(req.KnownSlots, models.SlotDay, "the scheduled day")
	timeSlot := valueOr(req.KnownSlots, models.SlotTime, "the scheduled time")
	return fmt.Sprintf("Thank you, %s! Your %s is set for %s at %s. We look forward to seeing you!",
		name, service, day, timeSlot)
}

func valueOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (l *LocalGenerator) AssessQuality(ctx context.Context, text string, req GenerationRequest) (float64, error) {
	return heuristicQuality(text), nil
}

func (l *LocalGenerator) IsAvailable(ctx context.Context) bool {
	return true
}

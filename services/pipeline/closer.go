// File: services/pipeline/closer.go
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CloserConfig sets the confidence gate and retry budget for closing
// generation.
type CloserConfig struct {
	ConfidenceThreshold float64
	MaxRetries          int
	Seed                int64 // 0 seeds from the clock
}

// ClosingGenerator validates a completed slot set, produces the closing
// message (generated or templated) and derives the appointment record.
type ClosingGenerator struct {
	gen       ai.GenerationCapability
	templates *TemplateSet
	threshold float64
	retries   int
	logger    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewClosingGenerator(gen ai.GenerationCapability, templates *TemplateSet, cfg CloserConfig, logger *zap.Logger) *ClosingGenerator {
	if templates == nil {
		templates = DefaultTemplateSet()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ClosingGenerator{
		gen:       gen,
		templates: templates,
		threshold: cfg.ConfidenceThreshold,
		retries:   cfg.MaxRetries,
		logger:    logger,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

var phoneExactPattern = regexp.MustCompile(`^(?:\d{3}-\d{3}-\d{4}|\(\d{3}\)\s*\d{3}-\d{4}|\d{10})$`)

var weekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// GenerateClosing produces the closing for a completed session. Invalid
// data skips generation and goes straight to the template; every path
// attaches the slot summary, a fresh confirmation code, the next-steps list
// and the follow-up flag.
func (cg *ClosingGenerator) GenerateClosing(ctx context.Context, req models.ClosingRequest) models.ClosingResult {
	valid := cg.ValidateAppointmentData(req.Slots)
	followUp := NeedsFollowUp(req.Slots)

	var result models.ClosingResult
	generated := false
	if valid && cg.gen != nil && cg.gen.IsAvailable(ctx) {
		if best, ok := cg.generateWithRetry(ctx, req); ok && best.Confidence >= cg.threshold {
			result = best
			generated = true
		}
	}
	if !generated {
		result = cg.templateClosing(followUp, req.Slots)
	}

	result.Valid = valid
	result.Summary = FormatAppointmentDetails(req.Slots)
	result.ConfirmationCode = cg.confirmationCode()
	result.NeedsFollowUp = followUp
	result.NextSteps = nextSteps(followUp)
	return result
}

// generateWithRetry mirrors the composer's retry contract: one initial
// attempt, then up to MaxRetries more only when below threshold, keeping
// the strictly best.
func (cg *ClosingGenerator) generateWithRetry(ctx context.Context, req models.ClosingRequest) (models.ClosingResult, bool) {
	genReq := ai.GenerationRequest{
		Kind:       ai.KindClosing,
		KnownSlots: req.Slots,
		Context:    strings.TrimSpace(req.ConversationSummary + " " + req.BusinessContext),
	}

	best, ok := cg.attempt(ctx, genReq)
	if !ok {
		return models.ClosingResult{}, false
	}
	if best.Confidence >= cg.threshold {
		return best, true
	}

	for i := 0; i < cg.retries; i++ {
		attempt, ok := cg.attempt(ctx, genReq)
		if ok && attempt.Confidence > best.Confidence {
			best = attempt
		}
	}
	return best, true
}

func (cg *ClosingGenerator) attempt(ctx context.Context, genReq ai.GenerationRequest) (models.ClosingResult, bool) {
	text, err := cg.gen.Generate(ctx, genReq)
	if err != nil {
		cg.logger.Warn("closing generation failed", zap.Error(err))
		return models.ClosingResult{}, false
	}
	confidence, err := cg.gen.AssessQuality(ctx, text, genReq)
	if err != nil {
		cg.logger.Warn("closing quality assessment failed", zap.Error(err))
		return models.ClosingResult{}, false
	}
	return models.ClosingResult{
		Message:    text,
		Confidence: confidence,
		Method:     "llm_primary",
	}, true
}

func (cg *ClosingGenerator) templateClosing(followUp bool, slots map[string]string) models.ClosingResult {
	openingFamily := openingStandard
	confirmationFamily := confirmationStandard
	if followUp {
		openingFamily = openingNeedsConfirmation
		confirmationFamily = confirmationWithFollowup
	}

	opening := cg.pickVariant(cg.templates.ClosingOpenings[openingFamily], "Thank you for scheduling your appointment!")
	confirmation := cg.pickVariant(cg.templates.Confirmations[confirmationFamily], "We'll be in touch soon!")

	message := opening + "\n\n" + FormatAppointmentDetails(slots) + "\n\n" + confirmation
	return models.ClosingResult{
		Message:    message,
		Confidence: 0.85,
		Method:     "template",
	}
}

func (cg *ClosingGenerator) pickVariant(variants []string, fallback string) string {
	if len(variants) == 0 {
		return fallback
	}
	cg.mu.Lock()
	defer cg.mu.Unlock()
	return variants[cg.rng.Intn(len(variants))]
}

// confirmationCode returns "APT" plus six random digits.
func (cg *ClosingGenerator) confirmationCode() string {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	return fmt.Sprintf("APT%06d", cg.rng.Intn(1000000))
}

// ValidateAppointmentData checks a completed slot set: all five present and
// non-empty, name 2-50 characters, phone in a recognized format, day a
// weekday name, time non-empty.
func (cg *ClosingGenerator) ValidateAppointmentData(slots map[string]string) bool {
	for _, slot := range models.RequiredSlots {
		if slots[slot] == "" {
			cg.logger.Debug("appointment data incomplete", zap.String("slot", slot))
			return false
		}
	}
	name := slots[models.SlotName]
	if len(name) < 2 || len(name) > 50 {
		cg.logger.Debug("appointment name out of range", zap.Int("length", len(name)))
		return false
	}
	if !phoneExactPattern.MatchString(slots[models.SlotPhone]) {
		cg.logger.Debug("appointment phone malformed", zap.String("phone", slots[models.SlotPhone]))
		return false
	}
	if !isWeekday(slots[models.SlotDay]) {
		cg.logger.Debug("appointment day not a weekday name", zap.String("day", slots[models.SlotDay]))
		return false
	}
	return slots[models.SlotTime] != ""
}

func isWeekday(day string) bool {
	for _, name := range weekdayNames {
		if strings.EqualFold(day, name) {
			return true
		}
	}
	return false
}

// NeedsFollowUp reports whether staff must call back to pin down the time:
// the time slot is absent or names a vague period rather than a clock time.
func NeedsFollowUp(slots map[string]string) bool {
	timeSlot, ok := slots[models.SlotTime]
	if !ok || timeSlot == "" {
		return true
	}
	lower := strings.ToLower(timeSlot)
	return strings.Contains(lower, "morning") ||
		strings.Contains(lower, "afternoon") ||
		strings.Contains(lower, "evening")
}

// BuildAppointment derives the appointment record from a closing request.
// Missing slots default to "Unknown"; status is "pending" when follow-up is
// needed, "confirmed" otherwise.
func (cg *ClosingGenerator) BuildAppointment(req models.ClosingRequest) models.Appointment {
	status := models.AppointmentConfirmed
	if NeedsFollowUp(req.Slots) {
		status = models.AppointmentPending
	}
	return models.Appointment{
		ID:           uuid.NewString(),
		CustomerName: valueOrUnknown(req.Slots, models.SlotName),
		Phone:        valueOrUnknown(req.Slots, models.SlotPhone),
		Day:          valueOrUnknown(req.Slots, models.SlotDay),
		Time:         valueOrUnknown(req.Slots, models.SlotTime),
		Service:      valueOrUnknown(req.Slots, models.SlotService),
		BookedAt:     time.Now(),
		Status:       status,
	}
}

// FormatAppointmentDetails renders the slot map as the customer-facing
// summary block.
func FormatAppointmentDetails(slots map[string]string) string {
	return fmt.Sprintf("📋 Appointment Details:\n   Name: %s\n   Phone: %s\n   Service: %s\n   Day: %s\n   Time: %s",
		valueOrUnknown(slots, models.SlotName),
		valueOrUnknown(slots, models.SlotPhone),
		valueOrUnknown(slots, models.SlotService),
		valueOrUnknown(slots, models.SlotDay),
		valueOrUnknown(slots, models.SlotTime))
}

func nextSteps(followUp bool) []string {
	if followUp {
		return []string{
			"Wait for confirmation call within 24 hours",
			"Keep your phone available for our call",
			"Prepare any questions about the service",
		}
	}
	return []string{
		"Watch for confirmation text message",
		"Arrive 10 minutes early for your appointment",
		"Bring valid ID if this is your first visit",
	}
}

func valueOrUnknown(slots map[string]string, slot string) string {
	if v, ok := slots[slot]; ok && v != "" {
		return v
	}
	return "Unknown"
}

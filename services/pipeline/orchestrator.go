// File: services/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"go.uber.org/zap"
)

// SessionPipelineState is the per-conversation state the orchestrator works
// on: the slot store plus a once-only closing latch. Turn-level
// serialization against the same session is the caller's job.
type SessionPipelineState struct {
	ID       string
	Entities *EntityStateStore

	mu     sync.Mutex
	closed bool
}

func NewSessionPipelineState(id string) *SessionPipelineState {
	return &SessionPipelineState{ID: id, Entities: NewEntityStateStore()}
}

// Closed reports whether this session's closing has already fired.
func (s *SessionPipelineState) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// markClosed flips the latch, reporting true only on the first call.
func (s *SessionPipelineState) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// OrchestratorConfig wires the orchestrator's collaborators.
type OrchestratorConfig struct {
	Detection       *DetectionCrew
	Extraction      *ExtractionCrew
	Composer        *QuestionComposer
	Closer          *ClosingGenerator
	Appointments    *AppointmentStore
	Contexts        ai.ContextStore
	Metrics         *Metrics
	Logger          *zap.Logger
	TurnDeadline    time.Duration // 0 disables the per-turn deadline
	BusinessContext string
}

// Orchestrator runs one dialogue turn through the detection barrier, the
// parallel extraction/composition pair, the post-merge completeness check
// and the once-only closing.
type Orchestrator struct {
	detection       *DetectionCrew
	extraction      *ExtractionCrew
	composer        *QuestionComposer
	closer          *ClosingGenerator
	appointments    *AppointmentStore
	contexts        ai.ContextStore
	metrics         *Metrics
	logger          *zap.Logger
	turnDeadline    time.Duration
	businessContext string
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		detection:       cfg.Detection,
		extraction:      cfg.Extraction,
		composer:        cfg.Composer,
		closer:          cfg.Closer,
		appointments:    cfg.Appointments,
		contexts:        cfg.Contexts,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		turnDeadline:    cfg.TurnDeadline,
		businessContext: cfg.BusinessContext,
	}
}

// ProcessTurn drives one utterance through the pipeline. It never fails
// outright: capability errors degrade to not-detected/not-found outcomes or
// template text, and the result always comes back with timings attached.
func (o *Orchestrator) ProcessTurn(ctx context.Context, state *SessionPipelineState, utterance string) models.TurnResult {
	start := time.Now()
	o.metrics.TurnStarted()
	defer o.metrics.TurnFinished()

	if o.turnDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.turnDeadline)
		defer cancel()
	}

	o.appendContext(ctx, state.ID, "caller: "+utterance)

	// Phase 1: detection, a hard barrier before anything else runs.
	detectStart := time.Now()
	detections := o.detection.DetectAll(ctx, utterance)
	detectDur := time.Since(detectStart)

	var detected []string
	detectedSet := make(map[string]bool, len(detections))
	for _, d := range detections {
		if d.Detected {
			detected = append(detected, d.Slot)
			detectedSet[d.Slot] = true
		}
	}

	// Composition targets what is still missing and was not detected this
	// turn, so a turn that fills the last slot asks for nothing.
	var targets []string
	for _, slot := range state.Entities.Missing() {
		if !detectedSet[slot] {
			targets = append(targets, slot)
		}
	}

	// Phase 2: extraction and composition fan out together and are awaited
	// together; nothing merges until both are done.
	var (
		wg          sync.WaitGroup
		extractions []models.SlotExtraction
		composition *models.CompositionResult
		extractDur  time.Duration
		composeDur  time.Duration
	)
	units := 0

	if len(detected) > 0 {
		units++
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.Now()
			extractions = o.extraction.ExtractAll(ctx, utterance, detected)
			extractDur = time.Since(t)
		}()
	}
	if len(targets) > 0 && !state.Entities.IsComplete() {
		units++
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.Now()
			groups := GroupSlots(targets)
			req := models.CompositionRequest{
				MissingSlots: groups[0],
				KnownSlots:   state.Entities.Known(),
				Context:      o.turnContext(ctx, state.ID, utterance),
			}
			res := o.composer.Compose(ctx, req)
			composition = &res
			composeDur = time.Since(t)
		}()
	}
	wg.Wait()

	for _, ex := range extractions {
		if ex.Found {
			state.Entities.Set(ex.Slot, ex.Value)
		}
	}

	result := models.TurnResult{
		Slots:                mergeOutcomes(detections, extractions),
		Composition:          composition,
		CompositionTriggered: composition != nil,
	}
	if composition != nil {
		o.appendContext(ctx, state.ID, "agent: "+composition.Question)
	}

	// Phase 3: completeness check, then the once-only closing.
	var closeDur time.Duration
	if state.Entities.IsComplete() && state.markClosed() {
		t := time.Now()
		closing := o.runClosing(ctx, state, &result)
		result.Closing = &closing
		result.ClosingTriggered = true
		closeDur = time.Since(t)
	}

	result.Metrics = models.TurnMetrics{
		Detection:       detectDur,
		Extraction:      extractDur,
		Composition:     composeDur,
		Closing:         closeDur,
		Total:           time.Since(start),
		ConcurrentUnits: units,
		CoresUsed:       runtime.NumCPU(),
	}
	o.metrics.RecordTurn(result.Metrics, result.ClosingTriggered)

	o.logger.Debug("turn processed",
		zap.String("session", state.ID),
		zap.Int("detected", len(detected)),
		zap.Bool("composed", result.CompositionTriggered),
		zap.Bool("closed", result.ClosingTriggered),
		zap.Duration("total", result.Metrics.Total))
	return result
}

// runClosing generates the closing, derives the appointment and stores it.
// A (day, time) conflict is logged and surfaced through the closing's
// next steps; the closing latch stays set either way.
func (o *Orchestrator) runClosing(ctx context.Context, state *SessionPipelineState, result *models.TurnResult) models.ClosingResult {
	req := models.ClosingRequest{
		Slots:               state.Entities.Known(),
		ConversationSummary: o.conversationSummary(ctx, state.ID),
		BusinessContext:     o.businessContext,
	}
	closing := o.closer.GenerateClosing(ctx, req)
	appt := o.closer.BuildAppointment(req)

	if err := o.appointments.Store(appt); err != nil {
		o.logger.Warn("appointment not stored",
			zap.String("session", state.ID),
			zap.String("day", appt.Day),
			zap.String("time", appt.Time),
			zap.Error(err))
		closing.NeedsFollowUp = true
		closing.NextSteps = append([]string{"That slot was just taken. Some alternatives:"},
			o.appointments.Alternatives(appt.Day, appt.Time)...)
		return closing
	}

	result.AppointmentID = appt.ID
	o.logger.Info("appointment stored",
		zap.String("session", state.ID),
		zap.String("appointment", appt.ID),
		zap.String("status", appt.Status))
	return closing
}

// mergeOutcomes flattens detection and extraction records into per-slot
// rows, in required-slot order.
func mergeOutcomes(detections []models.SlotDetection, extractions []models.SlotExtraction) []models.SlotOutcome {
	exBySlot := make(map[string]models.SlotExtraction, len(extractions))
	for _, ex := range extractions {
		exBySlot[ex.Slot] = ex
	}

	outcomes := make([]models.SlotOutcome, 0, len(detections))
	for _, d := range detections {
		outcome := models.SlotOutcome{
			Slot:       d.Slot,
			Detected:   d.Detected,
			Confidence: d.Confidence,
		}
		if ex, ok := exBySlot[d.Slot]; ok {
			outcome.Value = ex.Value
			outcome.Found = ex.Found
			outcome.Method = ex.Method
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (o *Orchestrator) appendContext(ctx context.Context, sessionID, line string) {
	if o.contexts == nil {
		return
	}
	if err := o.contexts.Append(ctx, sessionID, line); err != nil {
		o.logger.Warn("context append failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// turnContext summarizes recent conversation for the composition prompt.
func (o *Orchestrator) turnContext(ctx context.Context, sessionID, utterance string) string {
	if o.contexts != nil {
		convCtx, err := o.contexts.Get(ctx, sessionID)
		if err == nil && len(convCtx.History) > 0 {
			return strings.Join(convCtx.Tail(4), " | ")
		}
		if err != nil {
			o.logger.Warn("context read failed", zap.String("session", sessionID), zap.Error(err))
		}
	}
	return "caller: " + utterance
}

func (o *Orchestrator) conversationSummary(ctx context.Context, sessionID string) string {
	if o.contexts != nil {
		convCtx, err := o.contexts.Get(ctx, sessionID)
		if err == nil && len(convCtx.History) > 0 {
			return fmt.Sprintf("Collected appointment details over %d exchanges", len(convCtx.History))
		}
	}
	return "Collected all appointment details"
}

// Metrics exposes the orchestrator's metrics for the status surface.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Appointments exposes the booking store for the status surface.
func (o *Orchestrator) Appointments() *AppointmentStore {
	return o.appointments
}

// Composer exposes the question composer for the status surface.
func (o *Orchestrator) Composer() *QuestionComposer {
	return o.composer
}

// ComposerWorkersFor picks the composer pool size from the hardware tier:
// two workers with 4+ cores, one below that.
func ComposerWorkersFor(cores int) int {
	if cores >= 4 {
		return 2
	}
	return 1
}

// AdjustForLoad nudges the composer pool against the observed load: one
// worker down when in-flight turns exceed the cores, one up (within the
// tier ceiling) when load is light. Advisory only.
func (o *Orchestrator) AdjustForLoad() {
	cores := runtime.NumCPU()
	active := o.metrics.ActiveTurns()
	workers := o.composer.Workers()
	if workers == 0 {
		return // pool stopped
	}

	switch {
	case active > cores && workers > 1:
		o.composer.Resize(workers - 1)
		o.logger.Info("composer pool shrunk",
			zap.Int("workers", workers-1), zap.Int("active_turns", active))
	case active < cores/2 && workers < ComposerWorkersFor(cores):
		o.composer.Resize(workers + 1)
		o.logger.Info("composer pool grown",
			zap.Int("workers", workers+1), zap.Int("active_turns", active))
	}
}

// StartLoadMonitor applies AdjustForLoad on a fixed cadence until the
// context is canceled.
func (o *Orchestrator) StartLoadMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				o.AdjustForLoad()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// File: services/session/controller.go
package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"
	"frontdesk/services/notification"
	"frontdesk/services/pipeline"
	"frontdesk/services/tasks"

	"go.uber.org/zap"
)

var (
	ErrEmptySessionID  = errors.New("session id must not be empty")
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
)

var greetings = []string{
	"Hello! I'm here to help you book your hair appointment.",
	"Hi there! I'd love to help you schedule your appointment.",
	"Welcome! Let's book your appointment together.",
}

// cannedQuestions are per-slot openers used before the pipeline has
// composed anything, and as the fallback when a turn composes nothing.
var cannedQuestions = map[string]string{
	models.SlotName:    "May I have your name, please?",
	models.SlotPhone:   "What's your phone number?",
	models.SlotService: "What service would you like?",
	models.SlotDay:     "What day works for you?",
	models.SlotTime:    "What time would you prefer?",
}

// Controller owns the session registry and funnels client operations into
// the pipeline. Turns against the same session are serialized on the
// session's own lock; different sessions run turns concurrently.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	orchestrator *pipeline.Orchestrator
	contexts     ai.ContextStore
	notifier     notification.Service
	notices      *tasks.NoticeEnqueuer
	logger       *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

type entry struct {
	mu     sync.Mutex
	state  *pipeline.SessionPipelineState
	active bool
}

// ControllerConfig wires the controller's collaborators. Notifier and
// Notices may be nil when notifications are disabled.
type ControllerConfig struct {
	Orchestrator *pipeline.Orchestrator
	Contexts     ai.ContextStore
	Notifier     notification.Service
	Notices      *tasks.NoticeEnqueuer
	Logger       *zap.Logger
	Seed         int64 // 0 seeds from the clock
}

func NewController(cfg ControllerConfig) *Controller {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Controller{
		sessions:     make(map[string]*entry),
		orchestrator: cfg.Orchestrator,
		contexts:     cfg.Contexts,
		notifier:     cfg.Notifier,
		notices:      cfg.Notices,
		logger:       cfg.Logger,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Create registers a new session and returns the greeting envelope.
func (c *Controller) Create(ctx context.Context, id string) (models.SessionEnvelope, error) {
	if id == "" {
		return models.SessionEnvelope{}, ErrEmptySessionID
	}

	c.mu.Lock()
	if _, exists := c.sessions[id]; exists {
		c.mu.Unlock()
		return models.SessionEnvelope{}, ErrSessionExists
	}
	c.sessions[id] = &entry{state: pipeline.NewSessionPipelineState(id), active: true}
	c.mu.Unlock()

	c.logger.Info("session created", zap.String("session", id))
	return models.SessionEnvelope{
		Response:      c.greeting(),
		Question:      cannedQuestions[models.SlotName],
		SessionActive: true,
		Entities:      map[string]string{},
	}, nil
}

// Update runs one pipeline turn for the utterance and builds the response
// envelope from the turn's outcome.
func (c *Controller) Update(ctx context.Context, id, sentence string) (models.SessionEnvelope, error) {
	e, err := c.lookup(id)
	if err != nil {
		return models.SessionEnvelope{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return models.SessionEnvelope{
			Response:      "Session was already inactive.",
			SessionActive: false,
			Entities:      e.state.Entities.Known(),
		}, nil
	}

	turn := c.orchestrator.ProcessTurn(ctx, e.state, sentence)

	envelope := models.SessionEnvelope{
		SessionActive: true,
		Entities:      e.state.Entities.Known(),
	}
	switch {
	case turn.ClosingTriggered && turn.Closing != nil:
		envelope.Response = turn.Closing.Message
		envelope.Question = "Your appointment is ready!"
		c.dispatchNotices(ctx, e.state, turn)
	case e.state.Entities.IsComplete():
		envelope.Response = "Perfect! I have all your information."
		envelope.Question = "Your appointment is ready!"
	default:
		envelope.Response = "Thank you for that information."
		if turn.Composition != nil {
			envelope.Question = turn.Composition.Question
		} else {
			envelope.Question = c.nextCannedQuestion(e.state)
		}
	}
	return envelope, nil
}

// Get returns the session's current envelope without running a turn.
func (c *Controller) Get(ctx context.Context, id string) (models.SessionEnvelope, error) {
	e, err := c.lookup(id)
	if err != nil {
		return models.SessionEnvelope{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	envelope := models.SessionEnvelope{
		SessionActive: e.active,
		Entities:      e.state.Entities.Known(),
	}
	if e.state.Entities.IsComplete() {
		envelope.Response = "Your information is complete!"
		envelope.Question = "All done!"
	} else {
		envelope.Response = "Here's your current information:"
		envelope.Question = c.nextCannedQuestion(e.state)
	}
	return envelope, nil
}

// End deactivates the session, clears its conversation context and resets
// its slot state. The entry stays registered so a repeated end reports
// "already inactive" rather than "not found".
func (c *Controller) End(ctx context.Context, id string) (models.SessionEnvelope, error) {
	e, err := c.lookup(id)
	if err != nil {
		return models.SessionEnvelope{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return models.SessionEnvelope{
			Response:      "Session was already inactive.",
			SessionActive: false,
			Entities:      e.state.Entities.Known(),
		}, nil
	}

	finalEntities := e.state.Entities.Known()
	e.active = false
	e.state.Entities.Reset()
	if c.contexts != nil {
		if err := c.contexts.Clear(ctx, id); err != nil {
			c.logger.Warn("context clear failed", zap.String("session", id), zap.Error(err))
		}
	}

	c.logger.Info("session ended", zap.String("session", id))
	return models.SessionEnvelope{
		Response:      "Session ended successfully.",
		SessionActive: false,
		Entities:      finalEntities,
	}, nil
}

// ActiveCount reports how many sessions are still active.
func (c *Controller) ActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, e := range c.sessions {
		if e.active {
			count++
		}
	}
	return count
}

func (c *Controller) lookup(id string) (*entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (c *Controller) greeting() string {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return greetings[c.rng.Intn(len(greetings))]
}

func (c *Controller) nextCannedQuestion(state *pipeline.SessionPipelineState) string {
	missing := state.Entities.Missing()
	if len(missing) == 0 {
		return "All done!"
	}
	return cannedQuestions[missing[0]]
}

// dispatchNotices pushes the booking event out: through the queue when one
// is configured, directly to the notifier otherwise.
func (c *Controller) dispatchNotices(ctx context.Context, state *pipeline.SessionPipelineState, turn models.TurnResult) {
	if turn.AppointmentID == "" {
		return
	}

	known := state.Entities.Known()
	status := models.AppointmentConfirmed
	if turn.Closing != nil && turn.Closing.NeedsFollowUp {
		status = models.AppointmentPending
	}
	notice := models.BookingNotice{
		Kind:          models.NoticeConfirmation,
		AppointmentID: turn.AppointmentID,
		CustomerName:  known[models.SlotName],
		Day:           known[models.SlotDay],
		Time:          known[models.SlotTime],
		Service:       known[models.SlotService],
		Status:        status,
	}

	if c.notices != nil {
		if err := c.notices.EnqueueConfirmation(notice); err != nil {
			c.logger.Warn("confirmation notice enqueue failed",
				zap.String("appointment", notice.AppointmentID), zap.Error(err))
		}
		if err := c.notices.EnqueueReminder(notice); err != nil {
			c.logger.Warn("reminder notice enqueue failed",
				zap.String("appointment", notice.AppointmentID), zap.Error(err))
		}
		return
	}
	if c.notifier != nil {
		if err := c.notifier.NotifyBooking(ctx, notice); err != nil {
			c.logger.Warn("booking notification failed",
				zap.String("appointment", notice.AppointmentID), zap.Error(err))
		}
	}
}

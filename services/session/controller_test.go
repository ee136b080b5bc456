package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"
	"frontdesk/services/pipeline"

	"go.uber.org/zap"
)

func newTestController(t *testing.T) (*Controller, *pipeline.AppointmentStore) {
	t.Helper()
	lexicon := ai.NewLexiconEngine()
	gen := ai.NewLocalGenerator(42)
	logger := zap.NewNop()
	appts := pipeline.NewAppointmentStore()
	contexts := ai.NewMemoryContextStore()

	composer := pipeline.NewQuestionComposer(gen, nil, pipeline.ComposerConfig{
		Workers:          1,
		QualityThreshold: 0.7,
		MaxRetries:       2,
		Seed:             42,
	}, logger)
	t.Cleanup(composer.Stop)

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Detection:  pipeline.NewDetectionCrew(lexicon, 0.5, logger),
		Extraction: pipeline.NewExtractionCrew(lexicon, lexicon, 0.5, logger),
		Composer:   composer,
		Closer: pipeline.NewClosingGenerator(gen, nil, pipeline.CloserConfig{
			ConfidenceThreshold: 0.8,
			MaxRetries:          2,
			Seed:                42,
		}, logger),
		Appointments:    appts,
		Contexts:        contexts,
		Metrics:         pipeline.NewMetrics(),
		Logger:          logger,
		BusinessContext: "Hair salon appointment",
	})

	ctrl := NewController(ControllerConfig{
		Orchestrator: orch,
		Contexts:     contexts,
		Logger:       logger,
		Seed:         42,
	})
	return ctrl, appts
}

func isGreeting(s string) bool {
	for _, g := range greetings {
		if s == g {
			return true
		}
	}
	return false
}

func TestControllerCreate(t *testing.T) {
	ctrl, _ := newTestController(t)

	env, err := ctrl.Create(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !isGreeting(env.Response) {
		t.Errorf("Response = %q, not a known greeting", env.Response)
	}
	if env.Question != cannedQuestions[models.SlotName] {
		t.Errorf("Question = %q, want the name opener", env.Question)
	}
	if !env.SessionActive {
		t.Error("new session not active")
	}
	if len(env.Entities) != 0 {
		t.Errorf("new session Entities = %v, want empty", env.Entities)
	}
	if got := ctrl.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount = %d, want 1", got)
	}
}

func TestControllerCreateValidation(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	if _, err := ctrl.Create(ctx, ""); !errors.Is(err, ErrEmptySessionID) {
		t.Errorf("empty id error = %v, want ErrEmptySessionID", err)
	}
	if _, err := ctrl.Create(ctx, "dup"); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if _, err := ctrl.Create(ctx, "dup"); !errors.Is(err, ErrSessionExists) {
		t.Errorf("duplicate id error = %v, want ErrSessionExists", err)
	}
}

func TestControllerUnknownSession(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	if _, err := ctrl.Update(ctx, "nope", "hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Update error = %v, want ErrSessionNotFound", err)
	}
	if _, err := ctrl.Get(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get error = %v, want ErrSessionNotFound", err)
	}
	if _, err := ctrl.End(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("End error = %v, want ErrSessionNotFound", err)
	}
}

func TestControllerFullBooking(t *testing.T) {
	ctrl, appts := newTestController(t)
	ctx := context.Background()
	if _, err := ctrl.Create(ctx, "s1"); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	env, err := ctrl.Update(ctx, "s1", "Hi, my name is John Smith")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if env.Response != "Thank you for that information." {
		t.Errorf("turn 1 Response = %q", env.Response)
	}
	if !strings.Contains(env.Question, "phone number") {
		t.Errorf("turn 1 Question = %q, should ask for the phone", env.Question)
	}
	if env.Entities[models.SlotName] != "John Smith" {
		t.Errorf("turn 1 Entities = %v", env.Entities)
	}

	env, err = ctrl.Update(ctx, "s1", "My number is 555-123-4567")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !strings.Contains(env.Question, "day") || !strings.Contains(env.Question, "time") {
		t.Errorf("turn 2 Question = %q, should ask for day and time", env.Question)
	}

	env, err = ctrl.Update(ctx, "s1", "I'd like a haircut on Friday")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !strings.Contains(env.Question, "time") {
		t.Errorf("turn 3 Question = %q, should ask for the time", env.Question)
	}

	env, err = ctrl.Update(ctx, "s1", "Let's do 2pm")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !strings.Contains(env.Response, "John Smith") {
		t.Errorf("closing Response = %q", env.Response)
	}
	if env.Question != "Your appointment is ready!" {
		t.Errorf("closing Question = %q", env.Question)
	}
	if len(env.Entities) != 5 || env.Entities[models.SlotTime] != "2:00 PM" {
		t.Errorf("closing Entities = %v", env.Entities)
	}
	if got := appts.Count(); got != 1 {
		t.Errorf("appointment count = %d, want 1", got)
	}

	// A turn after the close must not book again.
	env, err = ctrl.Update(ctx, "s1", "Thanks again!")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if env.Response != "Perfect! I have all your information." {
		t.Errorf("post-closing Response = %q", env.Response)
	}
	if env.Question != "Your appointment is ready!" {
		t.Errorf("post-closing Question = %q", env.Question)
	}
	if got := appts.Count(); got != 1 {
		t.Errorf("appointment count after extra turn = %d, want 1", got)
	}
}

func TestControllerSingleUtteranceBooking(t *testing.T) {
	ctrl, appts := newTestController(t)
	ctx := context.Background()
	if _, err := ctrl.Create(ctx, "s1"); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	env, err := ctrl.Update(ctx, "s1", "Hi, I'm John, book me a trim on Monday at 3pm, number 555-123-4567")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if env.Question != "Your appointment is ready!" {
		t.Errorf("Question = %q, expected the close", env.Question)
	}
	if len(env.Entities) != 5 {
		t.Errorf("Entities = %v, want all five slots", env.Entities)
	}
	if got := appts.Count(); got != 1 {
		t.Errorf("appointment count = %d, want 1", got)
	}
}

func TestControllerGet(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	if _, err := ctrl.Create(ctx, "s1"); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	env, err := ctrl.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if env.Response != "Here's your current information:" {
		t.Errorf("Response = %q", env.Response)
	}
	if env.Question != cannedQuestions[models.SlotName] {
		t.Errorf("Question = %q, want the name opener", env.Question)
	}

	if _, err := ctrl.Update(ctx, "s1", "Hi, I'm John, book me a trim on Monday at 3pm, number 555-123-4567"); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	env, err = ctrl.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if env.Response != "Your information is complete!" {
		t.Errorf("complete Response = %q", env.Response)
	}
	if env.Question != "All done!" {
		t.Errorf("complete Question = %q", env.Question)
	}
}

func TestControllerEnd(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	if _, err := ctrl.Create(ctx, "s1"); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := ctrl.Update(ctx, "s1", "Hi, my name is John Smith"); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	env, err := ctrl.End(ctx, "s1")
	if err != nil {
		t.Fatalf("End error: %v", err)
	}
	if env.Response != "Session ended successfully." {
		t.Errorf("Response = %q", env.Response)
	}
	if env.SessionActive {
		t.Error("ended session still active")
	}
	if env.Entities[models.SlotName] != "John Smith" {
		t.Errorf("final Entities = %v, want the collected name", env.Entities)
	}
	if got := ctrl.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d, want 0", got)
	}

	// The entry stays registered; slot state does not survive the end.
	env, err = ctrl.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get after End error: %v", err)
	}
	if env.SessionActive {
		t.Error("session active after End")
	}
	if len(env.Entities) != 0 {
		t.Errorf("Entities after End = %v, want reset", env.Entities)
	}

	env, err = ctrl.End(ctx, "s1")
	if err != nil {
		t.Fatalf("second End error: %v", err)
	}
	if env.Response != "Session was already inactive." {
		t.Errorf("second End Response = %q", env.Response)
	}

	env, err = ctrl.Update(ctx, "s1", "hello again")
	if err != nil {
		t.Fatalf("Update after End error: %v", err)
	}
	if env.Response != "Session was already inactive." || env.SessionActive {
		t.Errorf("Update after End = %+v", env)
	}
}

func TestControllerActiveCount(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := ctrl.Create(ctx, id); err != nil {
			t.Fatalf("Create(%q) error: %v", id, err)
		}
	}
	if got := ctrl.ActiveCount(); got != 3 {
		t.Fatalf("ActiveCount = %d, want 3", got)
	}
	if _, err := ctrl.End(ctx, "b"); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if got := ctrl.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
}

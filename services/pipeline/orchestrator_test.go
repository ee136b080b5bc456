package pipeline

import (
	"context"
	"strings"
	"testing"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"go.uber.org/zap"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *AppointmentStore) {
	t.Helper()
	lexicon := ai.NewLexiconEngine()
	gen := ai.NewLocalGenerator(42)
	logger := zap.NewNop()
	appts := NewAppointmentStore()

	o := NewOrchestrator(OrchestratorConfig{
		Detection:  NewDetectionCrew(lexicon, 0.5, logger),
		Extraction: NewExtractionCrew(lexicon, lexicon, 0.5, logger),
		Composer: NewQuestionComposer(gen, nil, ComposerConfig{
			Workers:          2,
			QualityThreshold: 0.7,
			MaxRetries:       2,
			Seed:             42,
		}, logger),
		Closer: NewClosingGenerator(gen, nil, CloserConfig{
			ConfidenceThreshold: 0.8,
			MaxRetries:          2,
			Seed:                42,
		}, logger),
		Appointments:    appts,
		Contexts:        ai.NewMemoryContextStore(),
		Metrics:         NewMetrics(),
		Logger:          logger,
		BusinessContext: "Hair salon appointment",
	})
	return o, appts
}

func outcomeFor(t *testing.T, turn models.TurnResult, slot string) models.SlotOutcome {
	t.Helper()
	for _, o := range turn.Slots {
		if o.Slot == slot {
			return o
		}
	}
	t.Fatalf("no outcome for slot %q", slot)
	return models.SlotOutcome{}
}

func TestProcessTurnDetectsExtractsAndComposes(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	state := NewSessionPipelineState("s1")

	turn := o.ProcessTurn(context.Background(), state, "Hi, my name is John Smith and I need a haircut")

	name := outcomeFor(t, turn, models.SlotName)
	if !name.Detected || !name.Found || name.Value != "John Smith" {
		t.Errorf("name outcome = %+v", name)
	}
	service := outcomeFor(t, turn, models.SlotService)
	if !service.Found || service.Value != "haircut" {
		t.Errorf("service outcome = %+v", service)
	}
	if phone := outcomeFor(t, turn, models.SlotPhone); phone.Detected {
		t.Errorf("phone detected in an utterance without one: %+v", phone)
	}

	if v, _ := state.Entities.Get(models.SlotName); v != "John Smith" {
		t.Errorf("entity name = %q", v)
	}

	if !turn.CompositionTriggered || turn.Composition == nil {
		t.Fatal("expected a composed question for the missing slots")
	}
	if len(turn.Composition.TargetSlots) != 1 || turn.Composition.TargetSlots[0] != models.SlotPhone {
		t.Errorf("composition targets = %v, want [phone]", turn.Composition.TargetSlots)
	}
	if !strings.Contains(turn.Composition.Question, "phone number") {
		t.Errorf("question does not ask for the phone: %q", turn.Composition.Question)
	}

	if turn.ClosingTriggered {
		t.Error("closing triggered with three slots still missing")
	}
	if turn.Metrics.ConcurrentUnits != 2 {
		t.Errorf("ConcurrentUnits = %d, want 2 (extraction + composition)", turn.Metrics.ConcurrentUnits)
	}
}

func TestProcessTurnNothingDetectedStillComposes(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	state := NewSessionPipelineState("s1")

	turn := o.ProcessTurn(context.Background(), state, "hello")

	for _, outcome := range turn.Slots {
		if outcome.Detected {
			t.Errorf("slot %q detected in a greeting", outcome.Slot)
		}
	}
	if !turn.CompositionTriggered || turn.Composition == nil {
		t.Fatal("expected a composed question")
	}
	want := []string{models.SlotName, models.SlotPhone}
	if len(turn.Composition.TargetSlots) != 2 ||
		turn.Composition.TargetSlots[0] != want[0] ||
		turn.Composition.TargetSlots[1] != want[1] {
		t.Errorf("composition targets = %v, want %v", turn.Composition.TargetSlots, want)
	}
	if turn.Metrics.ConcurrentUnits != 1 {
		t.Errorf("ConcurrentUnits = %d, want 1 (composition only)", turn.Metrics.ConcurrentUnits)
	}
}

var bookingScript = []string{
	"Hi, my name is John Smith",
	"My number is 555-123-4567",
	"I'd like a haircut on Friday",
	"Let's do 2pm",
}

func TestProcessTurnFullSessionClosesOnce(t *testing.T) {
	o, appts := newTestOrchestrator(t)
	state := NewSessionPipelineState("s1")
	ctx := context.Background()

	var final models.TurnResult
	for i, sentence := range bookingScript {
		final = o.ProcessTurn(ctx, state, sentence)
		if i < len(bookingScript)-1 {
			if final.ClosingTriggered {
				t.Fatalf("closing triggered on turn %d", i+1)
			}
			if !final.CompositionTriggered {
				t.Errorf("turn %d composed nothing", i+1)
			}
		}
	}

	if !state.Entities.IsComplete() {
		t.Fatalf("entities incomplete after script: %v", state.Entities.Known())
	}
	if v, _ := state.Entities.Get(models.SlotTime); v != "2:00 PM" {
		t.Errorf("time = %q, want normalized 2:00 PM", v)
	}

	if !final.ClosingTriggered || final.Closing == nil {
		t.Fatal("final turn did not close")
	}
	if final.CompositionTriggered {
		t.Error("final turn composed a question despite completing the set")
	}
	if !final.Closing.Valid {
		t.Error("closing marked invalid for clean data")
	}
	if !strings.Contains(final.Closing.Message, "John Smith") {
		t.Errorf("closing message = %q", final.Closing.Message)
	}
	if final.AppointmentID == "" {
		t.Fatal("no appointment id on the closing turn")
	}
	if got := appts.Count(); got != 1 {
		t.Fatalf("appointment count = %d, want 1", got)
	}
	if stored := appts.All()[0]; stored.Status != models.AppointmentConfirmed {
		t.Errorf("stored status = %q", stored.Status)
	}

	// Later turns must never re-fire the closing or re-book.
	again := o.ProcessTurn(ctx, state, "Actually make it Monday please")
	if again.ClosingTriggered {
		t.Error("closing fired twice for one session")
	}
	if got := appts.Count(); got != 1 {
		t.Errorf("appointment count after extra turn = %d, want 1", got)
	}

	snap := o.Metrics().Snapshot()
	if snap.TotalTurns != int64(len(bookingScript)+1) {
		t.Errorf("TotalTurns = %d, want %d", snap.TotalTurns, len(bookingScript)+1)
	}
	if snap.TotalClosings != 1 {
		t.Errorf("TotalClosings = %d, want 1", snap.TotalClosings)
	}
	if snap.ActiveTurns != 0 {
		t.Errorf("ActiveTurns = %d, want 0 at rest", snap.ActiveTurns)
	}
}

func TestProcessTurnConflictKeepsFirstBooking(t *testing.T) {
	o, appts := newTestOrchestrator(t)
	if err := appts.Store(testAppointment("existing", "Friday", "2:00 PM", "color")); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	state := NewSessionPipelineState("s2")
	ctx := context.Background()
	var final models.TurnResult
	for _, sentence := range bookingScript {
		final = o.ProcessTurn(ctx, state, sentence)
	}

	if !final.ClosingTriggered || final.Closing == nil {
		t.Fatal("conflicting completion still must produce a closing")
	}
	if final.AppointmentID != "" {
		t.Error("conflicting booking got an appointment id")
	}
	if got := appts.Count(); got != 1 {
		t.Errorf("appointment count = %d, want the original 1", got)
	}
	if !final.Closing.NeedsFollowUp {
		t.Error("conflict closing should need follow-up")
	}
	if len(final.Closing.NextSteps) == 0 || final.Closing.NextSteps[0] != "That slot was just taken. Some alternatives:" {
		t.Errorf("NextSteps = %v", final.Closing.NextSteps)
	}
	if len(final.Closing.NextSteps) != 4 {
		t.Errorf("NextSteps should carry the three alternatives, got %v", final.Closing.NextSteps)
	}
}

func TestSessionPipelineStateClosedLatch(t *testing.T) {
	state := NewSessionPipelineState("s1")
	if state.Closed() {
		t.Fatal("fresh state reports closed")
	}
	if !state.markClosed() {
		t.Fatal("first markClosed returned false")
	}
	if state.markClosed() {
		t.Fatal("second markClosed returned true")
	}
	if !state.Closed() {
		t.Fatal("state not closed after markClosed")
	}
}

func TestComposerWorkersFor(t *testing.T) {
	cases := []struct {
		cores int
		want  int
	}{
		{1, 1}, {2, 1}, {3, 1}, {4, 2}, {8, 2}, {16, 2},
	}
	for _, tc := range cases {
		if got := ComposerWorkersFor(tc.cores); got != tc.want {
			t.Errorf("ComposerWorkersFor(%d) = %d, want %d", tc.cores, got, tc.want)
		}
	}
}

package pipeline

import (
	"context"
	"errors"
	"testing"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"go.uber.org/zap"
)

type failingExtractor struct{}

func (failingExtractor) Extract(ctx context.Context, utterance string, slots []string) ([]models.SlotExtraction, error) {
	return nil, errors.New("extractor offline")
}

type lowConfidenceExtractor struct{}

func (lowConfidenceExtractor) Extract(ctx context.Context, utterance string, slots []string) ([]models.SlotExtraction, error) {
	out := make([]models.SlotExtraction, 0, len(slots))
	for _, slot := range slots {
		out = append(out, models.SlotExtraction{
			Slot:       slot,
			Value:      "guess",
			Confidence: 0.2,
			Found:      true,
			Method:     "model",
		})
	}
	return out, nil
}

func TestExtractAllPrimaryHit(t *testing.T) {
	crew := NewExtractionCrew(ai.NewLexiconEngine(), nil, 0.5, zap.NewNop())

	results := crew.ExtractAll(context.Background(), "my name is John Smith", []string{models.SlotName})

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if !r.Found || r.Value != "John Smith" || r.Method != "lexicon" {
		t.Errorf("result = %+v", r)
	}
}

func TestExtractAllFallbackOnPrimaryError(t *testing.T) {
	crew := NewExtractionCrew(failingExtractor{}, ai.NewLexiconEngine(), 0.5, zap.NewNop())

	results := crew.ExtractAll(context.Background(), "my name is John Smith and my number is 555-123-4567",
		[]string{models.SlotName, models.SlotPhone})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if !r.Found {
			t.Errorf("slot %q not recovered by the fallback: %+v", r.Slot, r)
		}
		if r.Method != "lexicon_fallback" {
			t.Errorf("slot %q method = %q, want lexicon_fallback", r.Slot, r.Method)
		}
	}
}

func TestExtractAllLowConfidenceRetriedAgainstFallback(t *testing.T) {
	crew := NewExtractionCrew(lowConfidenceExtractor{}, ai.NewLexiconEngine(), 0.5, zap.NewNop())

	results := crew.ExtractAll(context.Background(), "my name is John Smith", []string{models.SlotName})

	r := results[0]
	if !r.Found || r.Value != "John Smith" {
		t.Errorf("fallback did not replace the low-confidence primary: %+v", r)
	}
	if r.Method != "lexicon_fallback" {
		t.Errorf("Method = %q, want lexicon_fallback", r.Method)
	}
}

func TestExtractAllDemotesLowConfidenceWithoutFallback(t *testing.T) {
	crew := NewExtractionCrew(lowConfidenceExtractor{}, nil, 0.5, zap.NewNop())

	results := crew.ExtractAll(context.Background(), "anything", []string{models.SlotName})

	if results[0].Found {
		t.Errorf("low-confidence result kept Found=true: %+v", results[0])
	}
}

func TestExtractAllSameFallbackNotRetried(t *testing.T) {
	lexicon := ai.NewLexiconEngine()
	crew := NewExtractionCrew(lexicon, lexicon, 0.5, zap.NewNop())

	// The lexicon cannot find a phone here; with fallback == primary there
	// is no second pass and no "_fallback" method.
	results := crew.ExtractAll(context.Background(), "no digits at all", []string{models.SlotPhone})

	r := results[0]
	if r.Found {
		t.Errorf("phantom phone extraction: %+v", r)
	}
	if r.Method != "lexicon" {
		t.Errorf("Method = %q, want lexicon (no fallback pass)", r.Method)
	}
}

func TestExtractAllEmptySlots(t *testing.T) {
	crew := NewExtractionCrew(ai.NewLexiconEngine(), nil, 0.5, zap.NewNop())

	if results := crew.ExtractAll(context.Background(), "my name is John", nil); results != nil {
		t.Errorf("ExtractAll(nil slots) = %v, want nil", results)
	}
}

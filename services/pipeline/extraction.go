// File: services/pipeline/extraction.go
package pipeline

import (
	"context"
	"sync"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"go.uber.org/zap"
)

// ExtractionCrew pulls slot values out of an utterance via a primary
// capability, retrying individual misses against a fallback capability.
type ExtractionCrew struct {
	capability    ai.ExtractionCapability
	fallback      ai.ExtractionCapability
	minConfidence float64
	logger        *zap.Logger
}

func NewExtractionCrew(capability, fallback ai.ExtractionCapability, minConfidence float64, logger *zap.Logger) *ExtractionCrew {
	return &ExtractionCrew{
		capability:    capability,
		fallback:      fallback,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// ExtractAll returns one record per requested slot. A primary miss (error,
// not found, or confidence under the floor) is retried per slot against the
// fallback, whose hits carry a "_fallback" method suffix. Records that still
// miss come back with Found false so the caller merges nothing for them.
func (ec *ExtractionCrew) ExtractAll(ctx context.Context, utterance string, slots []string) []models.SlotExtraction {
	if len(slots) == 0 {
		return nil
	}

	results, err := ec.capability.Extract(ctx, utterance, slots)
	if err != nil {
		ec.logger.Warn("extraction failed", zap.Strings("slots", slots), zap.Error(err))
		results = nil
	}

	bySlot := make(map[string]models.SlotExtraction, len(results))
	for _, ex := range results {
		bySlot[ex.Slot] = ex
	}

	ordered := make([]models.SlotExtraction, len(slots))
	var misses []int
	for i, slot := range slots {
		ex, ok := bySlot[slot]
		if !ok {
			ex = models.SlotExtraction{Slot: slot, Method: "none"}
		}
		if !ex.Found || ex.Confidence < ec.minConfidence {
			misses = append(misses, i)
		}
		ordered[i] = ex
	}

	if ec.fallback != nil && ec.fallback != ec.capability {
		ec.retryMisses(ctx, utterance, ordered, misses)
	}

	for i := range ordered {
		if ordered[i].Found && ordered[i].Confidence < ec.minConfidence {
			ordered[i].Found = false
		}
	}
	return ordered
}

// retryMisses runs the fallback for each missed slot concurrently, writing
// into distinct indexes of ordered.
func (ec *ExtractionCrew) retryMisses(ctx context.Context, utterance string, ordered []models.SlotExtraction, misses []int) {
	var wg sync.WaitGroup
	for _, idx := range misses {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			slot := ordered[idx].Slot
			retried, err := ec.fallback.Extract(ctx, utterance, []string{slot})
			if err != nil {
				ec.logger.Warn("fallback extraction failed",
					zap.String("slot", slot), zap.Error(err))
				return
			}
			if len(retried) == 0 || !retried[0].Found {
				return
			}
			hit := retried[0]
			hit.Method = hit.Method + "_fallback"
			ordered[idx] = hit
		}(idx)
	}
	wg.Wait()
}

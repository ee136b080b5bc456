// File: services/pipeline/detection.go
package pipeline

import (
	"context"
	"sync"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"go.uber.org/zap"
)

// DetectionCrew probes every required slot against an utterance. All slots
// run in parallel and the crew blocks until each outcome is in; a failed
// probe degrades that slot to not-detected rather than aborting the turn.
type DetectionCrew struct {
	capability ai.DetectionCapability
	threshold  float64
	logger     *zap.Logger
}

func NewDetectionCrew(capability ai.DetectionCapability, threshold float64, logger *zap.Logger) *DetectionCrew {
	return &DetectionCrew{capability: capability, threshold: threshold, logger: logger}
}

// DetectAll returns one outcome per required slot, in required-slot order.
// A slot counts as detected only when the capability says so and its
// confidence clears the crew's threshold.
func (dc *DetectionCrew) DetectAll(ctx context.Context, utterance string) []models.SlotDetection {
	results := make([]models.SlotDetection, len(models.RequiredSlots))

	var wg sync.WaitGroup
	for i, slot := range models.RequiredSlots {
		wg.Add(1)
		go func(i int, slot string) {
			defer wg.Done()
			confidence, detected, err := dc.capability.Detect(ctx, utterance, slot)
			if err != nil {
				dc.logger.Warn("slot detection failed",
					zap.String("slot", slot), zap.Error(err))
				results[i] = models.SlotDetection{Slot: slot}
				return
			}
			results[i] = models.SlotDetection{
				Slot:       slot,
				Confidence: confidence,
				Detected:   detected && confidence >= dc.threshold,
			}
		}(i, slot)
	}
	wg.Wait()

	return results
}

// File: services/pipeline/composer.go
package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"frontdesk/models"
	ai "frontdesk/services/intelligence"

	"go.uber.org/zap"
)

// ComposerConfig sets the pool size, quality gate and retry budget for
// question composition.
type ComposerConfig struct {
	Workers          int
	QualityThreshold float64
	MaxRetries       int
	Seed             int64 // 0 seeds from the clock
}

// QuestionComposer turns composition requests into questions on a bounded
// worker pool, with quality-gated retry against the generation backend and
// deterministic template fallback.
type QuestionComposer struct {
	pool      *WorkerPool
	gen       ai.GenerationCapability
	templates *TemplateSet
	threshold float64
	retries   int
	logger    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewQuestionComposer(gen ai.GenerationCapability, templates *TemplateSet, cfg ComposerConfig, logger *zap.Logger) *QuestionComposer {
	if templates == nil {
		templates = DefaultTemplateSet()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &QuestionComposer{
		pool:      NewWorkerPool(cfg.Workers),
		gen:       gen,
		templates: templates,
		threshold: cfg.QualityThreshold,
		retries:   cfg.MaxRetries,
		logger:    logger,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Compose enqueues the request on the pool and blocks for the result. If
// the pool cannot take the task, the request runs inline instead.
func (qc *QuestionComposer) Compose(ctx context.Context, req models.CompositionRequest) models.CompositionResult {
	resultCh := make(chan models.CompositionResult, 1)
	submitted := qc.pool.Submit(func() {
		resultCh <- qc.composeNow(ctx, req)
	})
	if !submitted {
		return qc.composeNow(ctx, req)
	}
	return <-resultCh
}

func (qc *QuestionComposer) composeNow(ctx context.Context, req models.CompositionRequest) models.CompositionResult {
	targets := req.MissingSlots
	if len(targets) > 2 {
		targets = targets[:2]
	}

	if qc.gen != nil && qc.gen.IsAvailable(ctx) {
		if best, ok := qc.generateWithRetry(ctx, req, targets); ok && best.QualityScore >= qc.threshold {
			return best
		}
	}
	return qc.templateQuestion(targets)
}

// generateWithRetry makes the initial generation attempt and, only when that
// attempt scores below the threshold, up to MaxRetries more. A retry
// replaces the best attempt only when its score strictly exceeds it, so
// ties keep the earlier text.
func (qc *QuestionComposer) generateWithRetry(ctx context.Context, req models.CompositionRequest, targets []string) (models.CompositionResult, bool) {
	genReq := ai.GenerationRequest{
		Kind:        ai.KindQuestion,
		TargetSlots: targets,
		KnownSlots:  req.KnownSlots,
		Context:     req.Context,
	}

	best, ok := qc.attempt(ctx, genReq, targets)
	if !ok {
		return models.CompositionResult{}, false
	}
	if best.QualityScore >= qc.threshold {
		return best, true
	}

	for i := 0; i < qc.retries; i++ {
		attempt, ok := qc.attempt(ctx, genReq, targets)
		if ok && attempt.QualityScore > best.QualityScore {
			best = attempt
		}
	}
	return best, true
}

func (qc *QuestionComposer) attempt(ctx context.Context, genReq ai.GenerationRequest, targets []string) (models.CompositionResult, bool) {
	text, err := qc.gen.Generate(ctx, genReq)
	if err != nil {
		qc.logger.Warn("question generation failed",
			zap.Strings("targets", targets), zap.Error(err))
		return models.CompositionResult{}, false
	}
	score, err := qc.gen.AssessQuality(ctx, text, genReq)
	if err != nil {
		qc.logger.Warn("question quality assessment failed",
			zap.Strings("targets", targets), zap.Error(err))
		return models.CompositionResult{}, false
	}
	return models.CompositionResult{
		Question:     text,
		TargetSlots:  targets,
		QualityScore: score,
		Valid:        true,
		Method:       "llm_primary",
	}, true
}

func (qc *QuestionComposer) templateQuestion(targets []string) models.CompositionResult {
	variants, ok := qc.templates.Questions[TemplateKey(targets)]
	if !ok || len(variants) == 0 {
		return models.CompositionResult{
			Question:     qc.templates.GenericQuestion,
			TargetSlots:  targets,
			QualityScore: 0.5,
			Valid:        true,
			Method:       "template_fallback",
		}
	}

	qc.mu.Lock()
	question := variants[qc.rng.Intn(len(variants))]
	qc.mu.Unlock()

	return models.CompositionResult{
		Question:     question,
		TargetSlots:  targets,
		QualityScore: 0.8,
		Valid:        true,
		Method:       "template",
	}
}

// Resize drains the pool and relaunches it with n workers.
func (qc *QuestionComposer) Resize(n int) {
	qc.pool.Resize(n)
}

// Workers reports the current pool size.
func (qc *QuestionComposer) Workers() int {
	return qc.pool.Workers()
}

// Stop shuts the pool down; later Compose calls run inline.
func (qc *QuestionComposer) Stop() {
	qc.pool.Stop()
}

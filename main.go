// File: frontdesk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"frontdesk/config"
	"frontdesk/cron"
	"frontdesk/handlers"
	"frontdesk/middleware"
	"frontdesk/routes"
	ai "frontdesk/services/intelligence"
	"frontdesk/services/notification"
	"frontdesk/services/pipeline"
	"frontdesk/services/session"
	"frontdesk/services/tasks"
	"frontdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	// Conversation context store: in-memory by default, Redis when configured.
	var ctxStore ai.ContextStore
	var redisClients []*redis.Client
	if cfg.ContextStore == "redis" {
		utils.InitContextCache()
		client := utils.GetContextCacheClient()
		redisClients = append(redisClients, client)
		ctxStore = ai.NewRedisContextStore(client, time.Duration(cfg.ContextTTLMinutes)*time.Minute)
	} else {
		ctxStore = ai.NewMemoryContextStore()
	}

	// Generation backend.
	var generator ai.GenerationCapability
	switch cfg.GenerationProvider {
	case "gemini":
		generator = ai.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "anthropic":
		generator = ai.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		generator = ai.NewLocalGenerator(cfg.RandomSeed)
	}

	// Detection and extraction: the remote model server when configured, the
	// lexicon engine otherwise. The lexicon always backs extraction.
	lexicon := ai.NewLexiconEngine()
	var detector ai.DetectionCapability = lexicon
	var extractor ai.ExtractionCapability = lexicon
	if cfg.ModelServerURL != "" {
		modelServer := ai.NewModelServerClient(cfg.ModelServerURL)
		detector = modelServer
		extractor = modelServer
	}

	templates, err := pipeline.LoadTemplateSet(cfg.TemplatesFile)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load templates: %v", err)
	}

	// Pipeline assembly.
	detection := pipeline.NewDetectionCrew(detector, cfg.DetectionThreshold, logger)
	extraction := pipeline.NewExtractionCrew(extractor, lexicon, cfg.ExtractionMinConfidence, logger)
	composer := pipeline.NewQuestionComposer(generator, templates, pipeline.ComposerConfig{
		Workers:          pipeline.ComposerWorkersFor(runtime.NumCPU()),
		QualityThreshold: cfg.ComposerQualityMin,
		MaxRetries:       cfg.ComposerMaxRetries,
		Seed:             cfg.RandomSeed,
	}, logger)
	closer := pipeline.NewClosingGenerator(generator, templates, pipeline.CloserConfig{
		ConfidenceThreshold: cfg.ClosingConfidenceMin,
		MaxRetries:          cfg.ClosingMaxRetries,
		Seed:                cfg.RandomSeed,
	}, logger)
	appointments := pipeline.NewAppointmentStore()
	metrics := pipeline.NewMetrics()

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Detection:       detection,
		Extraction:      extraction,
		Composer:        composer,
		Closer:          closer,
		Appointments:    appointments,
		Contexts:        ctxStore,
		Metrics:         metrics,
		Logger:          logger,
		TurnDeadline:    time.Duration(cfg.TurnDeadlineSeconds) * time.Second,
		BusinessContext: cfg.BusinessContext,
	})

	// Optional notification stack: Slack for delivery, asynq for scheduling.
	var notifier notification.Service
	var enqueuer *tasks.NoticeEnqueuer
	if cfg.NoticesEnabled {
		slackNotifier, err := notification.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize slack notifier: %v", err)
		}
		notifier = slackNotifier

		if cfg.RedisAddr != "" {
			enqueuer = tasks.NewNoticeEnqueuer(
				cfg.RedisAddr,
				cfg.RedisPassword,
				cfg.RedisQueueDB,
				time.Duration(cfg.ReminderDelayHours)*time.Hour,
			)
			defer enqueuer.Close()
			cron.InitNoticeWorker(notifier)
		}
		if cfg.SummarySchedule != "" {
			cron.StartSummaryScheduler(cfg.SummarySchedule, appointments, notifier)
		}
	}

	sessions := session.NewController(session.ControllerConfig{
		Orchestrator: orchestrator,
		Contexts:     ctxStore,
		Notifier:     notifier,
		Notices:      enqueuer,
		Logger:       logger,
		Seed:         cfg.RandomSeed,
	})

	// Background monitors.
	monitorCtx, stopMonitors := context.WithCancel(context.Background())
	defer stopMonitors()
	orchestrator.StartLoadMonitor(monitorCtx, 30*time.Second)
	utils.StartHealthMonitor(redisClients, generator.IsAvailable)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	sessionHandler := handlers.NewSessionHandler(sessions, logger)
	statusHandler := handlers.NewStatusHandler(orchestrator, sessions)
	voiceHandler := handlers.NewVoiceHandler(sessions, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Sessions: sessions,

		// Session endpoints.
		CreateSessionHandler: sessionHandler.CreateSessionHandler,
		UpdateSessionHandler: sessionHandler.UpdateSessionHandler,
		GetSessionHandler:    sessionHandler.GetSessionHandler,
		EndSessionHandler:    sessionHandler.EndSessionHandler,

		// Voice endpoints.
		VoiceSessionHandler: voiceHandler.VoiceSessionHandler,

		// Operational endpoints.
		HealthHandler: sessionHandler.HealthHandler,
		StatusHandler: statusHandler.PipelineStatusHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	// In-flight requests have drained; the composer pool can stop now.
	composer.Stop()

	logger.Sugar().Info("main: server stopped gracefully")
}

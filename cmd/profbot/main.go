package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/agent"
	"github.com/gmaragao/profAI/internal/config"
	"github.com/gmaragao/profAI/internal/engine"
	"github.com/gmaragao/profAI/internal/moodle"
	"github.com/gmaragao/profAI/internal/notifier"
	"github.com/gmaragao/profAI/internal/orchestrator"
	"github.com/gmaragao/profAI/internal/repository"
	"github.com/gmaragao/profAI/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	if env := os.Getenv("PROFBOT_CONFIG"); env != "" {
		cfgPath = env
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	var db *sqlx.DB
	switch cfg.Database.Type {
	case "sqlite":
		db, err = repository.NewSQLiteDB(cfg.Database.Path, logger)
		if err != nil {
			logger.Fatal("Failed to open sqlite database", zap.Error(err))
		}
	default:
		db, err = repository.NewPostgresDB(cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		// Run migrations
		repository.MigrateDB(db, logger)
	}
	defer db.Close()

	// Initialize repositories
	intentRepo := repository.NewIntentRepository(db, logger)
	actionRepo := repository.NewActionRepository(db, logger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize LMS client
	moodleClient := moodle.NewClient(moodle.Config{
		BaseURL:      cfg.Moodle.BaseURL,
		Token:        cfg.Moodle.Token,
		RequestDelay: time.Duration(cfg.Moodle.RequestDelayMs) * time.Millisecond,
	}, logger)

	// Initialize agents
	classifier, err := agent.NewIntentClassifier(ctx, agent.IntentConfig{
		APIKey:     cfg.Gemini.APIKey,
		ModelName:  cfg.Gemini.ClassifierModel,
		MaxRetries: cfg.Gemini.MaxRetries,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize intent classifier", zap.Error(err))
	}
	defer classifier.Close()

	memory, err := agent.NewMemory(ctx, agent.MemoryConfig{
		APIKey:    cfg.Gemini.APIKey,
		ModelName: cfg.Gemini.MemoryModel,
	}, actionRepo, logger)
	if err != nil {
		logger.Fatal("Failed to initialize memory agent", zap.Error(err))
	}
	defer memory.Close()

	toolbox := agent.NewToolbox(knowledgeRepo, memory, logger)

	professor, err := agent.NewProfessor(ctx, agent.ProfessorConfig{
		APIKey:            cfg.Gemini.APIKey,
		ModelName:         cfg.Gemini.ProfessorModel,
		ExtraInstructions: cfg.Gemini.ExtraInstructions,
	}, toolbox, logger)
	if err != nil {
		logger.Fatal("Failed to initialize professor agent", zap.Error(err))
	}
	defer professor.Close()

	// Initialize Telegram notifier (optional)
	tg, err := notifier.NewTelegram(notifier.Config{
		Enabled:  cfg.Notifier.Enabled,
		BotToken: cfg.Notifier.TelegramBotToken,
		ChatID:   cfg.Notifier.ChatID,
	}, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		tg = nil
	}

	// The nil check keeps a typed-nil out of the orchestrator's interface field.
	var orchNotifier orchestrator.Notifier
	if tg != nil {
		orchNotifier = tg
	}

	// Initialize the pipeline
	orch := orchestrator.New(
		moodleClient,
		classifier,
		professor,
		intentRepo,
		actionRepo,
		orchNotifier,
		orchestrator.Config{
			CourseID:  cfg.Moodle.CourseID,
			PostDelay: time.Duration(cfg.Engine.PostDelayMs) * time.Millisecond,
		},
		logger,
	)

	// Run the polling engine in a goroutine
	eng := engine.New(orch, time.Duration(cfg.Engine.TickMinutes)*time.Minute, logger)
	go eng.Start(ctx)

	// Initialize and run the server
	srv := server.New(intentRepo, actionRepo, eng, logger)
	go func() {
		if err := srv.Run(":" + cfg.Server.Port); err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Application stopped.")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/toeicbot/internal/ai"
	"github.com/example/toeicbot/internal/article"
	"github.com/example/toeicbot/internal/bot"
	"github.com/example/toeicbot/internal/config"
	"github.com/example/toeicbot/internal/database"
	"github.com/example/toeicbot/internal/importer"
	"github.com/example/toeicbot/internal/logger"
	"github.com/example/toeicbot/internal/progress"
	"github.com/example/toeicbot/internal/random"
	"github.com/example/toeicbot/internal/scheduler"
	"github.com/example/toeicbot/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	// Signals cancel the root context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "driver", cfg.DatabaseDriver, "error", err)
	}
	defer db.Close()

	rnd := random.NewTimeSeeded()
	learners := database.NewLearnerRepository(db)
	vocabulary := database.NewVocabularyRepository(db, rnd)
	knowledge := database.NewWordKnowledgeRepository(db)

	if n, err := vocabulary.CountActive(ctx); err != nil {
		appLog.Warn("Failed to count vocabulary", "error", err)
	} else if n == 0 {
		appLog.Warn("Vocabulary bank is empty, import words with cmd/importvocab or /import")
	}

	generator, err := ai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, nil)
	if err != nil {
		appLog.Fatal("Failed to create content generator", "error", err)
	}

	dispatcher := bot.NewDispatcher(bot.Deps{
		Learners:   learners,
		Vocabulary: vocabulary,
		Knowledge:  knowledge,
		Quizzes:    database.NewQuizRepository(db),
		Generator:  generator,
		Fetcher:    article.NewFetcher(nil, 0),
		Rand:       rnd,
		Streak:     progress.NewStreak(cfg.Location),
		Logger:     appLog,
	})

	botConfig := bot.DefaultConfig()
	botConfig.AdminUserIDs = cfg.AdminIDs
	botConfig.RequestTimeout = cfg.RequestTimeout

	b, err := bot.New(cfg.TelegramToken, dispatcher,
		importer.New(vocabulary, importer.DefaultImportConfig()),
		database.NewStatisticsRepository(db), botConfig, appLog)
	if err != nil {
		appLog.Fatal("Failed to create bot", "error", err)
	}

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(learners, b, cfg.Location, cfg.ReminderHour, appLog)
		if err := sched.Start(); err != nil {
			appLog.Fatal("Failed to start scheduler", "error", err)
		}
	}

	httpServer := server.New(cfg.Port, db, appLog)
	go func() {
		if err := httpServer.Start(); err != nil {
			appLog.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	appLog.Info("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)

	appLog.Info("Shutting down")
	// Give in-flight work time for a graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Error during HTTP shutdown", "error", err)
	}
	b.Stop(shutdownCtx)
	appLog.Info("Bot stopped successfully")
}

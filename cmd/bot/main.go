package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordtrainer/internal/audio"
	"wordtrainer/internal/config"
	"wordtrainer/internal/content"
	"wordtrainer/internal/handler"
	"wordtrainer/internal/middleware"
	"wordtrainer/internal/quiz"
	"wordtrainer/internal/repository"
	"wordtrainer/internal/repository/jsonfile"
	"wordtrainer/internal/repository/postgres"
	"wordtrainer/internal/scheduler"
	"wordtrainer/internal/server"
	"wordtrainer/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting word trainer bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("storage", cfg.Storage),
		zap.Int("allowed_users", len(cfg.AllowedUsers)),
		zap.Bool("webhook", cfg.UseWebhook()),
	)

	// Initialize user store
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open user store", zap.Error(err))
	}
	defer closeStore()

	// Initialize content sources
	provider := content.NewProvider(
		content.NewRandomWordAPI(cfg.Content.RandomWordsURL, 0),
		content.NewGoogleTranslator(cfg.Content.TranslateURL, cfg.Content.TargetLang),
		content.NewWordsAPI(cfg.Content.WordsAPIURL, cfg.Content.WordsAPIKey),
		logger,
	)
	synth := audio.NewSynthesizer(cfg.Audio.Dir, cfg.Audio.TTSURL, "en", logger)
	polls := quiz.NewPollTable()

	// Initialize services
	authService := service.NewAuthService(cfg.AllowedUsers)
	sessions := service.NewSessionService(store, provider, polls, logger)
	sessions.SetDailyCount(cfg.Training.DailyWordCount)
	sessions.SetRetryLimit(cfg.Training.RetryLimit)
	statsService := service.NewStatsService(store, synth, polls, logger)
	statsService.SetAudioMaxAge(cfg.Audio.MaxAge)

	// Initialize Telegram bot
	var poller tele.Poller = &tele.LongPoller{Timeout: 10 * time.Second}
	var webhook *tele.Webhook
	if cfg.UseWebhook() {
		webhook = &tele.Webhook{
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Server.BotURL + cfg.WebhookPath()},
			AllowedUpdates: []string{"message", "callback_query", "poll_answer"},
		}
		poller = webhook
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: poller,
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("user_id", c.Sender().ID))
			}
			logger.Error("Bot handler failed", fields...)
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	bot.Use(middleware.AuthMiddleware(authService, logger))
	h := handler.NewHandler(bot, authService, sessions, statsService, synth, cfg.Training.CompletionSticker, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start scheduled jobs
	jobs := scheduler.New(time.Local, cfg.Training.DailySendTime, h, sessions, authService, statsService, logger)
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start bot in background; in webhook mode the poller only registers the hook
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Start HTTP server
	var webhookHandler http.Handler
	if webhook != nil {
		webhookHandler = server.UpdateHandler(bot, logger)
	}
	srv := server.New(cfg.Server.Port, server.NewRouter(cfg.WebhookPath(), webhookHandler, logger), logger)
	serverErr := make(chan error, 1)
	srv.Start(serverErr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping bot...")
	case err := <-serverErr:
		logger.Error("HTTP server failed, stopping bot...", zap.Error(err))
	}

	// Graceful shutdown
	jobs.Stop()
	bot.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Bot stopped gracefully")
}

// openStore builds the configured user store and returns its closer
func openStore(cfg *config.Config, logger *zap.Logger) (repository.UserStore, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		// Connect to database with retries
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("Database connection established")

		// Run migrations
		if err := runMigrations(db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}

		logger.Info("Database migrations completed")
		return postgres.NewUserRepo(db), func() { db.Close() }, nil

	default:
		repo := jsonfile.NewUserRepo(cfg.UsersPath)
		if _, err := repo.Load(); err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", repo.Path(), err)
		}
		logger.Info("Using JSON user store", zap.String("path", repo.Path()))
		return repo, func() {}, nil
	}
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// One document per user, a handful of connections is plenty
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

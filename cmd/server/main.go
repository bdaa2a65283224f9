package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/api"
	"github.com/alligatorO15/fin-dashboard/internal/assistant"
	"github.com/alligatorO15/fin-dashboard/internal/config"
	"github.com/alligatorO15/fin-dashboard/internal/database"
	"github.com/alligatorO15/fin-dashboard/internal/logger"
	"github.com/alligatorO15/fin-dashboard/internal/ratelimit"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout  = 10 * time.Second
	cleanupInterval  = time.Minute
	tokenSweepPeriod = time.Hour
	recurringPeriod  = time.Hour
)

func main() {
	// загрузка .env файла
	envErr := godotenv.Load()

	cfg := config.Load()
	appLogger := logger.New(cfg.LogLevel, cfg.Env)
	if envErr != nil {
		log.Info().Msg(".env not found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	repos := repository.NewRepositories(db)

	engine, palette, err := service.NewEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("analytics engine config invalid")
	}

	commandLimiter := ratelimit.NewStore(cfg.CommandRateLimit, cfg.RateLimitWindow)
	dashboardLimiter := ratelimit.NewStore(cfg.DashboardRateLimit, cfg.RateLimitWindow)
	go commandLimiter.RunCleanup(ctx, cleanupInterval)
	go dashboardLimiter.RunCleanup(ctx, cleanupInterval)

	deps := service.Deps{
		Engine:  engine,
		Palette: palette,
		Limiter: commandLimiter,
	}
	// без ключа ассистент выключен, команды отвечают 502
	if cfg.AssistantAPIKey != "" {
		deps.Assistant = assistant.NewClient(cfg.AssistantWebhookURL, cfg.AssistantAPIKey,
			assistant.WithTimeout(cfg.AssistantTimeout),
			assistant.WithRateLimit(cfg.AssistantRPS),
			assistant.WithLogger(appLogger.With().Str("component", "assistant").Logger()),
		)
	} else {
		log.Warn().Msg("ASSISTANT_API_KEY is empty, commands are disabled")
	}

	services := service.NewServices(repos, cfg, deps)
	go sweepRefreshTokens(ctx, repos.RefreshToken)
	go processRecurring(ctx, services.Recurring)

	server := api.NewServer(cfg, services, appLogger, dashboardLimiter)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting findashboard api")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// sweepRefreshTokens раз в час удаляет истекшие refresh токены
func sweepRefreshTokens(ctx context.Context, repo repository.RefreshTokenRepository) {
	ticker := time.NewTicker(tokenSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn().Err(err).Msg("refresh token cleanup failed")
			}
		}
	}
}

// processRecurring при старте и затем раз в час создает транзакции по наступившим повторам
func processRecurring(ctx context.Context, recurring service.RecurringService) {
	ticker := time.NewTicker(recurringPeriod)
	defer ticker.Stop()

	for {
		if _, err := recurring.ProcessDue(ctx); err != nil {
			log.Warn().Err(err).Msg("recurring processing failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

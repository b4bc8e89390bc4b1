// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api serves the yamdb REST API.
//
// Startup order: logger, config, PostgreSQL, Redis, migrations, token keys,
// mail backend, services, router. Any failure before the listener is up
// exits with status 1. Deferred closers run after the server has drained.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yamdb/internal/api"
	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/core/title"
	"github.com/taibuivan/yamdb/internal/platform/access"
	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/migration"
	pgstore "github.com/taibuivan/yamdb/internal/platform/postgres"
	redisstore "github.com/taibuivan/yamdb/internal/platform/redis"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

func main() {
	// Registered first so it runs after every other deferred closer.
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("mail_backend", cfg.Mail.Backend),
	)

	// Startup gets a 30s deadline so a misconfigured dependency fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Tokens & Mail ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	mailer, closeMailer, err := mail.NewSender(cfg.Mail, log)
	must(log, err, "initialize mail backend")
	defer func() {
		if cerr := closeMailer(); cerr != nil {
			log.Error("mail backend close error", slog.Any("error", cerr))
		}
	}()

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	authService := auth.NewService(
		userRepository,
		auth.NewConfirmationCodeRepository(rdb),
		auth.NewAttemptRepository(rdb),
		tokenService,
		mailer,
		auth.Settings{CodeTTL: cfg.ConfirmationCodeTTL, AccessTokenTTL: cfg.AccessTokenTTL},
		log,
	)

	accountService := account.NewService(account.NewAccountRepository(pool), log)

	categoryService := reference.NewService(reference.KindCategory, reference.NewCategoryRepository(pool), log)
	genreService := reference.NewService(reference.KindGenre, reference.NewGenreRepository(pool), log)
	titleService := title.NewService(title.NewRepository(pool), categoryService, genreService, log)

	reviewService := review.NewService(
		review.NewReviewRepository(pool),
		review.NewCommentRepository(pool),
		access.NewGuard(userRepository),
		log,
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Account:    account.NewHandler(accountService),
		Categories: reference.NewHandler(categoryService),
		Genres:     reference.NewHandler(genreService),
		Title:      title.NewHandler(titleService),
		Review:     review.NewHandler(reviewService),
	}

	// ── 10. Serve until SIGINT/SIGTERM ────────────────────────────────────
	serveCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(serveCtx, cfg, log, tokenService, userRepository, handlers)
	if err := server.Run(serveCtx, constants.ShutdownTimeout); err != nil {
		log.Error("server_failed", slog.Any("error", err))
		exitCode = 1
		return
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger every entry point shares.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// must exits on a startup error. Nothing deferred has run yet for the
// dependency that failed, and the ones before it are torn down by the OS.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

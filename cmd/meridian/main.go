package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-lms/meridian-lms/internal/app"
	"github.com/meridian-lms/meridian-lms/internal/audit"
	audithttp "github.com/meridian-lms/meridian-lms/internal/audit/http"
	"github.com/meridian-lms/meridian-lms/internal/auth"
	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/integrity"
	"github.com/meridian-lms/meridian-lms/internal/observability"
	"github.com/meridian-lms/meridian-lms/internal/perf"
	"github.com/meridian-lms/meridian-lms/internal/platform/cache"
	"github.com/meridian-lms/meridian-lms/internal/platform/db"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
	"github.com/meridian-lms/meridian-lms/internal/view"
	"github.com/meridian-lms/meridian-lms/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditRecorder := audit.NewRecorder(audit.NewPGStore(pool), logger)
	auditService := audit.NewService(audit.NewPGQueryStore(pool))

	authzStore := authz.NewPGStore(pool)
	permissions := authz.NewService(authzStore, logger)
	authzMiddleware := authz.Middleware{Service: permissions}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditRecorder)
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager, authzMiddleware)

	grantsHandler := authz.NewGrantsHandler(logger, authzStore, usersRepo, auditRecorder, templates, csrfManager, authzMiddleware)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	integrityService := integrity.NewService(authzStore, logger)
	integrityHandler := integrity.NewHandler(logger, integrityService)

	perfRecorder := perf.NewRecorder(perf.NewPGStore(pool), logger)
	perfService := perf.NewService(perf.NewPGStore(pool))
	opsHandler := perf.NewHandler(logger, perfService, templates, csrfManager, authzMiddleware)

	auditHandler := audithttp.NewHandler(logger, auditService, auditRecorder, templates, csrfManager, authzMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		GrantsHandler:    grantsHandler,
		AuditHandler:     auditHandler,
		OpsHandler:       opsHandler,
		IntegrityHandler: integrityHandler,
		JobsHandler:      jobsHandler,
		Authz:            authzMiddleware,
		Permissions:      permissions,
		Metrics:          metrics,
		PerfRecorder:     perfRecorder,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-runCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}

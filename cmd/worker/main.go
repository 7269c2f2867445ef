package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-lms/meridian-lms/internal/app"
	jobmetrics "github.com/meridian-lms/meridian-lms/internal/jobs"
	"github.com/meridian-lms/meridian-lms/internal/perf"
	"github.com/meridian-lms/meridian-lms/internal/platform/db"
	"github.com/meridian-lms/meridian-lms/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	perfRecorder := perf.NewRecorder(perf.NewPGStore(pool), logger)
	heartbeatJob := jobs.NewHeartbeatJob(cfg.HeartbeatURL, perfRecorder, logger, metrics)
	purgeJob := jobs.NewSessionPurgeJob(pool, logger, metrics)
	rollupJob := jobs.NewPerfRollupJob(pool, logger, metrics)

	heartbeatTask, err := jobs.NewHeartbeatTask(time.Now().UTC())
	if err != nil {
		logger.Error("build heartbeat task", slog.Any("error", err))
		os.Exit(1)
	}
	purgeTask, err := jobs.NewSessionPurgeTask(time.Now().UTC())
	if err != nil {
		logger.Error("build session purge task", slog.Any("error", err))
		os.Exit(1)
	}
	rollupTask, err := jobs.NewPerfRollupTask(cfg.PerfRetentionDays)
	if err != nil {
		logger.Error("build perf rollup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskHeartbeat, Handler: heartbeatJob.Handle},
			{Type: jobs.TaskSessionPurge, Handler: purgeJob.Handle},
			{Type: jobs.TaskPerfRollup, Handler: rollupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "* * * * *", Task: heartbeatTask, Options: []asynq.Option{asynq.MaxRetry(0)}},
			{Spec: "45 * * * *", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: rollupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// Seed one immediate heartbeat and session sweep so a fresh deploy
	// does not wait for the first cron tick. Failures are logged only;
	// cron covers the next minute either way.
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := client.EnqueueHeartbeat(ctx, time.Now().UTC()); err != nil {
		logger.Warn("seed heartbeat", slog.Any("error", err))
	}
	if _, err := client.EnqueueSessionPurge(ctx, time.Now().UTC()); err != nil {
		logger.Warn("seed session purge", slog.Any("error", err))
	}
	if err := client.Close(); err != nil {
		logger.Warn("close queue client", slog.Any("error", err))
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

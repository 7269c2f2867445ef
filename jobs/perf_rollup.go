package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridian-lms/meridian-lms/internal/jobs"
)

const defaultPerfRetentionDays = 90

// PerfRollupJob trims performance events older than the retention window
// so the ops aggregations stay over a bounded table.
type PerfRollupJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPerfRollupJob initialises the retention handler.
func NewPerfRollupJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *PerfRollupJob {
	return &PerfRollupJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one retention pass.
func (j *PerfRollupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("perf rollup: handler not configured")
	}
	var payload PerfRollupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultPerfRetentionDays
	}

	tracker := j.Metrics.Track(TaskPerfRollup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.clock().AddDate(0, 0, -payload.RetentionDays)
	tag, err := j.Pool.Exec(ctx, `DELETE FROM performance_events WHERE started_at < $1`, cutoff)
	if err != nil {
		resultErr = err
		j.logger().Error("trim performance events", slog.Any("error", err))
		return resultErr
	}
	removed := tag.RowsAffected()
	j.Metrics.AddPurged("performance_events", removed)
	if removed > 0 {
		j.logger().Info("trimmed performance events",
			slog.Int64("count", removed),
			slog.Int("retention_days", payload.RetentionDays))
	}
	return nil
}

func (j *PerfRollupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

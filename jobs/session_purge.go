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

// SessionPurgeJob removes session rows past their expiry. Redis entries
// expire on their own; this sweep keeps the relational mirror honest.
type SessionPurgeJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSessionPurgeJob initialises the session sweep handler.
func NewSessionPurgeJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionPurgeJob {
	return &SessionPurgeJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one session sweep.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("session purge: handler not configured")
	}
	var payload SessionPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskSessionPurge)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	tag, err := j.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, j.clock())
	if err != nil {
		resultErr = err
		j.logger().Error("purge sessions", slog.Any("error", err))
		return resultErr
	}
	removed := tag.RowsAffected()
	j.Metrics.AddPurged("sessions", removed)
	if removed > 0 {
		j.logger().Info("purged expired sessions", slog.Int64("count", removed))
	}
	return nil
}

func (j *SessionPurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

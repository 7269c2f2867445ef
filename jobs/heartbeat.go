package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-lms/meridian-lms/internal/jobs"
	"github.com/meridian-lms/meridian-lms/internal/perf"
)

// HeartbeatRecorder persists availability verdicts.
type HeartbeatRecorder interface {
	Heartbeat(ctx context.Context, status string)
}

// HeartbeatJob probes the platform HTTP endpoint and records whether it
// answered. Missed or failed probes become downtime events feeding the
// uptime figure on the ops dashboard.
type HeartbeatJob struct {
	TargetURL string
	Recorder  HeartbeatRecorder
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	client    *http.Client
}

// NewHeartbeatJob initialises the availability probe handler.
func NewHeartbeatJob(targetURL string, recorder HeartbeatRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *HeartbeatJob {
	return &HeartbeatJob{
		TargetURL: targetURL,
		Recorder:  recorder,
		Logger:    logger,
		Metrics:   metrics,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Handle executes one availability probe.
func (j *HeartbeatJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Recorder == nil {
		return errors.New("heartbeat: handler not configured")
	}
	var payload HeartbeatPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskHeartbeat)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	status := perf.StatusOnline
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.TargetURL, nil)
	if err != nil {
		resultErr = err
		return resultErr
	}
	resp, err := j.client.Do(req)
	if err != nil {
		status = perf.StatusOffline
		j.logger().Warn("availability probe failed", slog.Any("error", err))
	} else {
		if resp.StatusCode >= http.StatusInternalServerError {
			status = perf.StatusOffline
			j.logger().Warn("availability probe degraded", slog.Int("status", resp.StatusCode))
		}
		_ = resp.Body.Close()
	}

	j.Recorder.Heartbeat(ctx, status)
	return nil
}

func (j *HeartbeatJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

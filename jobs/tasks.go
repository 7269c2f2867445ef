package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskHeartbeat probes platform availability and records the verdict.
	TaskHeartbeat = "perf:heartbeat"
	// TaskSessionPurge removes expired session rows.
	TaskSessionPurge = "sessions:purge"
	// TaskPerfRollup trims performance events past retention.
	TaskPerfRollup = "perf:rollup"
)

// HeartbeatPayload carries scheduling metadata for an availability probe.
type HeartbeatPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewHeartbeatTask constructs an Asynq task for the availability probe.
func NewHeartbeatTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(HeartbeatPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHeartbeat, body, asynq.Queue(QueueDefault)), nil
}

// SessionPurgePayload carries scheduling metadata for the session sweep.
type SessionPurgePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSessionPurgeTask constructs an Asynq task for the session sweep.
func NewSessionPurgeTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionPurgePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, body, asynq.Queue(QueueDefault)), nil
}

// PerfRollupPayload controls how much event history is kept.
type PerfRollupPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewPerfRollupTask constructs an Asynq task for event retention.
func NewPerfRollupTask(retentionDays int) (*asynq.Task, error) {
	body, err := json.Marshal(PerfRollupPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPerfRollup, body, asynq.Queue(QueueDefault)), nil
}

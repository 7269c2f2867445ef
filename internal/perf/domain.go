package perf

import "time"

// Event types.
const (
	EventPageLoad = "page_load"
	EventUptime   = "uptime"
	EventDowntime = "downtime"
)

// Event statuses. Page loads classify by duration; heartbeats report
// online or offline.
const (
	StatusFast    = "fast"
	StatusSlow    = "slow"
	StatusTimeout = "timeout"
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Classification thresholds, boundary values inclusive.
const (
	FastThreshold = 3 * time.Second
	SlowThreshold = 10 * time.Second
)

// Event is one insert-only performance record.
type Event struct {
	ID         int64
	EventType  string
	Status     string
	Route      string
	Duration   time.Duration
	UserID     int64
	IP         string
	UserAgent  string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Classify maps a page duration to a status bucket.
func Classify(d time.Duration) string {
	switch {
	case d <= FastThreshold:
		return StatusFast
	case d <= SlowThreshold:
		return StatusSlow
	default:
		return StatusTimeout
	}
}

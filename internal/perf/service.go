package perf

import (
	"context"
	"time"
)

// LoadStats aggregates page-load events.
type LoadStats struct {
	Total     int64
	AvgMillis float64
	Fast      int64
	Slow      int64
	Timeout   int64
}

// HeartbeatStats aggregates uptime heartbeats.
type HeartbeatStats struct {
	Online  int64
	Offline int64
}

// Summary is the ops dashboard view of recent platform health.
type Summary struct {
	Since         time.Time
	Loads         LoadStats
	UptimePercent float64
	Incidents     int64
}

// StatsStore provides the read-side aggregations.
type StatsStore interface {
	LoadStats(ctx context.Context, since time.Time) (LoadStats, error)
	HeartbeatStats(ctx context.Context, since time.Time) (HeartbeatStats, error)
}

// Service computes reporting aggregates over performance history.
type Service struct {
	store StatsStore
	now   func() time.Time
}

// NewService builds the reporting service.
func NewService(store StatsStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Summarize aggregates the trailing window. Uptime percent falls back to
// 100 when no heartbeat has been recorded yet.
func (s *Service) Summarize(ctx context.Context, window time.Duration) (Summary, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	since := s.now().UTC().Add(-window)

	loads, err := s.store.LoadStats(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	beats, err := s.store.HeartbeatStats(ctx, since)
	if err != nil {
		return Summary{}, err
	}

	uptime := 100.0
	if total := beats.Online + beats.Offline; total > 0 {
		uptime = float64(beats.Online) / float64(total) * 100
	}
	return Summary{
		Since:         since,
		Loads:         loads,
		UptimePercent: uptime,
		Incidents:     beats.Offline + loads.Timeout,
	}, nil
}

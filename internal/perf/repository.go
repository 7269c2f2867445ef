package perf

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists and aggregates performance events.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs the store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Append inserts one event. Events are never updated after insert.
func (s *PGStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO performance_events (
			event_type, status, route, duration_ms, user_id, ip, user_agent, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.EventType, event.Status, event.Route, event.Duration.Milliseconds(),
		nullableID(event.UserID), event.IP, event.UserAgent, event.StartedAt, event.FinishedAt)
	return err
}

// LoadStats aggregates page-load events since the given time.
func (s *PGStore) LoadStats(ctx context.Context, since time.Time) (LoadStats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(duration_ms), 0),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3),
		       COUNT(*) FILTER (WHERE status = $4)
		FROM performance_events
		WHERE event_type = $5 AND started_at >= $1`,
		since, StatusFast, StatusSlow, StatusTimeout, EventPageLoad)
	var stats LoadStats
	if err := row.Scan(&stats.Total, &stats.AvgMillis, &stats.Fast, &stats.Slow, &stats.Timeout); err != nil {
		return LoadStats{}, err
	}
	return stats, nil
}

// HeartbeatStats aggregates uptime heartbeats since the given time.
func (s *PGStore) HeartbeatStats(ctx context.Context, since time.Time) (HeartbeatStats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM performance_events
		WHERE event_type IN ($4, $5) AND started_at >= $1`,
		since, StatusOnline, StatusOffline, EventUptime, EventDowntime)
	var stats HeartbeatStats
	if err := row.Scan(&stats.Online, &stats.Offline); err != nil {
		return HeartbeatStats{}, err
	}
	return stats, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

var _ AppendStore = (*PGStore)(nil)
var _ StatsStore = (*PGStore)(nil)

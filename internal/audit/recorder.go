package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// AppendStore persists one audit row.
type AppendStore interface {
	Append(ctx context.Context, rec Record) error
}

// Recorder appends audit records for privileged operations. Writes are
// best effort, single attempt: an append failure is routed to the
// operational log and never reaches the caller's error path, so the
// business action it describes succeeds or fails on its own.
type Recorder struct {
	store  AppendStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(store AppendStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record appends one audit record. The actor identity and client metadata
// are taken from the request-scoped context; callers supply only what the
// action itself knows. Calls within a request are written in call order.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.store == nil {
		return
	}
	if entry.ActionType == "" || entry.ResourceType == "" {
		r.logger.Warn("audit entry dropped: action type and resource type are required",
			slog.String("action", entry.ActionType),
			slog.String("resource_type", entry.ResourceType))
		return
	}

	rec := Record{
		Action:       entry.ActionType,
		Description:  entry.Description,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ResourceName: entry.ResourceName,
		Outcome:      entry.Outcome,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		Context:      entry.Context,
		OccurredAt:   r.now().UTC(),
	}
	if rec.Outcome == "" {
		rec.Outcome = OutcomeSuccess
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		rec.ActorID = actor.ID
		rec.ActorEmail = actor.Email
	}
	meta := shared.RequestMetaFromContext(ctx)
	rec.IP = meta.IP
	rec.UserAgent = meta.UserAgent
	rec.Device = ClassifyUserAgent(meta.UserAgent).String()

	if err := r.store.Append(ctx, rec); err != nil {
		r.logger.Error("audit append failed",
			slog.String("action", rec.Action),
			slog.String("resource_type", rec.ResourceType),
			slog.String("resource_id", rec.ResourceID),
			slog.Any("error", err))
	}
}

// PGStore writes audit rows into audit_logs.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns an AppendStore backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Append inserts one immutable row. There is no update or delete path.
func (s *PGStore) Append(ctx context.Context, rec Record) error {
	ctxJSON, err := json.Marshal(rec.Context)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_logs (
			actor_id, actor_email, action, description,
			resource_type, resource_id, resource_name, outcome,
			old_value, new_value, context, ip, user_agent, device, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		nullableID(rec.ActorID), rec.ActorEmail, rec.Action, rec.Description,
		rec.ResourceType, rec.ResourceID, rec.ResourceName, rec.Outcome,
		rec.OldValue, rec.NewValue, ctxJSON, rec.IP, rec.UserAgent, rec.Device, rec.OccurredAt)
	return err
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

var _ AppendStore = (*PGStore)(nil)

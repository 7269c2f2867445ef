package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGQueryStore implements QueryStore against audit_logs.
type PGQueryStore struct {
	pool *pgxpool.Pool
}

// NewPGQueryStore builds a PostgreSQL query store.
func NewPGQueryStore(pool *pgxpool.Pool) *PGQueryStore {
	return &PGQueryStore{pool: pool}
}

const recordColumns = `id, COALESCE(actor_id, 0), actor_email, action, description,
	resource_type, resource_id, resource_name, outcome,
	old_value, new_value, context, ip, user_agent, device, occurred_at`

// ListWindow returns records inside the filter window, newest first.
func (s *PGQueryStore) ListWindow(ctx context.Context, filters Filters, limit, offset int) ([]Record, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(`SELECT %s FROM audit_logs %s ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		recordColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return s.query(ctx, query, args)
}

// ListAll returns every matching record, newest first.
func (s *PGQueryStore) ListAll(ctx context.Context, filters Filters) ([]Record, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(`SELECT %s FROM audit_logs %s ORDER BY occurred_at DESC, id DESC`, recordColumns, where)
	return s.query(ctx, query, args)
}

func (s *PGQueryStore) query(ctx context.Context, query string, args []any) ([]Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// buildWhere assembles the filter clause. From/To are calendar dates; the
// window spans From 00:00 up to but excluding the day after To.
func buildWhere(filters Filters) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if !filters.From.IsZero() {
		add("occurred_at >= $%d", filters.From)
	}
	if !filters.To.IsZero() {
		add("occurred_at < $%d", filters.To.AddDate(0, 0, 1))
	}
	if actor := strings.TrimSpace(filters.Actor); actor != "" {
		add("actor_email ILIKE $%d", "%"+actor+"%")
	}
	if action := strings.TrimSpace(filters.Action); action != "" {
		add("action = $%d", strings.ToUpper(action))
	}
	if outcome := strings.TrimSpace(filters.Outcome); outcome != "" {
		add("outcome = $%d", outcome)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(description ILIKE $%d OR resource_name ILIKE $%d OR resource_id ILIKE $%d)", n, n, n))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var ctxJSON []byte
	var occurredAt time.Time
	err := row.Scan(&rec.ID, &rec.ActorID, &rec.ActorEmail, &rec.Action, &rec.Description,
		&rec.ResourceType, &rec.ResourceID, &rec.ResourceName, &rec.Outcome,
		&rec.OldValue, &rec.NewValue, &ctxJSON, &rec.IP, &rec.UserAgent, &rec.Device, &occurredAt)
	if err != nil {
		return Record{}, err
	}
	rec.OccurredAt = occurredAt
	if len(ctxJSON) > 0 {
		_ = json.Unmarshal(ctxJSON, &rec.Context)
	}
	return rec, nil
}

var _ QueryStore = (*PGQueryStore)(nil)

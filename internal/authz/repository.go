package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
)

// PGStore implements Store and GrantStore against PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs the store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// GetPrincipal loads the fields the resolver needs.
func (s *PGStore) GetPrincipal(ctx context.Context, id int64) (users.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, email, name, role, status FROM users WHERE id = $1`, id)
	var u users.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, shared.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

// ListGrants returns the explicit permission names for a principal.
func (s *PGStore) ListGrants(ctx context.Context, principalID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT permission FROM user_permissions WHERE user_id = $1 ORDER BY permission`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Grant adds an explicit permission to a principal. Granting twice is a
// no-op reported as ErrDuplicateGrant.
func (s *PGStore) Grant(ctx context.Context, principalID int64, permission string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)`, principalID, normalize(permission))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateGrant
		}
		return err
	}
	return nil
}

// Revoke removes an explicit permission. The very next resolver call
// observes the removal; requests already past their check are unaffected.
func (s *PGStore) Revoke(ctx context.Context, principalID int64, permission string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission = $2`, principalID, normalize(permission))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Store = (*PGStore)(nil)
var _ GrantStore = (*PGStore)(nil)

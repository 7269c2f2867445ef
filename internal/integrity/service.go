package integrity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
)

// Invalidation reasons reported to the polling client.
const (
	ReasonBanned          = "banned"
	ReasonDeleted         = "deleted"
	ReasonRoleChanged     = "role_changed"
	ReasonUnauthenticated = "unauthenticated"
)

// Status is the session-validity verdict. Invalid is terminal for the
// session that received it; a fresh login starts over.
type Status struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// PrincipalStore reads the current account state.
type PrincipalStore interface {
	GetPrincipal(ctx context.Context, id int64) (users.User, error)
}

// Service decides whether an established session is still valid. Every
// check reads the datastore fresh; the whole point is to notice changes
// made after login, so there is nothing to cache.
type Service struct {
	store  PrincipalStore
	logger *slog.Logger
}

// NewService constructs the monitor.
func NewService(store PrincipalStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Check compares the session's login-time claims against the account as it
// is now. A transient store failure reports the session as still valid and
// logs operationally: forced logouts must come from account state, not
// infrastructure blips, and permission checks fail closed independently.
func (s *Service) Check(ctx context.Context, principalID int64, claimedRole string) Status {
	if principalID == 0 {
		return Status{Valid: false, Reason: ReasonUnauthenticated}
	}
	principal, err := s.store.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Status{Valid: false, Reason: ReasonDeleted}
		}
		s.logger.Error("session integrity check failed, keeping session until next poll",
			slog.Int64("principal_id", principalID), slog.Any("error", err))
		return Status{Valid: true}
	}
	switch principal.Status {
	case users.StatusBanned:
		return Status{Valid: false, Reason: ReasonBanned}
	case users.StatusDeleted:
		return Status{Valid: false, Reason: ReasonDeleted}
	}
	if claimedRole != "" && principal.Role != claimedRole {
		return Status{Valid: false, Reason: ReasonRoleChanged}
	}
	return Status{Valid: true}
}

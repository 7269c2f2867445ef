package authz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
)

// Store is the read-only view of principals and grants the resolver needs.
// Grant writes happen through GrantStore on the admin surface; the
// resolver itself never writes.
type Store interface {
	GetPrincipal(ctx context.Context, id int64) (users.User, error)
	ListGrants(ctx context.Context, principalID int64) ([]string, error)
}

// Service resolves effective permissions. Every decision is recomputed
// against the datastore per call: grants can change between requests, so
// nothing here is cached. A check that already returned true for an
// in-flight request is not revisited when a grant is revoked mid-request;
// that staleness is bounded by the request lifetime and accepted.
//
// Every failure path resolves to deny. A broken permission check must hide
// the gated feature, never break the page.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs the resolver.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// HasPermission reports whether the principal holds the permission.
// Rule order: explicit grant, then role default, then the admin navigation
// fallback, then deny. The fallback is deliberately last so per-user
// grants stay authoritative when present.
func (s *Service) HasPermission(ctx context.Context, principalID int64, name string) bool {
	perm, ok := Lookup(name)
	if !ok {
		return false
	}
	principal, ok := s.activePrincipal(ctx, principalID)
	if !ok {
		return false
	}
	grants, ok := s.grantSet(ctx, principalID)
	if !ok {
		return false
	}
	return s.resolve(principal, grants, perm)
}

// HasAnyPermission reports whether at least one of the names resolves
// true, short-circuiting on the first hit.
func (s *Service) HasAnyPermission(ctx context.Context, principalID int64, names ...string) bool {
	if len(names) == 0 {
		return false
	}
	principal, ok := s.activePrincipal(ctx, principalID)
	if !ok {
		return false
	}
	grants, ok := s.grantSet(ctx, principalID)
	if !ok {
		return false
	}
	for _, name := range names {
		perm, ok := Lookup(name)
		if !ok {
			continue
		}
		if s.resolve(principal, grants, perm) {
			return true
		}
	}
	return false
}

// EffectivePermissions computes the full permission set used to drive
// conditional navigation rendering: role defaults unioned with explicit
// grants, plus the navigation catalog for admins. Valid only for the
// request that asked.
func (s *Service) EffectivePermissions(ctx context.Context, principalID int64) map[string]struct{} {
	principal, ok := s.activePrincipal(ctx, principalID)
	if !ok {
		return map[string]struct{}{}
	}
	grants, ok := s.grantSet(ctx, principalID)
	if !ok {
		return map[string]struct{}{}
	}
	effective := make(map[string]struct{})
	for _, name := range RoleDefaults(principal.Role) {
		effective[name] = struct{}{}
	}
	for name := range grants {
		if _, known := Lookup(name); known {
			effective[name] = struct{}{}
		}
	}
	if principal.Role == users.RoleAdmin {
		for _, perm := range catalog {
			if perm.Category == CategoryNavigation {
				effective[perm.Name] = struct{}{}
			}
		}
	}
	return effective
}

// resolve applies the ordered rule list for a recognized permission and an
// active principal.
func (s *Service) resolve(principal users.User, grants map[string]struct{}, perm Permission) bool {
	if _, granted := grants[perm.Name]; granted {
		return true
	}
	for _, name := range roleDefaults[principal.Role] {
		if name == perm.Name {
			return true
		}
	}
	// Admin fallback: navigation gating only, checked last.
	if principal.Role == users.RoleAdmin && perm.Category == CategoryNavigation {
		return true
	}
	return false
}

func (s *Service) activePrincipal(ctx context.Context, principalID int64) (users.User, bool) {
	if s.store == nil || principalID == 0 {
		return users.User{}, false
	}
	principal, err := s.store.GetPrincipal(ctx, principalID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("authz principal lookup failed, denying",
				slog.Int64("principal_id", principalID), slog.Any("error", err))
		}
		return users.User{}, false
	}
	if !principal.IsActive() {
		return users.User{}, false
	}
	return principal, true
}

func (s *Service) grantSet(ctx context.Context, principalID int64) (map[string]struct{}, bool) {
	names, err := s.store.ListGrants(ctx, principalID)
	if err != nil {
		s.logger.Error("authz grant lookup failed, denying",
			slog.Int64("principal_id", principalID), slog.Any("error", err))
		return nil, false
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[normalize(name)] = struct{}{}
	}
	return set, true
}

package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
)

type stubStore struct {
	principals map[int64]users.User
	grants     map[int64][]string
	userErr    error
	grantErr   error
}

func (s *stubStore) GetPrincipal(ctx context.Context, id int64) (users.User, error) {
	if s.userErr != nil {
		return users.User{}, s.userErr
	}
	u, ok := s.principals[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubStore) ListGrants(ctx context.Context, principalID int64) ([]string, error) {
	if s.grantErr != nil {
		return nil, s.grantErr
	}
	return s.grants[principalID], nil
}

func newResolver(store *stubStore) *Service {
	return NewService(store, nil)
}

func TestHasPermissionExplicitGrant(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleTeacher, Status: users.StatusActive}},
		grants:     map[int64][]string{1: {shared.PermNavDashboard}},
	}
	svc := newResolver(store)

	assert.True(t, svc.HasPermission(context.Background(), 1, shared.PermNavDashboard))
}

func TestHasPermissionRoleDefault(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleTeacher, Status: users.StatusActive}},
		grants:     map[int64][]string{},
	}
	svc := newResolver(store)

	assert.True(t, svc.HasPermission(context.Background(), 1, shared.PermGradesEdit))
}

func TestHasPermissionDeniesWithoutGrantOrDefault(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleTeacher, Status: users.StatusActive}},
		grants:     map[int64][]string{},
	}
	svc := newResolver(store)

	// Navigation permissions are explicit-grant-only for non-admins.
	assert.False(t, svc.HasPermission(context.Background(), 1, shared.PermNavDashboard))
	assert.False(t, svc.HasPermission(context.Background(), 1, shared.PermUsersBan))
}

func TestHasPermissionAdminNavFallback(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleAdmin, Status: users.StatusActive}},
		grants:     map[int64][]string{},
	}
	svc := newResolver(store)

	// The admin bypass covers navigation gating only.
	assert.True(t, svc.HasPermission(context.Background(), 1, shared.PermNavUsers))
	assert.True(t, svc.HasPermission(context.Background(), 1, shared.PermNavCourses))
	// Non-navigation admin access comes from role defaults, not the fallback.
	assert.True(t, svc.HasPermission(context.Background(), 1, shared.PermUsersBan))
	assert.False(t, svc.HasPermission(context.Background(), 1, shared.PermCoursesEdit))
}

func TestHasPermissionUnknownPermission(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleAdmin, Status: users.StatusActive}},
		grants:     map[int64][]string{},
	}
	svc := newResolver(store)

	assert.False(t, svc.HasPermission(context.Background(), 1, "made.up"))
	assert.False(t, svc.HasPermission(context.Background(), 1, ""))
}

func TestHasPermissionInactivePrincipals(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{
			2: {ID: 2, Role: users.RoleAdmin, Status: users.StatusBanned},
			3: {ID: 3, Role: users.RoleAdmin, Status: users.StatusDeleted},
		},
		grants: map[int64][]string{
			2: {shared.PermNavDashboard},
			3: {shared.PermNavDashboard},
		},
	}
	svc := newResolver(store)

	assert.False(t, svc.HasPermission(context.Background(), 2, shared.PermNavDashboard))
	assert.False(t, svc.HasPermission(context.Background(), 3, shared.PermNavDashboard))
	assert.False(t, svc.HasPermission(context.Background(), 99, shared.PermNavDashboard), "unknown principal denies")
	assert.False(t, svc.HasPermission(context.Background(), 0, shared.PermNavDashboard), "zero id denies")
}

func TestHasPermissionStoreFailuresDeny(t *testing.T) {
	svc := newResolver(&stubStore{userErr: errors.New("connection refused")})
	assert.False(t, svc.HasPermission(context.Background(), 1, shared.PermNavDashboard))

	svc = newResolver(&stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleAdmin, Status: users.StatusActive}},
		grantErr:   errors.New("connection refused"),
	})
	assert.False(t, svc.HasPermission(context.Background(), 1, shared.PermNavDashboard))
}

func TestHasAnyPermission(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleStudent, Status: users.StatusActive}},
		grants:     map[int64][]string{1: {shared.PermNavGrades}},
	}
	svc := newResolver(store)

	assert.True(t, svc.HasAnyPermission(context.Background(), 1, shared.PermNavUsers, shared.PermNavGrades))
	assert.True(t, svc.HasAnyPermission(context.Background(), 1, shared.PermCoursesView), "role default counts")
	assert.False(t, svc.HasAnyPermission(context.Background(), 1, shared.PermNavUsers, shared.PermNavOps))
	assert.False(t, svc.HasAnyPermission(context.Background(), 1))
	assert.False(t, svc.HasAnyPermission(context.Background(), 1, "made.up"))
}

func TestEffectivePermissions(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{
			1: {ID: 1, Role: users.RoleStudent, Status: users.StatusActive},
			2: {ID: 2, Role: users.RoleAdmin, Status: users.StatusActive},
		},
		grants: map[int64][]string{
			1: {shared.PermNavDashboard, "stale.permission"},
		},
	}
	svc := newResolver(store)

	student := svc.EffectivePermissions(context.Background(), 1)
	assert.Contains(t, student, shared.PermCoursesView)
	assert.Contains(t, student, shared.PermNavDashboard)
	assert.NotContains(t, student, "stale.permission", "grants outside the catalog are ignored")
	assert.NotContains(t, student, shared.PermNavUsers)

	admin := svc.EffectivePermissions(context.Background(), 2)
	assert.Contains(t, admin, shared.PermNavUsers)
	assert.Contains(t, admin, shared.PermNavOps)
	assert.Contains(t, admin, shared.PermUsersBan)
	assert.NotContains(t, admin, shared.PermCoursesEdit)
}

func TestEffectivePermissionsEmptyOnFailure(t *testing.T) {
	svc := newResolver(&stubStore{userErr: errors.New("boom")})
	assert.Empty(t, svc.EffectivePermissions(context.Background(), 1))
}

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAnyWithoutActorForbids(t *testing.T) {
	mw := Middleware{Service: newResolver(&stubStore{})}

	called := false
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	mw.RequireAny(shared.PermUsersView)(okHandler(&called)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestRequireAnyGrantsAccess(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleAdmin, Status: users.StatusActive}},
		grants:     map[int64][]string{},
	}
	mw := Middleware{Service: newResolver(store)}

	called := false
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	ctx := shared.ContextWithActor(req.Context(), shared.Actor{ID: 1, Role: users.RoleAdmin})
	mw.RequireAny(shared.PermUsersView)(okHandler(&called)).ServeHTTP(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func TestRequireAnyDeniedPermissionForbids(t *testing.T) {
	store := &stubStore{
		principals: map[int64]users.User{1: {ID: 1, Role: users.RoleStudent, Status: users.StatusActive}},
		grants:     map[int64][]string{},
	}
	mw := Middleware{Service: newResolver(store)}

	called := false
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	ctx := shared.ContextWithActor(req.Context(), shared.Actor{ID: 1, Role: users.RoleStudent})
	mw.RequireAny(shared.PermUsersView)(okHandler(&called)).ServeHTTP(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
}

func TestRequireAuthenticatedRedirects(t *testing.T) {
	mw := Middleware{}

	called := false
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	mw.RequireAuthenticated(okHandler(&called)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login", rr.Header().Get("Location"))
	assert.False(t, called)

	rr = httptest.NewRecorder()
	ctx := shared.ContextWithActor(context.Background(), shared.Actor{ID: 7})
	mw.RequireAuthenticated(okHandler(&called)).ServeHTTP(rr, req.WithContext(ctx))
	assert.True(t, called)
}

package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/view"
	_ "github.com/meridian-lms/meridian-lms/testing"
)

func listHandler(t *testing.T, count int) *Handler {
	t.Helper()
	repo := &stubRepo{users: map[int64]User{}}
	for i := 1; i <= count; i++ {
		id := int64(i)
		repo.users[id] = User{
			ID:     id,
			Email:  fmt.Sprintf("user%03d@meridian.local", i),
			Role:   RoleStudent,
			Status: StatusActive,
		}
	}
	templates, err := view.NewEngine()
	require.NoError(t, err)
	return NewHandler(nil, NewService(repo, nil), templates, shared.NewCSRFManager("csrfsecret"), nil)
}

func TestListUsersSinglePage(t *testing.T) {
	h := listHandler(t, 3)

	w := httptest.NewRecorder()
	h.listUsers(w, httptest.NewRequest("GET", "/users", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "user001@meridian.local")
	assert.NotContains(t, w.Body.String(), "Page 1 of", "no pagination controls for a single page")
}

func TestListUsersPaginates(t *testing.T) {
	h := listHandler(t, 45)

	w := httptest.NewRecorder()
	h.listUsers(w, httptest.NewRequest("GET", "/users?page=3", nil))

	assert.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Page 3 of 3")
	assert.Equal(t, 5, strings.Count(body, "@meridian.local</a>"), "last page holds the remainder")
}

func mutateRequest(target, id string) *http.Request {
	r := httptest.NewRequest("POST", target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestBanRejectsNonNumericID(t *testing.T) {
	h := listHandler(t, 1)

	w := httptest.NewRecorder()
	h.banUser(w, mutateRequest("/users/abc/ban", "abc"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var pd httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pd))
	assert.Equal(t, "user id must be numeric", pd.Detail)
}

func TestBanUnknownUserRespondsNotFound(t *testing.T) {
	h := listHandler(t, 1)

	w := httptest.NewRecorder()
	h.banUser(w, mutateRequest("/users/999/ban", "999"))

	require.Equal(t, http.StatusNotFound, w.Code)
	var pd httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pd))
	assert.Equal(t, "Not Found", pd.Title)
}

func TestListUsersClampsPageOverrun(t *testing.T) {
	h := listHandler(t, 25)

	w := httptest.NewRecorder()
	h.listUsers(w, httptest.NewRequest("GET", "/users?page=99", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Page 2 of 2")
}

package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

func TestJSONSetsContentTypeBeforeStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rr.Body.String())
}

func TestProblemBody(t *testing.T) {
	rr := httptest.NewRecorder()
	Problem(rr, http.StatusBadRequest, "Bad Request", "user id must be numeric")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var pd ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pd))
	assert.Equal(t, "Bad Request", pd.Title)
	assert.Equal(t, http.StatusBadRequest, pd.Status)
	assert.Equal(t, "user id must be numeric", pd.Detail)
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"wrapped not found", fmt.Errorf("load user: %w", shared.ErrNotFound), http.StatusNotFound, "Not Found"},
		{"duplicate grant", shared.ErrDuplicateGrant, http.StatusConflict, "Duplicate"},
		{"bad credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized, "Unauthorized"},
		{"csrf missing", shared.ErrCSRFTokenMissing, http.StatusForbidden, "Forbidden"},
		{"csrf mismatch", shared.ErrCSRFTokenMismatch, http.StatusForbidden, "Forbidden"},
		{"everything else", errors.New("pgx: connection refused"), http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)

			require.Equal(t, tc.wantStatus, rr.Code)
			var pd ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pd))
			assert.Equal(t, tc.wantTitle, pd.Title)
			assert.Equal(t, tc.wantStatus, pd.Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("dial tcp 10.0.0.3:5432: timeout"))

	assert.NotContains(t, rr.Body.String(), "10.0.0.3")
}

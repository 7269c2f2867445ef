package audithttp

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/audit"
)

type stubQueryService struct {
	result  audit.Result
	records []audit.Record
	err     error
}

func (s *stubQueryService) List(ctx context.Context, filters audit.Filters) (audit.Result, error) {
	return s.result, s.err
}

func (s *stubQueryService) Export(ctx context.Context, filters audit.Filters) ([]audit.Record, error) {
	return s.records, s.err
}

type recorderSpy struct {
	entries []audit.Entry
}

func (r *recorderSpy) Record(ctx context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func fixedHandler(service QueryService, recorder Recorder) *Handler {
	h := NewHandler(nil, service, recorder, nil, nil, nil)
	h.now = func() time.Time { return time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC) }
	return h
}

func TestParseFiltersDefaults(t *testing.T) {
	h := fixedHandler(nil, nil)
	r := httptest.NewRequest("GET", "/audit", nil)

	filters, err := h.parseFilters(r)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), filters.To)
	assert.Equal(t, time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC), filters.From, "window defaults to the last seven days")
	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 20, filters.PageSize)
}

func TestParseFiltersExplicitValues(t *testing.T) {
	h := fixedHandler(nil, nil)
	r := httptest.NewRequest("GET", "/audit?from=2026-01-01&to=2026-02-01&actor=admin%40meridian.local&action=UPDATE&outcome=Failed&q=role&page=3&page_size=10", nil)

	filters, err := h.parseFilters(r)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), filters.From)
	assert.Equal(t, "admin@meridian.local", filters.Actor)
	assert.Equal(t, "UPDATE", filters.Action)
	assert.Equal(t, "Failed", filters.Outcome)
	assert.Equal(t, "role", filters.Search)
	assert.Equal(t, 3, filters.Page)
	assert.Equal(t, 10, filters.PageSize)
}

func TestParseFiltersRejectsBadInput(t *testing.T) {
	h := fixedHandler(nil, nil)
	urls := []string{
		"/audit?to=yesterday",
		"/audit?from=01/02/2026",
		"/audit?from=2026-03-01&to=2026-02-01",
		"/audit?from=2025-01-01&to=2026-01-01",
		"/audit?page=0",
		"/audit?page=abc",
		"/audit?page_size=-5",
	}
	for _, url := range urls {
		r := httptest.NewRequest("GET", url, nil)
		_, err := h.parseFilters(r)
		assert.Error(t, err, url)
	}
}

func TestParseFiltersClampsPageSize(t *testing.T) {
	h := fixedHandler(nil, nil)
	r := httptest.NewRequest("GET", "/audit?page_size=500", nil)

	filters, err := h.parseFilters(r)
	require.NoError(t, err)
	assert.Equal(t, 50, filters.PageSize)
}

func TestHandleListRejectsInvalidFilters(t *testing.T) {
	h := fixedHandler(&stubQueryService{}, nil)

	w := httptest.NewRecorder()
	h.handleList(w, httptest.NewRequest("GET", "/audit?to=bogus", nil))

	assert.Equal(t, 400, w.Code)
}

func TestHandleExportWritesCSVAndAuditsItself(t *testing.T) {
	service := &stubQueryService{records: []audit.Record{
		{Action: audit.ActionUpdate, ResourceType: "user", Outcome: audit.OutcomeSuccess, OccurredAt: time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)},
		{Action: audit.ActionDelete, ResourceType: "user", Outcome: audit.OutcomeSuccess, OccurredAt: time.Date(2026, 4, 11, 8, 0, 0, 0, time.UTC)},
	}}
	spy := &recorderSpy{}
	h := fixedHandler(service, spy)

	w := httptest.NewRecorder()
	h.handleExport(w, httptest.NewRequest("GET", "/audit/export.csv", nil))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "audit-trail.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "occurred_at,actor,action"))

	require.Len(t, spy.entries, 1)
	assert.Equal(t, audit.ActionExport, spy.entries[0].ActionType)
	assert.Equal(t, 2, spy.entries[0].Context["rows"])
}

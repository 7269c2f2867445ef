package audithttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-lms/meridian-lms/internal/audit"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/view"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 50
	defaultDateRange  = 7 * 24 * time.Hour
	maxDateRangeHours = 24 * 90
)

// QueryService defines the business contract for audit listings.
type QueryService interface {
	List(ctx context.Context, filters audit.Filters) (audit.Result, error)
	Export(ctx context.Context, filters audit.Filters) ([]audit.Record, error)
}

// Recorder is the best-effort audit seam; exports are themselves audited.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// AuthzMiddleware gates routes on permissions.
type AuthzMiddleware interface {
	RequireAny(perms ...string) func(http.Handler) http.Handler
}

// Handler serves the audit trail reporting pages.
type Handler struct {
	logger    *slog.Logger
	service   QueryService
	recorder  Recorder
	templates *view.Engine
	csrf      *shared.CSRFManager
	authz     AuthzMiddleware
	now       func() time.Time
}

// NewHandler builds a new audit handler.
func NewHandler(logger *slog.Logger, service QueryService, recorder Recorder, templates *view.Engine, csrf *shared.CSRFManager, authz AuthzMiddleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		recorder:  recorder,
		templates: templates,
		csrf:      csrf,
		authz:     authz,
		now:       time.Now,
	}
}

type listViewRow struct {
	Record  audit.Record
	IPScope string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "load audit trail", err)
		return
	}
	rows := make([]listViewRow, 0, len(result.Rows))
	for _, rec := range result.Rows {
		rows = append(rows, listViewRow{Record: rec, IPScope: audit.ClassifyIP(rec.IP).Scope})
	}
	h.render(w, r, map[string]any{
		"Rows":    rows,
		"Paging":  result.Paging,
		"Filters": filters,
	}, http.StatusOK)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "export audit trail", err)
		return
	}
	csvBytes, err := audit.WriteCSV(rows)
	if err != nil {
		h.handleServerError(w, "encode csv", err)
		return
	}
	if h.recorder != nil {
		h.recorder.Record(r.Context(), audit.Entry{
			ActionType:   audit.ActionExport,
			Description:  "exported audit trail",
			ResourceType: "audit_log",
			ResourceName: "audit-trail.csv",
			Outcome:      audit.OutcomeSuccess,
			Context:      map[string]any{"rows": len(rows)},
		})
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"audit-trail.csv\"")
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) parseFilters(r *http.Request) (audit.Filters, error) {
	now := h.now().UTC()
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if toStr == "" {
		toStr = now.Format("2006-01-02")
	}
	toTime, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return audit.Filters{}, validationError{field: "to"}
	}
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	if fromStr == "" {
		fromStr = toTime.Add(-defaultDateRange).Format("2006-01-02")
	}
	fromTime, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return audit.Filters{}, validationError{field: "from"}
	}
	if fromTime.After(toTime) {
		return audit.Filters{}, validationError{field: "range"}
	}
	if toTime.Sub(fromTime) > maxDateRangeHours*time.Hour {
		return audit.Filters{}, validationError{field: "range"}
	}

	page := 1
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filters{}, validationError{field: "page"}
		}
		page = parsed
	}
	pageSize := defaultPageSize
	if v := strings.TrimSpace(r.URL.Query().Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filters{}, validationError{field: "page_size"}
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		pageSize = parsed
	}

	return audit.Filters{
		From:     fromTime,
		To:       toTime,
		Actor:    strings.TrimSpace(r.URL.Query().Get("actor")),
		Action:   strings.TrimSpace(r.URL.Query().Get("action")),
		Outcome:  strings.TrimSpace(r.URL.Query().Get("outcome")),
		Search:   strings.TrimSpace(r.URL.Query().Get("q")),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Audit Trail", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	if err := h.templates.RenderStatus(w, status, "pages/audit/list.html", viewData); err != nil {
		h.logger.Error("render audit list", slog.Any("error", err))
	}
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var v validationError
	if errors.As(err, &v) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.handleServerError(w, "validate filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type validationError struct {
	field string
}

func (validationError) Error() string {
	return "validation failed"
}

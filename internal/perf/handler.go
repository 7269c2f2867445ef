package perf

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/view"
)

// AuthzMiddleware gates routes on permissions.
type AuthzMiddleware interface {
	RequireAny(perms ...string) func(http.Handler) http.Handler
}

// Handler renders the operations dashboard.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	authz     AuthzMiddleware
	printer   *message.Printer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, authz AuthzMiddleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		authz:     authz,
		printer:   message.NewPrinter(language.English),
	}
}

// MountRoutes registers the ops dashboard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermOpsView))
		r.Get("/", h.dashboard)
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context(), 24*time.Hour)
	if err != nil {
		h.logger.Error("summarize performance", slog.Any("error", err))
		h.render(w, r, map[string]any{"Errors": map[string]string{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, map[string]any{
		"Summary":       summary,
		"Uptime":        h.printer.Sprintf("%.2f%%", summary.UptimePercent),
		"AvgLoad":       h.printer.Sprintf("%.0f ms", summary.Loads.AvgMillis),
		"PageLoads":     h.printer.Sprintf("%d", summary.Loads.Total),
		"IncidentCount": h.printer.Sprintf("%d", summary.Incidents),
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Operations", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	if err := h.templates.RenderStatus(w, status, "pages/ops/dashboard.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

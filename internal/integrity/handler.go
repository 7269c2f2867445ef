package integrity

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// Handler serves the session-validity endpoint polled by every
// authenticated page.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the status endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/status", h.status)
}

// status answers {"valid":bool,"reason":...}. The client polls on a fixed
// interval plus debounced user activity; detection latency is bounded by
// the poll interval, so nothing is pushed from the server side.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	var verdict Status
	if sess == nil || strings.TrimSpace(sess.User()) == "" {
		verdict = Status{Valid: false, Reason: ReasonUnauthenticated}
	} else {
		principalID, err := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
		if err != nil {
			verdict = Status{Valid: false, Reason: ReasonUnauthenticated}
		} else {
			verdict = h.service.Check(r.Context(), principalID, sess.Role())
		}
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSON(w, http.StatusOK, verdict)
}

package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/view"
)

// AuthzMiddleware gates routes on resolved permissions.
type AuthzMiddleware interface {
	RequireAny(perms ...string) func(http.Handler) http.Handler
}

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	authz     AuthzMiddleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, authz AuthzMiddleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, authz: authz, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermUsersView))
		r.Get("/", h.listUsers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermUsersBan))
		r.Post("/{id}/ban", h.banUser)
		r.Post("/{id}/unban", h.unbanUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermUsersEdit))
		r.Post("/{id}/role", h.changeRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermUsersDelete))
		r.Post("/{id}/delete", h.deleteUser)
	})
}

type formErrors map[string]string

const usersPerPage = 20

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.render(w, r, map[string]any{"Errors": formErrors{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	paging := shared.NewPagination(page, usersPerPage, len(list))
	start := paging.Offset()
	end := start + paging.PerPage
	if end > len(list) {
		end = len(list)
	}
	h.render(w, r, map[string]any{"Users": list[start:end], "Paging": paging}, http.StatusOK)
}

func (h *Handler) banUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "User banned", func(id int64) error {
		return h.service.Ban(r.Context(), id)
	})
}

func (h *Handler) unbanUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "User restored", func(id int64) error {
		return h.service.Unban(r.Context(), id)
	})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "User deleted", func(id int64) error {
		return h.service.Delete(r.Context(), id)
	})
}

type roleForm struct {
	Role string `validate:"required,oneof=admin teacher student"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	form := roleForm{Role: r.PostFormValue("role")}
	if err := h.validator.Struct(form); err != nil {
		h.redirectWithFlash(w, r, "/users", "error", "Unknown role")
		return
	}
	h.mutate(w, r, "Role updated", func(id int64) error {
		return h.service.ChangeRole(r.Context(), id, form.Role)
	})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, successMessage string, op func(id int64) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user id must be numeric")
		return
	}
	if err := op(id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error("user mutation failed", slog.Int64("user_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/users", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", successMessage)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Users", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	if err := h.templates.RenderStatus(w, status, "pages/users/list.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-lms/meridian-lms/internal/audit"
	"github.com/meridian-lms/meridian-lms/internal/platform/httpx"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
	"github.com/meridian-lms/meridian-lms/internal/view"
)

// GrantStore is the administrative write surface over permission grants.
// The resolver reads grants; only this handler writes them.
type GrantStore interface {
	ListGrants(ctx context.Context, principalID int64) ([]string, error)
	Grant(ctx context.Context, principalID int64, permission string) error
	Revoke(ctx context.Context, principalID int64, permission string) error
}

// UserDirectory looks up the principal a grant page is about.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (users.User, error)
}

// AuditRecorder is the best-effort audit seam.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// GrantsHandler manages permission grant administration pages.
type GrantsHandler struct {
	logger    *slog.Logger
	grants    GrantStore
	directory UserDirectory
	audit     AuditRecorder
	templates *view.Engine
	csrf      *shared.CSRFManager
	authz     Middleware
}

// NewGrantsHandler builds GrantsHandler instance.
func NewGrantsHandler(logger *slog.Logger, grants GrantStore, directory UserDirectory, recorder AuditRecorder, templates *view.Engine, csrf *shared.CSRFManager, authz Middleware) *GrantsHandler {
	return &GrantsHandler{logger: logger, grants: grants, directory: directory, audit: recorder, templates: templates, csrf: csrf, authz: authz}
}

// MountRoutes registers grant management routes.
func (h *GrantsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(shared.PermUsersGrant))
		r.Get("/", h.listCatalog)
		r.Get("/users/{id}", h.showUserGrants)
		r.Post("/users/{id}/grant", h.grant)
		r.Post("/users/{id}/revoke", h.revoke)
	})
}

type formErrors map[string]string

func (h *GrantsHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/permissions/list.html", map[string]any{"Categories": PermissionsByCategory()}, http.StatusOK)
}

func (h *GrantsHandler) showUserGrants(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	granted, err := h.grants.ListGrants(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list grants failed", slog.Any("error", err))
		h.render(w, r, "pages/permissions/user.html", map[string]any{"Errors": formErrors{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	grantedSet := make(map[string]bool, len(granted))
	for _, name := range granted {
		grantedSet[name] = true
	}
	h.render(w, r, "pages/permissions/user.html", map[string]any{
		"Subject":    user,
		"Categories": PermissionsByCategory(),
		"Granted":    grantedSet,
	}, http.StatusOK)
}

func (h *GrantsHandler) grant(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	perm := strings.TrimSpace(r.PostFormValue("permission"))
	if _, known := Lookup(perm); !known {
		h.redirectWithFlash(w, r, grantsPath(user.ID), "error", "Unknown permission")
		return
	}
	err := h.grants.Grant(r.Context(), user.ID, perm)
	if err != nil && !errors.Is(err, shared.ErrDuplicateGrant) {
		h.logger.Error("grant permission failed", slog.Any("error", err))
		h.redirectWithFlash(w, r, grantsPath(user.ID), "error", shared.UserSafeMessage(err))
		return
	}
	h.record(r.Context(), audit.Entry{
		ActionType:   audit.ActionCreate,
		Description:  "granted permission",
		ResourceType: "permission_grant",
		ResourceID:   strconv.FormatInt(user.ID, 10),
		ResourceName: user.Email,
		Outcome:      audit.OutcomeSuccess,
		NewValue:     normalize(perm),
	})
	h.redirectWithFlash(w, r, grantsPath(user.ID), "success", "Permission granted")
}

func (h *GrantsHandler) revoke(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	perm := strings.TrimSpace(r.PostFormValue("permission"))
	err := h.grants.Revoke(r.Context(), user.ID, perm)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error("revoke permission failed", slog.Any("error", err))
		h.redirectWithFlash(w, r, grantsPath(user.ID), "error", shared.UserSafeMessage(err))
		return
	}
	h.record(r.Context(), audit.Entry{
		ActionType:   audit.ActionDelete,
		Description:  "revoked permission",
		ResourceType: "permission_grant",
		ResourceID:   strconv.FormatInt(user.ID, 10),
		ResourceName: user.Email,
		Outcome:      audit.OutcomeSuccess,
		OldValue:     normalize(perm),
	})
	h.redirectWithFlash(w, r, grantsPath(user.ID), "success", "Permission revoked")
}

func (h *GrantsHandler) loadUser(w http.ResponseWriter, r *http.Request) (users.User, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user id must be numeric")
		return users.User{}, false
	}
	user, err := h.directory.GetUser(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("load user for grants failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return users.User{}, false
	}
	return user, true
}

func (h *GrantsHandler) record(ctx context.Context, entry audit.Entry) {
	if h.audit == nil {
		return
	}
	h.audit.Record(ctx, entry)
}

func (h *GrantsHandler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Permissions", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *GrantsHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func grantsPath(userID int64) string {
	return "/permissions/users/" + strconv.FormatInt(userID, 10)
}

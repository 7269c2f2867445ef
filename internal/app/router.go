package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/meridian-lms/meridian-lms/internal/audit/http"
	"github.com/meridian-lms/meridian-lms/internal/auth"
	"github.com/meridian-lms/meridian-lms/internal/authz"
	"github.com/meridian-lms/meridian-lms/internal/integrity"
	"github.com/meridian-lms/meridian-lms/internal/observability"
	"github.com/meridian-lms/meridian-lms/internal/perf"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
	"github.com/meridian-lms/meridian-lms/internal/view"
	"github.com/meridian-lms/meridian-lms/jobs"
	"github.com/meridian-lms/meridian-lms/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	GrantsHandler    *authz.GrantsHandler
	AuditHandler     *audithttp.Handler
	OpsHandler       *perf.Handler
	IntegrityHandler *integrity.Handler
	JobsHandler      *jobs.Handler
	Authz            authz.Middleware
	Permissions      *authz.Service
	Metrics          *observability.Metrics
	PerfRecorder     *perf.Recorder
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		PerfRecorder:   params.PerfRecorder,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Landing page for unauthenticated users
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:     "Meridian LMS",
			CSRFToken: csrfToken,
			Flash:     flash,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())

		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}

		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		effective := params.Permissions.EffectivePermissions(r.Context(), actor.ID)
		nav := navSections(effective)
		data := view.TemplateData{
			Title:     "Meridian LMS",
			CSRFToken: csrfToken,
			Flash:     flash,
			Data: map[string]any{
				"AppEnv": params.Config.AppEnv,
				"Actor":  actor,
				"Nav":    nav,
			},
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(gr chi.Router) {
		gr.Use(params.Authz.RequireAuthenticated)
		if params.UsersHandler != nil {
			gr.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.GrantsHandler != nil {
			gr.Route("/permissions", params.GrantsHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			gr.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.OpsHandler != nil {
			gr.Route("/ops", params.OpsHandler.MountRoutes)
		}
		if params.JobsHandler != nil {
			gr.With(params.Authz.RequireAny(shared.PermOpsView)).
				Route("/jobs", params.JobsHandler.MountRoutes)
		}
		gr.With(params.Authz.RequireAny(shared.PermCoursesView)).
			Get("/courses", sectionPage(params, "Courses", "Course catalog and enrolment."))
		gr.With(params.Authz.RequireAny(shared.PermGradesView)).
			Get("/grades", sectionPage(params, "Grades", "Gradebook and submissions."))
	})

	// The session probe sits outside RequireAuthenticated on purpose:
	// an expired session must yield {"valid":false}, not a redirect.
	if params.IntegrityHandler != nil {
		r.Route("/session", params.IntegrityHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func sectionPage(params RouterParams, title, blurb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:       title,
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
			Data:        map[string]any{"Blurb": blurb},
		}
		if err := params.Templates.Render(w, "pages/section.html", data); err != nil {
			params.Logger.Error("render section", slog.String("title", title), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// NavSection is one tile on the home page.
type NavSection struct {
	Label string
	Path  string
}

func navSections(effective map[string]struct{}) []NavSection {
	type candidate struct {
		perm    string
		section NavSection
	}
	candidates := []candidate{
		{shared.PermNavDashboard, NavSection{Label: "Dashboard", Path: "/"}},
		{shared.PermNavCourses, NavSection{Label: "Courses", Path: "/courses"}},
		{shared.PermNavGrades, NavSection{Label: "Grades", Path: "/grades"}},
		{shared.PermNavUsers, NavSection{Label: "Users", Path: "/users"}},
		{shared.PermNavAudit, NavSection{Label: "Audit Trail", Path: "/audit"}},
		{shared.PermNavOps, NavSection{Label: "Operations", Path: "/ops"}},
	}
	sections := make([]NavSection, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := effective[c.perm]; ok {
			sections = append(sections, c.section)
		}
	}
	return sections
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

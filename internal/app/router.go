package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-crm/internal/observability"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/view"
	"github.com/odyssey-erp/odyssey-crm/jobs"
	"github.com/odyssey-erp/odyssey-crm/web"
)

// Resource is a CRM resource that serves a JSON API and an HTML data table.
type Resource interface {
	MountAPI(r chi.Router)
	MountPages(r chi.Router)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics
	JobHandler     *jobs.Handler
	Resources      []Resource
}

// homePage is the template data for the landing page.
type homePage struct {
	// LastView is the data table the visitor opened last, if any.
	LastView string
}

// NewRouter constructs the chi.Router with CRM defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if params.SessionManager != nil {
			r.Use(ExistingSessionMiddleware(params.SessionManager, logger))
		}
		for _, res := range params.Resources {
			res.MountAPI(r)
		}
	})

	r.Group(func(r chi.Router) {
		if params.SessionManager != nil {
			r.Use(SessionMiddleware(params.SessionManager, logger))
		}
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			var (
				flash *shared.FlashMessage
				home  homePage
			)
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				flash = sess.PopFlash()
				home.LastView = sess.Get(shared.LastViewKey)
			}
			data := view.TemplateData{
				Title:       "Odyssey CRM",
				Flash:       flash,
				CurrentPath: r.URL.Path,
				Data:        home,
			}
			if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
				logger.Error("render home", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		})
		for _, res := range params.Resources {
			res.MountPages(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Static())))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

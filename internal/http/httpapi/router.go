package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"padhai/internal/http/handlers"
	"padhai/internal/infra"
	"padhai/internal/middleware"
)

type Options struct {
	Logger         infra.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	// GenerateLimiter guards the endpoints that spend provider quota. Nil
	// disables limiting.
	GenerateLimiter middleware.Limiter
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Logger(opts.Logger),
	)

	r.Get("/", app.Root)
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Route("/api/video", func(r chi.Router) {
		r.Get("/", app.VideoHistory)
		r.Get("/{id}", app.VideoRecord)
		r.Get("/{id}/bundle", app.VideoBundle)
		r.Group(func(r chi.Router) {
			if opts.GenerateLimiter != nil {
				r.Use(middleware.RateLimit(opts.GenerateLimiter, opts.Logger))
			}
			r.Post("/", app.VideoGenerate)
			r.Post("/expand", app.VideoExpand)
		})
	})

	r.Handle("/storage/*", http.StripPrefix("/storage/", noDirListing(http.FileServer(http.Dir(app.Store.BasePath())))))

	return r
}

// noDirListing hides directory indexes and pins the MP4 content type, which
// is missing from Go's built-in MIME table.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".mp4") {
			w.Header().Set("Content-Type", "video/mp4")
		}
		next.ServeHTTP(w, r)
	})
}

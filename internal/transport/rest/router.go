package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/erp-backend/internal/transport/middleware"
)

// APIPrefix is the path prefix of the directory endpoints.
const APIPrefix = "/api/v1"

// Mount attaches an entity router under APIPrefix + "/" + Path.
type Mount struct {
	Path    string
	Handler http.Handler
}

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Health *HealthHandler
	// Metrics is served at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	// Global wraps every route; API wraps only the directory endpoints.
	Global      []middleware.Middleware
	API         []middleware.Middleware
	Directories []Mount
}

// NewRouter builds the HTTP handler. Health probes and metrics sit outside
// the API middleware so they never need a token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Chain(cfg.Global...))

	if cfg.Health != nil {
		r.Get("/live", cfg.Health.Live)
		r.Get("/ready", cfg.Health.Ready)
		r.Get("/health", cfg.Health.Health)
	}
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.Metrics)
	}

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(middleware.Chain(cfg.API...))
		for _, m := range cfg.Directories {
			r.Mount("/"+m.Path, m.Handler)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

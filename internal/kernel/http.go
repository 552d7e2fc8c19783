package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/vastra/app/routes"
	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/database"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/middleware"
	"github.com/shashiranjanraj/vastra/pkg/reqid"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"github.com/shashiranjanraj/vastra/pkg/router"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

// Router builds the route table behind the global middleware stack.
func (k *Kernel) Router() *router.Router {
	r := router.New()

	// Outermost first: metrics see the full latency, recovery catches panics
	// before anything else runs, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(k.Issuer, k.Revoked))

	cors := middleware.DefaultCORSOptions()
	cors.AllowedOrigins = middleware.ParseOrigins(config.Get("CORS_ALLOWED_ORIGINS", "*"))
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RateLimit(middleware.NewMemoryLimiter(config.GetInt("RATE_LIMIT_PER_MINUTE", 200), time.Minute), middleware.ByIP))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", k.health)
	if local, ok := k.Storage.Local(); ok {
		r.Mount("/storage", "storage", http.StripPrefix("/storage", http.FileServer(http.Dir(local.Root()))))
	}

	routes.RegisterAPI(r, k.handlers)
	return r
}

// Handler is the application's root http.Handler.
func (k *Kernel) Handler() http.Handler {
	return k.Router().Handler()
}

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]any{
		"database": "ok",
		"cache":    k.Cache.Available(),
		"catalog":  k.Feed.LoadedAt(),
	}
	if err := database.Ping(ctx, k.DB); err != nil {
		status["database"] = err.Error()
		response.ErrorWithData(w, http.StatusServiceUnavailable, "Unhealthy", status)
		return
	}
	response.Success(w, status)
}

// Check is the gRPC health probe.
func (k *Kernel) Check(ctx context.Context) error {
	return database.Ping(ctx, k.DB)
}

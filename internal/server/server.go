package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/fittrack/internal/catalog"
	fitmcp "github.com/claude/fittrack/internal/mcp"
	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Options holds the optional collaborators of a Server. Zero values disable
// the corresponding feature.
type Options struct {
	// APIKey, when set, is required in X-API-Key on /api and /mcp.
	APIKey string
	// Metrics records request and domain counters.
	Metrics *metrics.Manager
	// MetricsHandler is mounted on /metrics.
	MetricsHandler http.Handler
	// RateLimiter throttles workout saves per user to SavesPerMinute.
	RateLimiter    RequestRateLimiter
	SavesPerMinute int
	// MCP is served over streamable HTTP on /mcp.
	MCP *mcpserver.MCPServer
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   storage.Store
	catalog *catalog.Catalog
	log     *slog.Logger
	opts    Options
	whois   WhoIser
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store storage.Store, cat *catalog.Catalog, log *slog.Logger, opts Options) *Server {
	s := &Server{
		store:   store,
		catalog: cat,
		log:     log,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution from the dev user to Tailscale
// WhoIs lookups.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RequestLogging(s.log))
	if s.opts.Metrics != nil {
		s.router.Use(RequestMetrics(s.opts.Metrics))
	}
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		s.router.Handle("/metrics", s.opts.MetricsHandler)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.opts.APIKey))
		r.Use(s.identity)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/me", s.handleMe)
			r.Get("/catalog", s.handleCatalog)
			r.Get("/plan", s.handlePlan)
			r.Get("/workouts", s.handleListWorkouts)
			r.With(s.rateLimit).Post("/workouts", s.handleCreateWorkout)
			r.Get("/progress", s.handleProgress)
			r.Get("/calories", s.handleCalories)
			r.Post("/calories", s.handleCalories)
		})

		if s.opts.MCP != nil {
			r.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.opts.MCP,
				mcpserver.WithHTTPContextFunc(mcpContext),
			))
		}
	})
}

// identity resolves the caller through Tailscale when configured and falls
// back to the dev user otherwise.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.store, s.log)(next).ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.opts.RateLimiter == nil || s.opts.SavesPerMinute <= 0 {
		return next
	}
	return RateLimit(s.opts.RateLimiter, "workouts", s.opts.SavesPerMinute, s.opts.Metrics)(next)
}

// mcpContext carries the HTTP caller's identity into MCP tool calls.
func mcpContext(ctx context.Context, r *http.Request) context.Context {
	if u := userFromContext(r.Context()); u != nil {
		return fitmcp.WithUser(ctx, u)
	}
	return ctx
}

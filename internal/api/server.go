package api

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/assess"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/auth"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/health"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/httputil"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/metrics"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

// Refresher fetches a new feed dataset on demand.
type Refresher interface {
	Refresh(ctx context.Context) (*neows.FeedDataset, error)
}

// BatchAssessor computes deflection assessments for the current feed.
type BatchAssessor interface {
	Assess(ctx context.Context) (*assess.Batch, error)
}

// Deps are the domain services the HTTP handlers call into.
type Deps struct {
	Looker    assess.Looker
	Store     *neows.Store
	Refresher Refresher
	Assessor  BatchAssessor
	Calc      *deflection.Calculator
	Web       fs.FS
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server. With enableFetch false the
// refresh endpoint answers 409 and never calls the refresher.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, enableFetch, trustProxy bool, deps Deps) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(deps.Store))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/neo/{id}", lookupHandler(logger, deps.Looker, deps.Calc))
	mux.HandleFunc("GET /api/v1/feed", feedHandler(deps.Store))
	mux.HandleFunc("POST /api/v1/feed/refresh", refreshHandler(logger, deps.Refresher, enableFetch))
	mux.HandleFunc("GET /api/v1/feed/assessments", assessmentsHandler(logger, deps.Assessor))
	mux.HandleFunc("GET /api/v1/sim", simHandler(deps.Calc))
	mux.HandleFunc("GET /api/v1/deflection", deflectionHandler(deps.Calc))

	if deps.Web != nil {
		mux.Handle("GET /", http.FileServerFS(deps.Web))
	}

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger, trustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			// Refresh and assessment calls wait on the upstream rate limiter.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}

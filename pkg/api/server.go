package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/httputil"
	"github.com/platinummonkey/apicheck/pkg/observability"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// ServerOptions wires a Server. Store, Metrics and Health are optional.
type ServerOptions struct {
	Checker      *checker.Checker
	Store        storage.BaselineStore
	Metrics      *observability.Metrics
	Health       *observability.HealthChecker
	Logger       *observability.Logger
	MaxBodyBytes int64
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new API server
func NewServer(opts ServerOptions) *Server {
	if opts.Checker == nil {
		opts.Checker = checker.New(checker.WithLogger(opts.Logger), checker.WithMetrics(opts.Metrics))
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if opts.Health == nil {
		var probes []observability.Probe
		if opts.Store != nil {
			probes = append(probes, opts.Store)
		}
		opts.Health = observability.NewHealthChecker("", probes...)
	}

	s := &Server{router: mux.NewRouter()}
	s.setupRoutes(opts)

	var handler http.Handler = s.router
	if opts.MaxBodyBytes > 0 {
		handler = httputil.MaxBytesMiddleware(opts.MaxBodyBytes)(handler)
	}
	// Server spans parent the check spans and pick up incoming trace context.
	handler = otelhttp.NewHandler(handler, "apicheck",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	s.handler = handler
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(opts ServerOptions) {
	s.router.Use(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(opts.Logger, opts.Metrics),
		httputil.RecoveryMiddleware(opts.Logger),
	)

	var store storage.BaselineReader
	if opts.Store != nil {
		store = opts.Store
	}
	NewCompatibilityHandlers(opts.Checker, store).RegisterRoutes(s.router)
	if opts.Store != nil {
		NewBaselineHandlers(opts.Checker, opts.Store).RegisterRoutes(s.router)
	}

	s.router.HandleFunc("/health/live", opts.Health.Liveness).Methods("GET")
	s.router.HandleFunc("/health/ready", opts.Health.Readiness).Methods("GET")
	if opts.Metrics != nil {
		s.router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the router so callers can register extra routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

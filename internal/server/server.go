// Package server exposes the dashboard and cluster runs as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-cli/internal/config"
	"github.com/sells-group/water-cli/internal/dashboard"
	"github.com/sells-group/water-cli/internal/monitoring"
)

const shutdownTimeout = 10 * time.Second

// Server routes API requests to a dashboard renderer.
type Server struct {
	cfg      config.ServerConfig
	renderer *dashboard.Renderer
	metrics  *monitoring.Metrics
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New builds the router. metrics and gatherer may be nil, in which case
// requests are not measured and /metrics is not mounted.
func New(cfg config.ServerConfig, renderer *dashboard.Renderer, metrics *monitoring.Metrics, gatherer prometheus.Gatherer) (*Server, error) {
	if renderer == nil {
		return nil, eris.New("server: renderer is required")
	}
	s := &Server{
		cfg:      cfg,
		renderer: renderer,
		metrics:  metrics,
		gatherer: gatherer,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.observe)
	r.Use(rateLimit(s.cfg.RateLimit, s.cfg.RateBurst))

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/states", s.handleStates)
		r.Get("/states/{state}/counties", s.handleStateCounties)
		r.Get("/selections", s.handleSelections)
		r.Get("/clusters/{selection}", s.handleCluster)
		r.Get("/clusters/{selection}/counties/{fips}", s.handleClusterCounty)
		r.Get("/clusters/{selection}/geojson", s.handleClusterGeoJSON)
		r.Get("/timeseries/{fips}", s.handleTimeSeries)
		r.Get("/pages/{page}", s.handlePage)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}

	if err := <-done; err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

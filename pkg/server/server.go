// Package server exposes the planning pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/plans                          plan an uploaded image (multipart)
//	GET    /v1/plans                          list stored plans, newest first
//	GET    /v1/plans/{id}                     fetch a stored plan
//	DELETE /v1/plans/{id}                     delete a stored plan
//	GET    /v1/plans/{id}/artifact.{format}   render a stored plan (svg, png, pdf, json)
//	GET    /healthz                           liveness and version
//
// Errors are reported as JSON bodies of the form {"code": ..., "message": ...}
// using the codes from pkg/errors.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stringbean/pkg/pipeline"
	"github.com/matzehuels/stringbean/pkg/store"
)

// Server defaults.
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultMaxUploadBytes = 32 << 20
	DefaultPlanTimeout    = 2 * time.Minute
	DefaultShutdown       = 10 * time.Second
)

// Config configures a Server. Runner and Store are required.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Defaults are the options applied before a request's own options.
	Defaults pipeline.Options

	MaxUploadBytes int64
	PlanTimeout    time.Duration
}

// Server handles plan requests.
type Server struct {
	runner      *pipeline.Runner
	store       store.Store
	logger      *log.Logger
	defaults    pipeline.Options
	maxUpload   int64
	planTimeout time.Duration
}

// New creates a server from cfg, filling in defaults for unset limits.
func New(cfg Config) *Server {
	s := &Server{
		runner:      cfg.Runner,
		store:       cfg.Store,
		logger:      cfg.Logger,
		defaults:    cfg.Defaults,
		maxUpload:   cfg.MaxUploadBytes,
		planTimeout: cfg.PlanTimeout,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	if s.planTimeout <= 0 {
		s.planTimeout = DefaultPlanTimeout
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, notFoundRoute(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Group(func(r chi.Router) {
		r.Use(announce)

		r.Get("/healthz", s.health)
		r.Post("/v1/plans", s.createPlan)
		r.Get("/v1/plans", s.listPlans)
		r.Get("/v1/plans/{id}", s.getPlan)
		r.Delete("/v1/plans/{id}", s.deletePlan)
		r.Get("/v1/plans/{id}/artifact.{format}", s.getArtifact)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestOptions returns a copy of the server defaults with no storage
// shared with them, so request decoding cannot alter the defaults.
func (s *Server) requestOptions() pipeline.Options {
	opts := s.defaults
	opts.Formats = slices.Clone(s.defaults.Formats)
	if s.defaults.Penalty != nil {
		p := *s.defaults.Penalty
		opts.Penalty = &p
	}
	return opts
}

// Package server exposes search, relation lookup and selection export over
// HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/search?q=<query>[&all=true]
//	GET  /api/relations/{id}[?detail=tags|body|geom]
//	GET  /api/relations/{id}/geojson
//	POST /api/export?structure=&format=&include=&strict=&refresh=
//
// The export body is the tree widget's get_json() output. Errors are JSON
// objects of the form {"error": {"code": ..., "message": ...}}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/osmtree/osmtree/pkg/export"
	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
)

// DefaultMaxBodyBytes caps the size of an export request body.
const DefaultMaxBodyBytes = 16 << 20

// Searcher finds places by name. [*nominatim.Client] implements it.
type Searcher interface {
	Search(ctx context.Context, query string, refresh bool) ([]nominatim.Place, error)
}

// Options configures [New].
type Options struct {
	Relations    export.RelationFetcher
	Search       Searcher
	Runner       *export.Runner
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server handles API requests.
//
// Identical relation lookups that arrive while one is in flight share its
// result.
type Server struct {
	relations export.RelationFetcher
	search    Searcher
	runner    *export.Runner
	logger    *log.Logger
	maxBody   int64
	group     singleflight.Group
	router    chi.Router
}

// New creates a server. A nil Runner is replaced by one using
// opts.Relations.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = export.NewRunner(opts.Relations, opts.Logger)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		relations: opts.Relations,
		search:    opts.Search,
		runner:    opts.Runner,
		logger:    opts.Logger,
		maxBody:   opts.MaxBodyBytes,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/relations/{id}", s.handleRelation)
		r.Get("/relations/{id}/geojson", s.handleGeoJSON)
		r.Post("/export", s.handleExport)
	})
	return r
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

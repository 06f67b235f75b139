// Package web exposes the crateview service over HTTP.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"crateview/app"
	"crateview/app/metrics"
)

// Server is the HTTP server for the crateview API.
type Server struct {
	app    *app.App
	logger *zap.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server wired to the given service layer.
func NewServer(a *app.App, logger *zap.Logger) *Server {
	s := &Server{
		app:    a,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/uploads", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Get("/", s.handleListUploads)
			r.Route("/{uploadID}", func(r chi.Router) {
				r.Delete("/", s.handleRemoveUpload)
				r.Get("/tree", s.handleTree)
				r.Post("/open", s.handleOpenFile)
			})
		})

		r.Route("/tabs", func(r chi.Router) {
			r.Get("/", s.handleListTabs)
			r.Route("/{tabID}", func(r chi.Router) {
				r.Delete("/", s.handleCloseTab)
				r.Get("/view", s.handleTabView)
				r.Get("/state", s.handleTabState)
				r.Get("/payload", s.handleTabPayload)
				r.Get("/export.csv", s.handleExportCSV)
				r.Get("/export.xlsx", s.handleExportXLSX)
				r.Post("/search", s.handleSetSearch)
				r.Post("/sort", s.handleSetSort)
				r.Post("/page", s.handleSetPage)
				r.Post("/page-size", s.handleSetPageSize)
				r.Post("/columns", s.handleSetColumnVisible)
				r.Route("/filters", func(r chi.Router) {
					r.Post("/", s.handleSetFilter)
					r.Delete("/", s.handleClearFilters)
					r.Delete("/{column}", s.handleRemoveFilter)
				})
			})
		})

		r.Get("/cache/stats", s.handleCacheStats)
	})
}

// Router returns the underlying handler, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving on addr and blocks until the listener fails.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request with timing.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Package http exposes ingestion, retrieval and document management over a
// JSON HTTP API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// DefaultMaxUploadSize bounds multipart uploads.
const DefaultMaxUploadSize = 32 << 20

// maxRequestBodySize caps JSON request bodies.
const maxRequestBodySize = 1 << 20

// Server routes API requests to the core services.
type Server struct {
	router        *chi.Mux
	ingestion     driving.IngestionService
	retrieval     driving.RetrievalService
	documents     driving.DocumentService
	maxUploadSize int64
	mounts        map[string]http.Handler
}

// Options configures a Server.
type Options func(*Server)

// WithMaxUploadSize overrides DefaultMaxUploadSize.
func WithMaxUploadSize(n int64) Options {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

// WithMount serves h under pattern next to the API, e.g. the MCP transport
// at "/mcp".
func WithMount(pattern string, h http.Handler) Options {
	return func(s *Server) {
		if s.mounts == nil {
			s.mounts = make(map[string]http.Handler)
		}
		s.mounts[pattern] = h
	}
}

// New creates a server with all routes registered.
func New(
	ingestion driving.IngestionService,
	retrieval driving.RetrievalService,
	documents driving.DocumentService,
	opts ...Options,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		ingestion:     ingestion,
		retrieval:     retrieval,
		documents:     documents,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/retrieve", s.handleRetrieve)
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleUpload)
			r.Get("/{id}", s.handleGetDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
		})
	})

	for pattern, h := range s.mounts {
		r.Mount(pattern, h)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// accessLogger logs one line per request.
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logger.Info("%s %s %d %dB %s req=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
				time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
		}()

		next.ServeHTTP(ww, r)
	})
}

// Package mcp exposes retrieval, answering and public documents to AI
// assistants over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

// ErrMissingRetrievalService is returned by New without a retrieval service.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// Server registers the lexis tools and resources on an MCP server.
type Server struct {
	retrieval driving.RetrievalService
	answers   driving.AnswerService
	documents driving.DocumentService
	mcp       *mcp.Server
}

// Option configures optional capabilities.
type Option func(*Server)

// WithAnswers enables the ask tool.
func WithAnswers(a driving.AnswerService) Option {
	return func(s *Server) { s.answers = a }
}

// WithDocuments enables the document resources.
func WithDocuments(d driving.DocumentService) Option {
	return func(s *Server) { s.documents = d }
}

// New creates a server. Retrieval is required; the ask tool and the
// document resources are added only when their services are given.
func New(retrieval driving.RetrievalService, opts ...Option) (*Server, error) {
	if retrieval == nil {
		return nil, ErrMissingRetrievalService
	}

	s := &Server{retrieval: retrieval}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "lexis", Version: Version}, nil)
	s.registerTools()
	if s.documents != nil {
		s.registerResources()
	}
	return s, nil
}

// Run serves JSON-RPC over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP transport, for mounting under an
// existing router.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

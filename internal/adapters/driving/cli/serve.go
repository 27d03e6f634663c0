package cli

import (
	"errors"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/lexis/internal/adapters/driving/http"
)

var (
	serveAddr          string
	serveMaxUploadSize int64
	serveMCP           bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

Endpoints:
  POST   /api/documents        multipart upload (file, fileName, userId, ...)
  GET    /api/documents        list documents visible to ?userId=
  GET    /api/documents/{id}   document info
  DELETE /api/documents/{id}   delete (owner only)
  POST   /api/retrieve         rank passages for a query
  GET    /healthz              liveness

With --mcp the Model Context Protocol transport is also served at /mcp.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
	serveCmd.Flags().Int64Var(&serveMaxUploadSize, "max-upload", httpapi.DefaultMaxUploadSize, "maximum upload size in bytes")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve the MCP transport at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil || retrievalService == nil || documentService == nil {
		return errors.New("ingestion, retrieval and document services must be configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}
	if addr == "" {
		addr = ":8080"
	}

	opts := []httpapi.Options{httpapi.WithMaxUploadSize(serveMaxUploadSize)}
	if serveMCP {
		mcpServer, err := newMCPServer()
		if err != nil {
			return err
		}
		opts = append(opts, httpapi.WithMount("/mcp", mcpServer.Handler()))
	}

	server := httpapi.New(ingestionService, retrievalService, documentService, opts...)

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.ListenAndServe(cmd.Context(), addr)
}

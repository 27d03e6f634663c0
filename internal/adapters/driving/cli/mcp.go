package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve lexis to AI assistants over the Model Context Protocol",
	Long: `Serve lexis to AI assistants over the Model Context Protocol.

Tools:      retrieve, ask (when an LLM is configured)
Resources:  lexis://documents
            lexis://documents/{documentId}
            lexis://documents/{documentId}/details

Resources expose public documents only. JSON-RPC runs over stdio unless
--port selects the streamable HTTP transport.

Assistant configuration:
  {
    "mcpServers": {
      "lexis": {"command": "/path/to/lexis", "args": ["mcp"]}
    }
  }`,
	Example: `  lexis mcp
  lexis mcp --port 8081`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}

// newMCPServer wires whichever services are configured.
func newMCPServer() (*mcp.Server, error) {
	if retrievalService == nil {
		return nil, errors.New("retrieval service not configured")
	}

	var opts []mcp.Option
	if answerService != nil {
		opts = append(opts, mcp.WithAnswers(answerService))
	}
	if documentService != nil {
		opts = append(opts, mcp.WithDocuments(documentService))
	}
	return mcp.New(retrievalService, opts...)
}

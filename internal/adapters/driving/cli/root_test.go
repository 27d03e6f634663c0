package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/logger"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range Root().Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"ingest", "retrieve", "ask", "document", "watch", "serve", "mcp", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseEnablesDebug(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	original := logger.GetLevel()
	defer func() {
		logger.SetLevel(original)
		verbose = false
	}()

	_, err := execute("--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestServeCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute("serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be configured")
}

func TestMCPCmd_RequiresRetrieval(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute("mcp")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}

func TestNewMCPServer_WiresConfiguredServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	server, err := newMCPServer()
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())
}

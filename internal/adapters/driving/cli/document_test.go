package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range documentCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "content", "details", "delete"}, names)
}

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentCommands_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	for _, args := range [][]string{
		{"document", "list"},
		{"document", "get", "doc-1"},
		{"document", "content", "doc-1"},
		{"document", "details", "doc-1"},
		{"document", "delete", "doc-1"},
	} {
		_, err := execute(args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "document service not configured")
	}
}

func TestDocumentListCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Test Document 1")
	assert.Contains(t, out, "[2020] UKSC 1")
	assert.NotContains(t, out, "doc-2")
	assert.Contains(t, out, "Total: 1 documents")
	assert.Regexp(t, `ID\s+TYPE\s+ACCESS\s+TITLE`, out)
	assert.Empty(t, ts.document.lastFilter.OwnerID)
}

func TestDocumentListCmd_WithUser(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "list", "--user", "alice", "--type", "statute")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-2")
	assert.Contains(t, out, "private to alice")
	assert.Equal(t, "alice", ts.document.lastFilter.OwnerID)
	assert.Equal(t, []domain.DocumentType{domain.DocumentTypeStatute}, ts.document.lastFilter.Types)
}

func TestDocumentListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "list", "--type", "regulation")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found.")
}

func TestDocumentGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Regexp(t, `Citation:\s+\[2020\] UKSC 1`, out)
	assert.Regexp(t, `Type:\s+case`, out)
	assert.Regexp(t, `Access:\s+public`, out)
	assert.Contains(t, out, "2024-03-01 12:00:00")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("document", "get", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentContentCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "content", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Full content of doc-2")
}

func TestDocumentDetailsCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "details", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Document Details: doc-2")
	assert.Regexp(t, `Owner:\s+alice`, out)
	assert.Regexp(t, `Chunks:\s+4`, out)
	assert.Contains(t, out, "file_type: pdf")
	assert.NotContains(t, out, "Citation:", "empty fields are skipped")
	assert.Less(t, strings.Index(out, "chunk_count"), strings.Index(out, "file_type"), "metadata keys are sorted")
}

func TestDocumentDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document doc-1 deleted.")
	assert.Equal(t, []string{"doc-1"}, ts.document.deleted)
}

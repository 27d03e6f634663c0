package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

func TestAskCmd_WithSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.answer = &driving.Answer{
		Text:    "A manufacturer owes a duty of care [1].",
		Sources: testCandidates[:1],
	}

	out, err := execute("ask", "Who owes a duty of care?", "--user", "alice", "--top-k", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "A manufacturer owes a duty of care [1].")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] Donoghue v Stevenson ([1932] AC 562), score 0.91")
	assert.Equal(t, "alice", ts.answer.lastOpts.Filter.OwnerID)
	assert.Equal(t, 2, ts.answer.lastOpts.TopK)
}

func TestAskCmd_Ungrounded(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.answer = &driving.Answer{Text: "I could not find anything."}

	out, err := execute("ask", "What is the weather?")

	require.NoError(t, err)
	assert.Contains(t, out, "not grounded")
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_LLMUnavailable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.err = domain.ErrLLMUnavailable

	_, err := execute("ask", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

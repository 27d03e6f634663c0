package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOllama embeds each input as [len(input), 1] and records call counts
// and peak concurrency. Any input equal to failOn fails its whole request.
type stubOllama struct {
	*httptest.Server
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newStubOllama(t *testing.T, failOn string) *stubOllama {
	t.Helper()
	stub := &stubOllama{}

	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		case "/api/embed":
		default:
			http.NotFound(w, r)
			return
		}

		stub.calls.Add(1)
		n := stub.inFlight.Add(1)
		defer stub.inFlight.Add(-1)
		for {
			p := stub.peak.Load()
			if n <= p || stub.peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		vectors := make([]string, 0, len(req.Input))
		for _, in := range req.Input {
			if in == failOn {
				http.Error(w, "model crashed", http.StatusInternalServerError)
				return
			}
			vectors = append(vectors, fmt.Sprintf("[%d,1]", len(in)))
		}
		_, _ = fmt.Fprintf(w, `{"model":%q,"embeddings":[%s]}`, req.Model, strings.Join(vectors, ","))
	}))
	t.Cleanup(stub.Close)
	return stub
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, DefaultBatchSize, svc.batchSize)

	svc = NewEmbeddingService(Config{Model: "all-minilm"})
	assert.Equal(t, 384, svc.Dimensions())
}

func TestEmbed(t *testing.T) {
	stub := newStubOllama(t, "")
	svc := NewEmbeddingService(Config{BaseURL: stub.URL})

	vec, err := svc.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1}, vec)
}

func TestEmbedBatch_BatchesAndPreservesOrder(t *testing.T) {
	stub := newStubOllama(t, "")
	svc := NewEmbeddingService(Config{BaseURL: stub.URL, BatchSize: 2, Concurrency: 2})

	texts := []string{"a", "bbbb", "cc", "ddddddd", "eee"}
	vectors, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vectors[i][0], "vector %d out of order", i)
	}
	assert.Equal(t, int32(3), stub.calls.Load())
	assert.LessOrEqual(t, stub.peak.Load(), int32(2))
}

func TestEmbedBatch_Empty(t *testing.T) {
	vectors, err := NewEmbeddingService(Config{}).EmbedBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatch_AnyFailureFailsBatch(t *testing.T) {
	stub := newStubOllama(t, "boom")
	svc := NewEmbeddingService(Config{BaseURL: stub.URL, BatchSize: 1})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"ok", "boom", "fine"})
	assert.ErrorContains(t, err, "model crashed")
	assert.Nil(t, vectors)
}

func TestEmbed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer server.Close()

	_, err := NewEmbeddingService(Config{BaseURL: server.URL}).Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "returned 0 vectors for 1 texts")
}

func TestPing(t *testing.T) {
	stub := newStubOllama(t, "")
	assert.NoError(t, NewEmbeddingService(Config{BaseURL: stub.URL}).Ping(context.Background()))
}

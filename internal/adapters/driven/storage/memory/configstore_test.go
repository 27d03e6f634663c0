package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("ingestion.chunk_size", 1000))
	require.NoError(t, store.Set("ingestion.overlap", int64(200)))
	require.NoError(t, store.Set("retrieval.top_k", float64(5)))
	require.NoError(t, store.Set("retrieval.min_score", 0.7))
	require.NoError(t, store.Set("document.public", true))
	require.NoError(t, store.Set("pipeline.processors", []any{"chunker", 3, "stats"}))

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 1000, store.GetInt("ingestion.chunk_size"))
	assert.Equal(t, 200, store.GetInt("ingestion.overlap"))
	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.7, store.GetFloat("retrieval.min_score"), 1e-9)
	assert.InDelta(t, 1000.0, store.GetFloat("ingestion.chunk_size"), 1e-9)
	assert.True(t, store.GetBool("document.public"))
	assert.Equal(t, []string{"chunker", "stats"}, store.GetStringSlice("pipeline.processors"))
}

func TestConfigStore_MissingAndWrongType(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "text"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.Zero(t, store.GetFloat("s"))
	assert.False(t, store.GetBool("s"))
	assert.Equal(t, []string{"text"}, store.GetStringSlice("s"), "strings split on commas")
}

func TestConfigStore_PersistenceIsNoOp(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", i%5)
			_ = store.Set(key, i)
			_ = store.GetInt(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		_, ok := store.Get(fmt.Sprintf("key.%d", i))
		assert.True(t, ok)
	}
}

package config

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues_ZeroValueUsable(t *testing.T) {
	var v Values

	_, ok := v.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, v.Snapshot())

	assert.NoError(t, v.Set("retrieval.top_k", int64(8)))
	assert.Equal(t, 8, v.GetInt("retrieval.top_k"))
}

func TestValues_TypedGetters(t *testing.T) {
	var v Values
	v.Replace(map[string]any{
		"embedding.provider":  "ollama",
		"retrieval.min_score": "0.65",
		"ingestion.public":    true,
		"pipeline.processors": []any{"chunker", "stats"},
	})

	assert.Equal(t, "ollama", v.GetString("embedding.provider"))
	assert.InDelta(t, 0.65, v.GetFloat("retrieval.min_score"), 1e-9)
	assert.True(t, v.GetBool("ingestion.public"))
	assert.Equal(t, []string{"chunker", "stats"}, v.GetStringSlice("pipeline.processors"))
	assert.Zero(t, v.GetInt("embedding.provider"))
}

func TestValues_SnapshotIsCopy(t *testing.T) {
	var v Values
	_ = v.Set("a", 1)

	snap := v.Snapshot()
	snap["a"] = 2
	snap["b"] = 3

	assert.Equal(t, 1, v.GetInt("a"))
	_, ok := v.Get("b")
	assert.False(t, ok)
}

func TestValues_Concurrency(t *testing.T) {
	var v Values
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = v.Set(key, i)
			_ = v.GetInt(key)
			_ = v.Snapshot()
		}()
	}
	wg.Wait()
	assert.Len(t, v.Snapshot(), 4)
}

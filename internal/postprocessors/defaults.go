package postprocessors

import (
	"fmt"
	"math"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexis/internal/postprocessors/stats"
)

// RegisterDefaults registers the built-in processors: "chunker" splits and
// "stats" annotates.
func RegisterDefaults(r *Registry) {
	// Names are fixed, so registration cannot collide on a fresh registry.
	_ = r.Register(chunker.Name, RoleSplit, buildChunker)
	_ = r.Register("stats", RoleAnnotate, buildStats)
}

// buildChunker reads chunk_size and overlap. Their relationship is checked
// when a document is processed, so a bad pair fails ingestion with
// domain.ErrInvalidChunkParameters.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	size, ok, err := intSetting(cfg, "chunk_size")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}

	overlap, ok, err := intSetting(cfg, "overlap")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

func buildStats(map[string]any) (driven.PostProcessor, error) {
	return stats.New(), nil
}

// intSetting reads an integer from a config table. TOML yields int64 and
// JSON yields float64; a fractional or non-numeric value is an error.
func intSetting(cfg map[string]any, key string) (int, bool, error) {
	val, ok := cfg[key]
	if !ok {
		return 0, false, nil
	}

	switch v := val.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), true, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %s must be an integer, got %v",
		domain.ErrInvalidChunkParameters, key, val)
}

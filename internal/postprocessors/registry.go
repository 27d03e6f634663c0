package postprocessors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// BuilderFunc creates a PostProcessor from its [pipeline.<name>] config table.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Role says where a processor may sit in a pipeline.
type Role int

const (
	// RoleSplit processors turn document content into chunks. Every
	// pipeline starts with exactly one.
	RoleSplit Role = iota

	// RoleAnnotate processors receive chunks and return them with extra
	// metadata.
	RoleAnnotate
)

func (r Role) String() string {
	if r == RoleSplit {
		return "split"
	}
	return "annotate"
}

type registration struct {
	role  Role
	build BuilderFunc
}

// Registry maps processor names to builders so pipelines can be assembled
// from configuration.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register adds a builder under name. Registering a name twice is an error.
func (r *Registry) Register(name string, role Role, builder BuilderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("processor %q already registered", name)
	}
	r.entries[name] = registration{role: role, build: builder}
	return nil
}

// Build creates the named processor.
// Unknown names fail with domain.ErrUnsupportedType.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor: %s", domain.ErrUnsupportedType, name)
	}
	return entry.build(cfg)
}

// Role returns the role a processor was registered with.
func (r *Registry) Role(name string) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry.role, ok
}

// Names returns all registered processor names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

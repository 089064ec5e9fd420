package searcher

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
)

// Registry holds named search backends. It is an explicit value passed
// into a benchmark run, not process-wide state, so concurrent runs can
// use different backend sets without interference.
type Registry struct {
	mu        sync.RWMutex
	searchers map[string]Searcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		searchers: make(map[string]Searcher),
	}
}

// Register adds a backend under its own name.
func (r *Registry) Register(s Searcher) error {
	if s == nil {
		return apperrors.ConfigError("searcher cannot be nil")
	}
	name := s.Name()
	if name == "" {
		return apperrors.ConfigError("searcher name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.searchers[name]; exists {
		return apperrors.ConfigError(fmt.Sprintf("searcher already registered: %s", name))
	}
	r.searchers[name] = s
	return nil
}

// Get retrieves a backend by name.
func (r *Registry) Get(name string) (Searcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.searchers[name]
	if !exists {
		return nil, apperrors.NotFoundError(fmt.Sprintf("searcher %q", name))
	}
	return s, nil
}

// Names returns all registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.searchers))
	for name := range r.searchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps configured names to backends. Any unknown name is a
// configuration error, surfaced before dispatch begins. An empty list
// resolves to all registered backends.
func (r *Registry) Resolve(names []string) ([]Searcher, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	searchers := make([]Searcher, 0, len(names))
	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			return nil, apperrors.ConfigError(fmt.Sprintf("unregistered searcher: %s", name))
		}
		searchers = append(searchers, s)
	}

	if len(searchers) == 0 {
		return nil, apperrors.ConfigError("no searchers registered")
	}
	return searchers, nil
}

// Package registry tracks the external resources a pipeline depends on
// (source relations, model references) so the surrounding orchestration
// can sequence execution. Declarations are idempotent: re-declaring an
// already-known resource is a no-op.
package registry

import (
	"sort"
	"strings"
	"sync"
)

type Registry struct {
	mu       sync.Mutex
	declared map[string]struct{}
}

func New() *Registry {
	return &Registry{declared: make(map[string]struct{})}
}

// Declare records the dependency and reports whether it was newly added.
// Blank names are ignored.
func (r *Registry) Declare(name string) bool {
	if r == nil {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.declared[name]; ok {
		return false
	}
	r.declared[name] = struct{}{}
	return true
}

// Declared returns all declared dependency names in sorted order.
func (r *Registry) Declared() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.declared))
	for name := range r.declared {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

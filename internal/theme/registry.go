package theme

import "sync"

// Registry is an in-memory store of generated themes keyed by ID. Themes are
// session-scoped: they live until deleted or until the process exits, and
// are never persisted. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]*Theme
	order  []string
}

// NewRegistry creates an empty theme registry.
func NewRegistry() *Registry {
	return &Registry{
		themes: make(map[string]*Theme),
	}
}

// Put stores a theme. A theme with a known ID replaces the stored value and
// keeps its position in creation order.
func (r *Registry) Put(t *Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.themes[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.themes[t.ID] = t
}

// Get returns the theme with the given ID.
func (r *Registry) Get(id string) (*Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.themes[id]
	return t, ok
}

// List returns all themes in creation order.
func (r *Registry) List() []*Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Theme, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.themes[id])
	}
	return out
}

// Delete removes the theme with the given ID and reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.themes[id]; !ok {
		return false
	}
	delete(r.themes, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored themes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.themes)
}

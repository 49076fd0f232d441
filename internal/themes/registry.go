package themes

import (
	"sort"
	"strings"
	"sync"
)

// Registry stores loaded themes keyed by canonical name.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Theme
}

// NewRegistry constructs an empty theme registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Theme),
	}
}

// Register adds a theme, overriding an existing entry with the same name.
func (r *Registry) Register(theme *Theme) error {
	if theme == nil {
		return ErrThemeNameRequired
	}
	key := canonicalKey(theme.Name)
	if key == "" {
		return ErrThemeNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[key] = cloneTheme(theme)
	return nil
}

// Get returns the theme registered under name.
func (r *Registry) Get(name string) (*Theme, error) {
	key := canonicalKey(name)
	if key == "" {
		return nil, ErrThemeNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	theme, ok := r.byName[key]
	if !ok {
		return nil, ErrThemeNotFound
	}
	return cloneTheme(theme), nil
}

// List returns all registered themes ordered by name.
func (r *Registry) List() []*Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Theme, 0, len(r.byName))
	for _, theme := range r.byName {
		out = append(out, cloneTheme(theme))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

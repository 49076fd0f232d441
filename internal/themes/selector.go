package themes

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ManifestLoader resolves a go-theme manifest from a theme filesystem.
type ManifestLoader interface {
	Load(fsys fs.FS) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(fsys fs.FS) (*gotheme.Manifest, error) {
	if fsys == nil {
		return nil, fmt.Errorf("themes: theme filesystem required")
	}
	return gotheme.LoadDir(fsys, ".")
}

type selector struct {
	registry       *gotheme.MemoryRegistry
	loader         ManifestLoader
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

func newSelector(defaultTheme, defaultVariant string, loader ManifestLoader) *selector {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	return &selector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

func (s *selector) Selection(theme *Theme, variant string) (*gotheme.Selection, error) {
	if theme == nil {
		return nil, nil
	}

	if _, err := s.ensureManifest(theme); err != nil {
		return nil, err
	}

	sel := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := sel.Select(theme.Name, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("themes: select theme %s: %w", theme.Name, err)
	}
	return selection, nil
}

func (s *selector) ensureManifest(theme *Theme) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := canonicalKey(theme.Name)
	if manifest, ok := s.manifests[key]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(theme.FS())
	if err != nil {
		return nil, fmt.Errorf("themes: load theme manifest for %s: %w", theme.Name, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, theme.Name) {
		normalized.Name = strings.TrimSpace(theme.Name)
	}
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = strings.TrimSpace(theme.Version)
	}
	if normalized.Name == "" {
		return nil, ErrThemeNameRequired
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("themes: register theme manifest: %w", err)
	}
	s.manifests[key] = &normalized
	return &normalized, nil
}

package themes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// Service exposes theme loading and selection for the build pipeline.
type Service interface {
	Register(ctx context.Context, dir string) (*Theme, error)
	RegisterFS(ctx context.Context, fsys fs.FS) (*Theme, error)
	Discover(ctx context.Context, root string) ([]*Theme, error)

	Get(ctx context.Context, name string) (*Theme, error)
	List(ctx context.Context) ([]*Theme, error)

	Activate(ctx context.Context, name string) (*Theme, error)
	Active(ctx context.Context) (*Theme, error)

	ResolveLayout(ctx context.Context, name string) (Layout, error)
	Selection(ctx context.Context, variant string) (*gotheme.Selection, error)
}

var (
	ErrFeatureDisabled = errors.New("themes: feature disabled")

	ErrThemeNameRequired    = errors.New("themes: name required")
	ErrThemeVersionRequired = errors.New("themes: version required")
	ErrThemePathRequired    = errors.New("themes: theme path required")
	ErrThemeExists          = errors.New("themes: theme already exists")
	ErrThemeNotFound        = errors.New("themes: theme not found")
	ErrThemeNotActive       = errors.New("themes: no active theme")

	ErrThemeMissingLayouts = errors.New("themes: activation requires at least one layout")
	ErrLayoutNameRequired  = errors.New("themes: layout name required")
	ErrLayoutUnknown       = errors.New("themes: layout unknown")
	ErrManifestInvalid     = errors.New("themes: manifest invalid")
)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithRegistry overrides the backing registry (primarily for tests).
func WithRegistry(registry *Registry) ServiceOption {
	return func(s *service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithManifestLoader overrides the go-theme manifest loader.
func WithManifestLoader(loader ManifestLoader) ServiceOption {
	return func(s *service) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// WithDefaultTheme sets the fallback theme name used by selection.
func WithDefaultTheme(name string) ServiceOption {
	return func(s *service) {
		s.defaultTheme = strings.TrimSpace(name)
	}
}

// WithDefaultVariant sets the fallback variant used by selection.
func WithDefaultVariant(variant string) ServiceOption {
	return func(s *service) {
		s.defaultVariant = strings.TrimSpace(variant)
	}
}

type service struct {
	registry       *Registry
	loader         ManifestLoader
	selector       *selector
	defaultTheme   string
	defaultVariant string

	mu     sync.RWMutex
	active string
}

// NewService constructs a theme service instance.
func NewService(opts ...ServiceOption) Service {
	s := &service{
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.selector = newSelector(s.defaultTheme, s.defaultVariant, s.loader)
	return s
}

func (s *service) Register(ctx context.Context, dir string) (*Theme, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrThemePathRequired
	}
	cleaned := filepath.Clean(strings.TrimSpace(dir))
	return s.register(ctx, os.DirFS(cleaned), cleaned)
}

func (s *service) RegisterFS(ctx context.Context, fsys fs.FS) (*Theme, error) {
	return s.register(ctx, fsys, "")
}

func (s *service) register(_ context.Context, fsys fs.FS, dir string) (*Theme, error) {
	if fsys == nil {
		return nil, ErrThemePathRequired
	}

	manifest, err := LoadManifest(fsys)
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.registry.Get(manifest.Name); err == nil && existing != nil {
		return nil, ErrThemeExists
	} else if err != nil && !errors.Is(err, ErrThemeNotFound) {
		return nil, err
	}

	record := &Theme{
		Name:        strings.TrimSpace(manifest.Name),
		Description: cloneString(manifest.Description),
		Version:     strings.TrimSpace(manifest.Version),
		Author:      cloneString(manifest.Author),
		Path:        dir,
		Layouts:     cloneStringMap(manifest.Layouts),
		Assets:      manifest.Assets.List(),
		Metadata:    deepCloneMap(manifest.Metadata),
		fsys:        fsys,
	}

	if err := s.registry.Register(record); err != nil {
		return nil, err
	}
	return cloneTheme(record), nil
}

func (s *service) Discover(ctx context.Context, root string) ([]*Theme, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrThemePathRequired
	}
	cleaned := filepath.Clean(strings.TrimSpace(root))

	entries, err := os.ReadDir(cleaned)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("themes: read theme root: %w", err)
	}

	var discovered []*Theme
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(cleaned, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
			continue
		}
		theme, err := s.Register(ctx, dir)
		if err != nil {
			if errors.Is(err, ErrThemeExists) {
				continue
			}
			return nil, fmt.Errorf("themes: load %s: %w", entry.Name(), err)
		}
		discovered = append(discovered, theme)
	}

	sort.Slice(discovered, func(i, j int) bool {
		return strings.ToLower(discovered[i].Name) < strings.ToLower(discovered[j].Name)
	})
	return discovered, nil
}

func (s *service) Get(_ context.Context, name string) (*Theme, error) {
	return s.registry.Get(name)
}

func (s *service) List(_ context.Context) ([]*Theme, error) {
	return s.registry.List(), nil
}

func (s *service) Activate(_ context.Context, name string) (*Theme, error) {
	theme, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if err := validateLayouts(theme); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active = canonicalKey(theme.Name)
	s.mu.Unlock()

	return theme, nil
}

func (s *service) Active(_ context.Context) (*Theme, error) {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()

	if active == "" {
		return nil, ErrThemeNotActive
	}
	return s.registry.Get(active)
}

func (s *service) ResolveLayout(ctx context.Context, name string) (Layout, error) {
	theme, err := s.Active(ctx)
	if err != nil {
		return Layout{}, err
	}
	return theme.Layout(name)
}

func (s *service) Selection(ctx context.Context, variant string) (*gotheme.Selection, error) {
	theme, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	return s.selector.Selection(theme, variant)
}

func validateLayouts(theme *Theme) error {
	if len(theme.Layouts) == 0 {
		matches, err := fs.Glob(theme.FS(), "layouts/*.html")
		if err != nil || len(matches) == 0 {
			return ErrThemeMissingLayouts
		}
		return nil
	}
	for name, file := range theme.Layouts {
		if _, err := fs.Stat(theme.FS(), path.Clean(file)); err != nil {
			return fmt.Errorf("%w: layout %s file %s", ErrManifestInvalid, name, file)
		}
	}
	return nil
}

package themes

import (
	"context"
	"errors"
	"strings"
)

// BootstrapOptions control theme discovery at startup.
type BootstrapOptions struct {
	// Root is the directory scanned for theme bundles. Optional.
	Root string
	// Active names the theme to activate. Empty picks the embedded
	// default when registered, otherwise the first discovered theme.
	Active string
	// Fallback registers the embedded theme when discovery yields
	// nothing.
	Fallback bool
}

// Bootstrap loads themes from disk and activates one, tolerating themes
// that were already registered by the host.
func Bootstrap(ctx context.Context, svc Service, opts BootstrapOptions) (*Theme, error) {
	if strings.TrimSpace(opts.Root) != "" {
		if _, err := svc.Discover(ctx, opts.Root); err != nil {
			return nil, err
		}
	}

	registered, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(registered) == 0 && opts.Fallback {
		theme, err := svc.RegisterFS(ctx, DefaultThemeFS())
		if err != nil && !errors.Is(err, ErrThemeExists) {
			return nil, err
		}
		if theme != nil {
			registered = append(registered, theme)
		}
	}

	active := strings.TrimSpace(opts.Active)
	if active == "" {
		active = pickDefault(registered)
	}
	if active == "" {
		return nil, ErrThemeNotFound
	}
	return svc.Activate(ctx, active)
}

func pickDefault(themes []*Theme) string {
	for _, theme := range themes {
		if canonicalKey(theme.Name) == DefaultThemeName {
			return theme.Name
		}
	}
	if len(themes) > 0 {
		return themes[0].Name
	}
	return ""
}

package themes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// ThemeAssetResolver reads static assets from a theme's backing
// filesystem. It satisfies the generator's AssetResolver contract.
type ThemeAssetResolver struct{}

// NewThemeAssetResolver constructs a resolver for theme-relative assets.
func NewThemeAssetResolver() ThemeAssetResolver {
	return ThemeAssetResolver{}
}

// Open returns a reader for the requested asset inside the theme.
func (ThemeAssetResolver) Open(_ context.Context, theme *Theme, asset string) (io.ReadCloser, error) {
	if theme == nil || theme.FS() == nil {
		return nil, fmt.Errorf("themes: theme required")
	}
	clean, err := cleanAssetPath(asset)
	if err != nil {
		return nil, err
	}
	file, err := theme.FS().Open(clean)
	if err != nil {
		return nil, fmt.Errorf("themes: open asset %s: %w", asset, err)
	}
	reader, ok := file.(io.ReadCloser)
	if !ok {
		return nil, fmt.Errorf("themes: asset %s is not readable", asset)
	}
	return reader, nil
}

// ResolvePath returns the output path an asset is published under.
func (ThemeAssetResolver) ResolvePath(_ *Theme, asset string) (string, error) {
	return cleanAssetPath(asset)
}

// ListAssets enumerates the assets a theme ships: the manifest list when
// present, otherwise every file under the assets directory.
func ListAssets(theme *Theme) ([]string, error) {
	if theme == nil || theme.FS() == nil {
		return nil, fmt.Errorf("themes: theme required")
	}
	if len(theme.Assets) > 0 {
		out := make([]string, 0, len(theme.Assets))
		for _, asset := range theme.Assets {
			clean, err := cleanAssetPath(asset)
			if err != nil {
				return nil, err
			}
			out = append(out, clean)
		}
		return out, nil
	}

	var out []string
	err := fs.WalkDir(theme.FS(), "assets", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("themes: walk assets: %w", err)
	}
	return out, nil
}

func cleanAssetPath(asset string) (string, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return "", fmt.Errorf("themes: asset path required")
	}
	clean := path.Clean(strings.TrimPrefix(filepath.ToSlash(asset), "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("themes: asset traversal detected")
	}
	return clean, nil
}

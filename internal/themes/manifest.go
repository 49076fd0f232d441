package themes

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
)

// ManifestFile is the descriptor every theme directory carries.
const ManifestFile = "theme.json"

// Manifest mirrors the expected theme.json structure. The assets block
// matches the go-theme manifest shape so the same file feeds both loaders.
type Manifest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Version     string            `json:"version"`
	Author      *string           `json:"author,omitempty"`
	Layouts     map[string]string `json:"layouts,omitempty"`
	Assets      ManifestAssets    `json:"assets,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// ManifestAssets names the static files a theme ships, keyed by role
// (css, logo), with an optional public prefix.
type ManifestAssets struct {
	Prefix string            `json:"prefix,omitempty"`
	Files  map[string]string `json:"files,omitempty"`
}

// List returns the declared asset paths in stable order.
func (a ManifestAssets) List() []string {
	if len(a.Files) == 0 {
		return nil
	}
	out := make([]string, 0, len(a.Files))
	for _, file := range a.Files {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}

// LoadManifest reads and parses theme.json from a theme filesystem.
func LoadManifest(fsys fs.FS) (*Manifest, error) {
	if fsys == nil {
		return nil, fmt.Errorf("themes: theme filesystem required")
	}
	file, err := fsys.Open(ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

// ParseManifest decodes manifest JSON from a reader.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return &manifest, nil
}

// Validate reports manifest problems that would break layout resolution.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("themes: manifest required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrThemeNameRequired
	}
	if strings.TrimSpace(m.Version) == "" {
		return ErrThemeVersionRequired
	}
	for name, file := range m.Layouts {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: layout key cannot be empty", ErrManifestInvalid)
		}
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%w: layout %s missing file", ErrManifestInvalid, name)
		}
	}
	for key, file := range m.Assets.Files {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: asset key cannot be empty", ErrManifestInvalid)
		}
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%w: asset %s missing file", ErrManifestInvalid, key)
		}
	}
	return nil
}

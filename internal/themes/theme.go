package themes

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Theme is a loaded theme bundle: the parsed manifest plus the
// filesystem its layouts and assets are read from.
type Theme struct {
	Name        string
	Description *string
	Version     string
	Author      *string
	// Path is the directory the theme was loaded from. Embedded themes
	// leave it empty.
	Path     string
	Layouts  map[string]string
	Assets   []string
	Metadata map[string]any

	fsys fs.FS
}

// Layout identifies a renderable template inside a theme.
type Layout struct {
	// Name is the manifest key, e.g. "post".
	Name string
	// File is the template path inside the theme, e.g. "layouts/post.html".
	File string
}

// Template returns the name the renderer resolves the layout under.
func (l Layout) Template() string {
	return path.Base(l.File)
}

// FS exposes the theme's backing filesystem.
func (t *Theme) FS() fs.FS {
	return t.fsys
}

// Layout resolves a layout name against the manifest entries, falling
// back to a layouts/<name>.html file when the manifest does not map it.
func (t *Theme) Layout(name string) (Layout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Layout{}, ErrLayoutNameRequired
	}
	if file, ok := t.Layouts[name]; ok {
		return Layout{Name: name, File: file}, nil
	}
	if t.fsys != nil {
		candidate := path.Join("layouts", name+".html")
		if _, err := fs.Stat(t.fsys, candidate); err == nil {
			return Layout{Name: name, File: candidate}, nil
		}
	}
	return Layout{}, fmt.Errorf("%w: %s", ErrLayoutUnknown, name)
}

func cloneTheme(theme *Theme) *Theme {
	if theme == nil {
		return nil
	}
	cloned := *theme
	cloned.Description = cloneString(theme.Description)
	cloned.Author = cloneString(theme.Author)
	cloned.Layouts = cloneStringMap(theme.Layouts)
	cloned.Assets = cloneStrings(theme.Assets)
	cloned.Metadata = deepCloneMap(theme.Metadata)
	return &cloned
}

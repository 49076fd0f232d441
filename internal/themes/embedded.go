package themes

import (
	"embed"
	"io/fs"
)

//go:embed all:defaulttheme
var embeddedThemes embed.FS

// DefaultThemeName is the built-in theme registered when no theme
// directory is configured.
const DefaultThemeName = "plain"

// DefaultThemeFS returns the bundled fallback theme.
func DefaultThemeFS() fs.FS {
	sub, err := fs.Sub(embeddedThemes, "defaulttheme")
	if err != nil {
		panic(err)
	}
	return sub
}

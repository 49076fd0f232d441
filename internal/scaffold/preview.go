package scaffold

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// Preview renders the Markdown file at path for terminal display.
func Preview(path string, width int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("scaffold: read %s: %w", path, err)
	}
	return PreviewContent(data, width)
}

// PreviewContent renders Markdown bytes for terminal display.
func PreviewContent(content []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("scaffold: build preview renderer: %w", err)
	}
	out, err := renderer.RenderBytes(content)
	if err != nil {
		return "", fmt.Errorf("scaffold: render preview: %w", err)
	}
	return string(out), nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	"github.com/goliatone/go-press/internal/scaffold"
)

func main() {
	if err := runNew(os.Args[1:]); err != nil {
		log.Fatalf("press new: %v", err)
	}
}

func runNew(args []string) error {
	bootstrap.LoadEnv()

	fs := flag.NewFlagSet("press-new", flag.ExitOnError)
	title := fs.String("title", "", "Post title (required)")
	slug := fs.String("slug", "", "Slug override (defaults to a slugified title)")
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	section := fs.String("section", "posts", "Section the new post is created under")
	author := fs.String("author", bootstrap.EnvOr("PRESS_AUTHOR", ""), "Author recorded in the front matter")
	layout := fs.String("layout", "post", "Layout recorded in the front matter")
	tags := fs.String("tags", "", "Comma separated list of tags")
	format := fs.String("format", "yaml", "Front matter format: yaml or toml")
	preview := fs.Bool("preview", false, "Render the scaffolded file to the terminal")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmFormat, err := parseFormat(*format)
	if err != nil {
		return err
	}

	service := scaffold.New(scaffold.Config{
		ContentDir: *contentDir,
		Section:    *section,
		Format:     fmFormat,
	})
	result, err := service.Create(context.Background(), scaffold.NewPostRequest{
		Title:  *title,
		Slug:   *slug,
		Author: *author,
		Layout: *layout,
		Tags:   bootstrap.SplitList(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "created %s (slug %s)\n", result.Path, result.Slug)

	if *preview {
		rendered, err := scaffold.PreviewContent(result.Content, 80)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		fmt.Fprintln(os.Stdout, rendered)
	}

	return nil
}

func parseFormat(value string) (scaffold.Format, error) {
	switch value {
	case "", "yaml":
		return scaffold.FormatYAML, nil
	case "toml":
		return scaffold.FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown front matter format %q", value)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	markdowncmd "github.com/goliatone/go-press/internal/commands/markdown"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runSync(os.Args[1:]); err != nil {
		log.Fatalf("press sync: %v", err)
	}
}

func runSync(args []string) error {
	bootstrap.LoadEnv()

	fs := flag.NewFlagSet("press-sync", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	directory := fs.String("directory", ".", "Directory to sync, relative to the content root")
	section := fs.String("section", "", "Section override applied to every synced file")
	defaultLayout := fs.String("default-layout", "", "Layout applied when front matter does not name one")
	defaultAuthor := fs.String("default-author", bootstrap.EnvOr("PRESS_AUTHOR", ""), "Author applied when front matter does not name one")
	archiveOrphaned := fs.Bool("archive-orphaned", false, "Archive stored posts whose markdown file disappeared")
	update := fs.Bool("update", true, "Update stored posts when the markdown file changed")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting content")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:     *contentDir,
		Pattern:        *pattern,
		EnableMarkdown: true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module.Markdown == nil {
		return fmt.Errorf("markdown service not configured; check that %s exists", *contentDir)
	}

	handler := markdowncmd.NewSyncDirectoryHandler(module.Markdown, module.Logger, markdowncmd.FeatureGates{
		MarkdownEnabled: func() bool { return true },
	})
	cmd := markdowncmd.SyncDirectoryCommand{
		Directory:       *directory,
		Section:         *section,
		DefaultLayout:   *defaultLayout,
		DefaultAuthor:   *defaultAuthor,
		DryRun:          *dryRun,
		ArchiveOrphaned: *archiveOrphaned,
		UpdateExisting:  *update,
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute sync command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "content sync command executed successfully")

	return nil
}

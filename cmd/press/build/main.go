package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	staticcmd "github.com/goliatone/go-press/internal/commands/static"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("press build: %v", err)
	}
}

func runBuild(args []string) error {
	bootstrap.LoadEnv()

	fs := flag.NewFlagSet("press-build", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	outputDir := fs.String("output-dir", "dist", "Directory the generated site is written to")
	staticDir := fs.String("static-dir", "static", "Directory of static assets copied into the output")
	baseURL := fs.String("base-url", bootstrap.EnvOr("PRESS_BASE_URL", ""), "Absolute site URL used for permalinks, sitemap and feeds")
	title := fs.String("title", bootstrap.EnvOr("PRESS_TITLE", ""), "Site title")
	author := fs.String("author", bootstrap.EnvOr("PRESS_AUTHOR", ""), "Default site author")
	themeDir := fs.String("theme-dir", "themes", "Directory themes are discovered under")
	theme := fs.String("theme", "", "Theme name (defaults to the embedded theme)")
	drafts := fs.Bool("drafts", false, "Include draft posts in the build")
	future := fs.Bool("future", false, "Include posts dated in the future")
	skipLint := fs.Bool("skip-lint", false, "Skip the content lint gate before building")
	dryRun := fs.Bool("dry-run", false, "Plan the build without writing any files")
	sections := fs.String("sections", "", "Comma separated list of sections to build (defaults to all)")
	workers := fs.Int("workers", 0, "Number of concurrent render workers (0 uses the default)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:      *contentDir,
		OutputDir:       *outputDir,
		StaticDir:       *staticDir,
		BaseURL:         *baseURL,
		Title:           *title,
		Author:          *author,
		ThemeDir:        *themeDir,
		Theme:           *theme,
		IncludeDrafts:   *drafts,
		IncludeFuture:   *future,
		Workers:         *workers,
		EnableMarkdown:  true,
		EnableGenerator: true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module.Markdown == nil {
		return fmt.Errorf("markdown service not configured; check that %s exists", *contentDir)
	}

	ctx := context.Background()

	synced, err := module.Markdown.Sync(ctx, ".", interfaces.SyncOptions{UpdateExisting: true})
	if err != nil {
		return fmt.Errorf("sync content: %w", err)
	}
	fmt.Fprintf(os.Stdout, "content synced: %d created, %d updated, %d skipped\n",
		synced.Created, synced.Updated, synced.Skipped)

	handler := staticcmd.NewBuildSiteHandler(module.Generator, module.Logger, staticcmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
	})
	cmd := staticcmd.BuildSiteCommand{
		Sections:      bootstrap.SplitList(*sections),
		IncludeDrafts: *drafts,
		IncludeFuture: *future,
		SkipLint:      *skipLint,
		DryRun:        *dryRun,
		ResultCallback: func(env staticcmd.ResultEnvelope) {
			if env.Result == nil {
				return
			}
			fmt.Fprintf(os.Stdout, "site built: %d pages, %d assets in %s\n",
				env.Result.PagesBuilt, env.Result.AssetsBuilt, env.Result.Duration)
			for _, finding := range env.Result.LintFindings {
				fmt.Fprintf(os.Stdout, "  lint %s: %s: %s\n", finding.Severity, finding.Path, finding.Message)
			}
		},
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute build command: %w", err)
	}

	return nil
}

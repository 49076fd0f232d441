package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/server"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runServe(os.Args[1:]); err != nil {
		log.Fatalf("press serve: %v", err)
	}
}

func runServe(args []string) error {
	bootstrap.LoadEnv()

	fs := flag.NewFlagSet("press-serve", flag.ExitOnError)
	addr := fs.String("addr", bootstrap.EnvOr("PRESS_ADDR", ":8080"), "Address the preview server listens on")
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	outputDir := fs.String("output-dir", "dist", "Directory the generated site is served from")
	staticDir := fs.String("static-dir", "static", "Directory of static assets copied into the output")
	baseURL := fs.String("base-url", bootstrap.EnvOr("PRESS_BASE_URL", ""), "Absolute site URL used for permalinks, sitemap and feeds")
	title := fs.String("title", bootstrap.EnvOr("PRESS_TITLE", ""), "Site title")
	drafts := fs.Bool("drafts", true, "Include draft posts in the preview")
	future := fs.Bool("future", true, "Include posts dated in the future")
	watch := fs.Bool("watch", true, "Rebuild when content files change")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:      *contentDir,
		OutputDir:       *outputDir,
		StaticDir:       *staticDir,
		BaseURL:         *baseURL,
		Title:           *title,
		IncludeDrafts:   *drafts,
		IncludeFuture:   *future,
		EnableMarkdown:  true,
		EnableGenerator: true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module.Markdown == nil {
		return fmt.Errorf("markdown service not configured; check that %s exists", *contentDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := module.Markdown.Sync(ctx, ".", interfaces.SyncOptions{UpdateExisting: true}); err != nil {
		return fmt.Errorf("sync content: %w", err)
	}
	if _, err := module.Generator.Build(ctx, generator.BuildOptions{
		IncludeDrafts: *drafts,
		IncludeFuture: *future,
	}); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	srv, err := server.New(server.Config{
		Addr:      *addr,
		OutputDir: *outputDir,
		Watch:     *watch,
		WatchDirs: []string{*contentDir},
	}, server.Dependencies{
		Posts:   module.Posts,
		Builder: module.Generator,
		Logger:  module.Logger,
	})
	if err != nil {
		return fmt.Errorf("configure server: %w", err)
	}

	return srv.Run(ctx)
}

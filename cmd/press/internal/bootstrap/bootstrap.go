// Package bootstrap shares configuration plumbing between the press CLI
// tools: it loads .env overrides, maps flags onto the runtime config, and
// constructs the module.
package bootstrap

import (
	"fmt"
	"os"
	"strings"

	press "github.com/goliatone/go-press"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/joho/godotenv"
)

// Options captures the tunable configuration shared across press CLI tools.
type Options struct {
	ContentDir string
	Pattern    string
	OutputDir  string
	StaticDir  string

	BaseURL string
	Title   string
	Author  string

	ThemeDir string
	Theme    string

	IncludeDrafts bool
	IncludeFuture bool
	Workers       int

	EnableMarkdown  bool
	EnableGenerator bool
	DisableLint     bool
	FailOnWarnings  bool

	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the press runtime plus the services the CLI tools drive.
// Tests replace individual services with stubs.
type Module struct {
	Press *press.Module

	Markdown  interfaces.MarkdownService
	Generator generator.Service
	Linter    generator.ContentLinter
	Posts     interfaces.PostService
	Logger    interfaces.Logger
}

// LoadEnv loads a .env file when one exists so flags can default from it.
// A missing file is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// EnvOr returns the environment value for key, or fallback when unset.
func EnvOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// BuildConfig maps CLI options onto the default runtime configuration.
func BuildConfig(opts Options) press.Config {
	cfg := press.DefaultConfig()

	if title := strings.TrimSpace(opts.Title); title != "" {
		cfg.Site.Title = title
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.Site.BaseURL = base
	}
	if author := strings.TrimSpace(opts.Author); author != "" {
		cfg.Site.Author = author
	}

	if opts.EnableMarkdown {
		cfg.Features.Markdown = true
		cfg.Markdown.Enabled = true
	}
	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Markdown.ContentDir = dir
	}
	if pattern := strings.TrimSpace(opts.Pattern); pattern != "" {
		cfg.Markdown.Pattern = pattern
	}

	if opts.EnableGenerator {
		cfg.Generator.Enabled = true
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		cfg.Generator.StaticDir = dir
	}
	cfg.Generator.IncludeDrafts = opts.IncludeDrafts
	cfg.Generator.IncludeFuture = opts.IncludeFuture
	if opts.Workers > 0 {
		cfg.Generator.Workers = opts.Workers
	}

	// Sitemap and feeds need an absolute base URL; fall back to local-only
	// output when none was supplied.
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		cfg.Generator.GenerateSitemap = false
		cfg.Generator.GenerateFeeds = false
	}

	if opts.DisableLint {
		cfg.Lint.Enabled = false
	}
	cfg.Lint.FailOnWarnings = opts.FailOnWarnings

	cfg.Features.Themes = true
	if dir := strings.TrimSpace(opts.ThemeDir); dir != "" {
		cfg.Themes.BasePath = dir
	}
	if name := strings.TrimSpace(opts.Theme); name != "" {
		cfg.Themes.DefaultTheme = name
	}

	return cfg
}

// BuildModule constructs a press module configured from CLI options.
func BuildModule(opts Options) (*Module, error) {
	cfg := BuildConfig(opts)

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := press.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise press module: %w", err)
	}

	return &Module{
		Press:     module,
		Markdown:  module.Markdown(),
		Generator: module.Generator(),
		Linter:    module.Linter(),
		Posts:     module.PostRecords(),
		Logger:    logging.ModuleLogger(module.Logger(), "press.cli"),
	}, nil
}

// SplitList parses a comma separated flag value into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

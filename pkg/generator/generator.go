// Package generator exposes the static site generation API for press hosts.
// Use NewService with Config and Dependencies to build prerendered pages,
// assets, sitemaps and feeds.
package generator

import (
	"io/fs"

	internal "github.com/goliatone/go-press/internal/generator"
)

type (
	Service          = internal.Service
	Config           = internal.Config
	SiteInfo         = internal.SiteInfo
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	RenderedPage     = internal.RenderedPage
	RenderDiagnostic = internal.RenderDiagnostic
	Dependencies     = internal.Dependencies
	ContentLinter    = internal.ContentLinter
	AssetSource      = internal.AssetSource
)

var (
	ErrServiceDisabled = internal.ErrServiceDisabled
	ErrLintFailed      = internal.ErrLintFailed
)

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}

// NewFSAssetSource adapts a filesystem into an asset source for static asset copies.
func NewFSAssetSource(fsys fs.FS) AssetSource {
	return internal.NewFSAssetSource(fsys)
}

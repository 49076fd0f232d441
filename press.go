// Package press is a Markdown-first publishing engine: it loads posts from
// front-mattered Markdown files, stores them through a pluggable repository,
// and renders a static site with themes, feeds and archives.
package press

import (
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/jobs"
	"github.com/goliatone/go-press/internal/lint"
	"github.com/goliatone/go-press/internal/permalinks"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// PostService exports the post service contract for consumers of the press package.
type PostService = posts.Service

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// ThemeService exports the themes service contract.
type ThemeService = themes.Service

// MarkdownService exports the markdown workflow contract.
type MarkdownService = interfaces.MarkdownService

// BuildOptions exports the generator build options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build report.
type BuildResult = generator.BuildResult

// Module is the top level publishing runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a press module using the provided configuration and optional
// DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the configured post service.
func (m *Module) Posts() PostService {
	return m.container.Posts()
}

// PostRecords returns the transport-neutral post contract consumed by the
// markdown importer, the generator and the preview server.
func (m *Module) PostRecords() interfaces.PostService {
	return m.container.PostService()
}

// Markdown returns the markdown service when the feature is enabled.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	return m.container.ThemeService()
}

// Lint returns the content lint service; nil when lint is disabled.
func (m *Module) Lint() *lint.Service {
	return m.container.LintService()
}

// Linter returns the content tree checker gating builds; nil when lint is
// disabled or no content directory exists.
func (m *Module) Linter() generator.ContentLinter {
	return m.container.ContentLinter()
}

// Permalinks returns the configured permalink resolver.
func (m *Module) Permalinks() *permalinks.Resolver {
	return m.container.PermalinkResolver()
}

// Scheduler returns the scheduler used for publish automation.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.container.Scheduler()
}

// PublishWorker returns the worker draining due publish and unpublish jobs;
// nil when scheduling is disabled.
func (m *Module) PublishWorker() *jobs.Worker {
	return m.container.PublishWorker()
}

// Activity returns the configured audit trail sink.
func (m *Module) Activity() activity.Notifier {
	return m.container.ActivityNotifier()
}

// Storage returns the configured artifact storage provider.
func (m *Module) Storage() interfaces.StorageProvider {
	return m.container.StorageProvider()
}

// Logger returns the configured logger provider; nil when logging is disabled.
func (m *Module) Logger() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}

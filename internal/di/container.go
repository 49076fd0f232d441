package di

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/adapters/noop"
	"github.com/goliatone/go-press/internal/adapters/storage"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/jobs"
	"github.com/goliatone/go-press/internal/lint"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/logging/console"
	"github.com/goliatone/go-press/internal/logging/gologger"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/permalinks"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/internal/scheduler"
	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
)

// Container wires the publishing engine: repositories, the post service,
// markdown ingestion, lint, themes, the permalink resolver and the static
// generator. Memory-backed defaults keep it usable without a database.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	storageProv    interfaces.StorageProvider
	template       interfaces.TemplateRenderer

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	clock    func() time.Time
	notifier activity.Notifier

	routeManager *urlkit.RouteManager
	resolver     *permalinks.Resolver

	postRepo posts.PostRepository

	postSvc      posts.Service
	postAPI      interfaces.PostService
	markdownSvc  interfaces.MarkdownService
	lintSvc      *lint.Service
	linter       generator.ContentLinter
	themeSvc     themes.Service
	activeTheme  *themes.Theme
	generatorSvc generator.Service
	schedulerSvc interfaces.Scheduler

	auditRecorder jobs.AuditRecorder
	publishWorker *jobs.Worker

	openDatabase bool
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithStorage overrides the default storage provider.
func WithStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.storageProv = sp
	}
}

// WithCache overrides the default cache service bindings.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithTemplate overrides the theme-derived template renderer.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = tr
	}
}

func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithDatabase opens the database described by Config.Storage during
// construction. It is a no-op when WithBunDB already supplied a pool.
func WithDatabase() Option {
	return func(c *Container) {
		c.openDatabase = true
	}
}

// WithClock overrides the time source used by services and the scheduler.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithActivityNotifier overrides the audit trail sink.
func WithActivityNotifier(notifier activity.Notifier) Option {
	return func(c *Container) {
		c.notifier = notifier
	}
}

// WithPostService overrides the default post service binding.
func WithPostService(svc posts.Service) Option {
	return func(c *Container) {
		c.postSvc = svc
	}
}

// WithMarkdownService overrides the default markdown service binding.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

// WithThemeService overrides the default theme service binding.
func WithThemeService(svc themes.Service) Option {
	return func(c *Container) {
		c.themeSvc = svc
	}
}

// WithScheduler overrides the default scheduler binding.
func WithScheduler(sched interfaces.Scheduler) Option {
	return func(c *Container) {
		c.schedulerSvc = sched
	}
}

// WithGeneratorService overrides the default static generator binding.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.generatorSvc = svc
	}
}

// WithAuditRecorder overrides the audit sink used by the publish worker.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(c *Container) {
		c.auditRecorder = recorder
	}
}

// NewContainer creates a container with the provided configuration. Defaults
// are memory-backed; options swap in real infrastructure.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
		clock:    time.Now,
		postRepo: posts.NewMemoryPostRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if c.openDatabase && c.bunDB == nil {
		db, err := OpenBunDB(cfg.Storage)
		if err != nil {
			return nil, err
		}
		c.bunDB = db
	}
	c.configureRepositories()
	c.configureRoutes()
	c.configureScheduler()
	c.configureActivity()
	c.configurePosts()
	c.configureJobs()
	if err := c.configureThemes(); err != nil {
		return nil, err
	}
	if err := c.configureLint(); err != nil {
		return nil, err
	}
	c.configureStorage()
	c.configureGenerator()
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logging provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	c.postRepo = posts.NewBunPostRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureRoutes() {
	routes := c.Config.Routes
	if routes.RouteConfig != nil {
		c.routeManager = urlkit.NewRouteManager(routes.RouteConfig)
	}

	c.resolver = permalinks.NewResolver(permalinks.ResolverOptions{
		Pattern: c.Config.Site.PermalinkPattern,
		Manager: c.routeManager,
		Group:   strings.TrimSpace(routes.DefaultGroup),
	})
}

func (c *Container) configureScheduler() {
	if c.schedulerSvc != nil {
		return
	}
	if !c.Config.Features.Scheduling {
		c.schedulerSvc = scheduler.NewNoOp()
		return
	}
	c.schedulerSvc = scheduler.NewInMemory(scheduler.WithClock(c.clock))
}

func (c *Container) configureActivity() {
	if c.notifier != nil {
		return
	}
	if !c.Config.Features.Activity {
		c.notifier = activity.NewNoOp()
		return
	}
	c.notifier = activity.NewRecorder()
}

func (c *Container) configurePosts() {
	if c.postSvc == nil {
		c.postSvc = posts.NewService(
			c.postRepo,
			posts.WithClock(c.clock),
			posts.WithScheduler(c.schedulerSvc),
			posts.WithSchedulingEnabled(c.Config.Features.Scheduling),
			posts.WithActivity(c.notifier),
			posts.WithActivityChannel(c.Config.Activity.Channel),
			posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
		)
	}
	c.postAPI = posts.NewServiceAdapter(c.postSvc)
}

func (c *Container) configureJobs() {
	if !c.Config.Features.Scheduling {
		return
	}
	if c.auditRecorder == nil {
		c.auditRecorder = jobs.NewInMemoryAuditRecorder()
	}
	c.publishWorker = jobs.NewWorker(
		c.schedulerSvc,
		c.postRepo,
		jobs.WithClock(c.clock),
		jobs.WithAuditRecorder(c.auditRecorder),
		jobs.WithActivity(c.notifier),
		jobs.WithActivityChannel(c.Config.Activity.Channel),
	)
}

func (c *Container) configureThemes() error {
	if c.themeSvc == nil {
		if !c.Config.Features.Themes {
			c.themeSvc = themes.NewNoOpService()
		} else {
			svcOpts := []themes.ServiceOption{}
			if name := strings.TrimSpace(c.Config.Themes.DefaultTheme); name != "" {
				svcOpts = append(svcOpts, themes.WithDefaultTheme(name))
			}
			c.themeSvc = themes.NewService(svcOpts...)
		}
	}

	if c.Config.Features.Themes {
		theme, err := themes.Bootstrap(context.Background(), c.themeSvc, themes.BootstrapOptions{
			Root:     c.Config.Themes.BasePath,
			Active:   c.Config.Themes.DefaultTheme,
			Fallback: true,
		})
		if err != nil {
			return fmt.Errorf("di: theme bootstrap: %w", err)
		}
		c.activeTheme = theme
	}

	if c.template == nil {
		if !c.Config.Features.Themes && !c.Config.Generator.Enabled {
			c.template = noop.Template()
			return nil
		}
		fsys := themes.DefaultThemeFS()
		if c.activeTheme != nil {
			fsys = c.activeTheme.FS()
		}
		c.template = themes.NewHTMLRenderer(fsys, themes.WithBaseURL(c.Config.Site.BaseURL))
	}
	return nil
}

func (c *Container) configureLint() error {
	if !c.Config.Lint.Enabled {
		return nil
	}

	lintCfg := lint.Config{
		KnownAuthors:     c.knownAuthors(),
		KnownLayouts:     c.knownLayouts(),
		MaxSummaryLength: c.Config.Lint.MaxSummaryLength,
		FailOnWarnings:   c.Config.Lint.FailOnWarnings,
	}

	if path := strings.TrimSpace(c.Config.Lint.SchemaPath); path != "" {
		schema, err := lint.LoadSchemaFile(path)
		if err != nil {
			return fmt.Errorf("di: lint schema: %w", err)
		}
		lintCfg.Schema = schema
	}

	svc, err := lint.NewService(lintCfg, lint.WithLogger(logging.LintLogger(c.loggerProvider)))
	if err != nil {
		return fmt.Errorf("di: lint service: %w", err)
	}
	c.lintSvc = svc

	contentDir := strings.TrimSpace(c.Config.Markdown.ContentDir)
	if contentDir == "" {
		return nil
	}
	if _, statErr := os.Stat(contentDir); statErr != nil {
		return nil
	}
	c.linter = lint.NewTreeChecker(svc, os.DirFS(contentDir), lint.TreeConfig{
		Pattern:        c.Config.Markdown.Pattern,
		DefaultSection: c.Config.Markdown.DefaultSection,
		Sections:       c.Config.Markdown.Sections,
	})
	return nil
}

func (c *Container) knownAuthors() []string {
	authors := make([]string, 0, len(c.Config.Site.Authors)+1)
	if author := strings.TrimSpace(c.Config.Site.Author); author != "" {
		authors = append(authors, author)
	}
	for _, entry := range c.Config.Site.Authors {
		if name := strings.TrimSpace(entry.Name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

func (c *Container) knownLayouts() []string {
	if c.activeTheme == nil {
		return nil
	}
	layouts := make([]string, 0, len(c.activeTheme.Layouts))
	for name := range c.activeTheme.Layouts {
		layouts = append(layouts, name)
	}
	return layouts
}

func (c *Container) configureStorage() {
	if c.storageProv != nil {
		return
	}
	if c.Config.Generator.Enabled {
		out := c.Config.Generator.OutputDir
		c.storageProv = storage.NewFilesystemProvider(out, out)
		return
	}
	c.storageProv = storage.NewNoOpProvider()
}

func (c *Container) configureGenerator() {
	if c.generatorSvc != nil {
		return
	}
	if !c.Config.Generator.Enabled {
		c.generatorSvc = generator.NewDisabledService()
		return
	}

	gen := c.Config.Generator
	deps := generator.Dependencies{
		Posts:    c.postAPI,
		Themes:   c.themeSvc,
		Renderer: c.template,
		Storage:  c.storageProv,
		Resolver: c.resolver,
		Lint:     c.linter,
		Activity: c.notifier,
		Logger:   logging.GeneratorLogger(c.loggerProvider),
	}

	if gen.CopyAssets {
		if dir := strings.TrimSpace(gen.StaticDir); dir != "" {
			if _, err := os.Stat(dir); err == nil {
				deps.Static = generator.NewFSAssetSource(os.DirFS(dir))
			}
		}
	}

	c.generatorSvc = generator.NewService(generator.Config{
		OutputDir: gen.OutputDir,
		StaticDir: gen.StaticDir,
		BaseURL:   c.Config.Site.BaseURL,
		Site: generator.SiteInfo{
			Title:       c.Config.Site.Title,
			Description: c.Config.Site.Description,
			Author:      c.Config.Site.Author,
			Language:    c.Config.Site.Language,
		},
		PageSize:        c.Config.Site.PageSize,
		CleanBuild:      gen.CleanBuild,
		Incremental:     gen.Incremental,
		CopyAssets:      gen.CopyAssets,
		GenerateSitemap: gen.GenerateSitemap,
		GenerateRobots:  gen.GenerateRobots,
		GenerateFeeds:   gen.GenerateFeeds,
		TagFeeds:        gen.TagFeeds,
		FeedLimit:       gen.FeedLimit,
		IncludeDrafts:   gen.IncludeDrafts,
		IncludeFuture:   gen.IncludeFuture,
		Workers:         gen.Workers,
		ActivityChannel: c.Config.Activity.Channel,
	}, deps)
}

func (c *Container) configureMarkdown() error {
	if c.markdownSvc != nil || !c.Config.Markdown.Enabled {
		return nil
	}

	md := c.Config.Markdown
	svc, err := markdown.NewService(markdown.Config{
		BasePath:        md.ContentDir,
		DefaultSection:  md.DefaultSection,
		Sections:        md.Sections,
		SectionPatterns: md.SectionPatterns,
		Pattern:         md.Pattern,
		Recursive:       md.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: md.Parser.Extensions,
			Sanitize:   md.Parser.Sanitize,
			HardWraps:  md.Parser.HardWraps,
			SafeMode:   md.Parser.SafeMode,
		},
		DefaultLayout: c.defaultLayout(),
		DefaultAuthor: c.Config.Site.Author,
	}, nil,
		markdown.WithPostService(c.postAPI),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	if err != nil {
		return fmt.Errorf("di: markdown service: %w", err)
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) defaultLayout() string {
	if c.activeTheme != nil {
		if _, ok := c.activeTheme.Layouts["post"]; ok {
			return "post"
		}
		for name := range c.activeTheme.Layouts {
			return name
		}
	}
	return "post"
}

// LoggerProvider exposes the configured logger provider; nil when logging is
// disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// StorageProvider exposes the configured artifact storage implementation.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	return c.storageProv
}

// TemplateRenderer exposes the configured template renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.template
}

// PostRepository exposes the configured post repository.
func (c *Container) PostRepository() posts.PostRepository {
	return c.postRepo
}

// Posts returns the domain post service.
func (c *Container) Posts() posts.Service {
	return c.postSvc
}

// PostService returns the transport-neutral post service consumed by the
// markdown importer, the generator and the preview server.
func (c *Container) PostService() interfaces.PostService {
	return c.postAPI
}

// MarkdownService returns the configured markdown service; nil when the
// markdown feature is disabled.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownSvc
}

// LintService returns the configured lint service; nil when lint is disabled.
func (c *Container) LintService() *lint.Service {
	return c.lintSvc
}

// ContentLinter returns the tree checker that gates builds; nil when lint is
// disabled or the content directory is absent.
func (c *Container) ContentLinter() generator.ContentLinter {
	return c.linter
}

// ThemeService returns the configured theme service.
func (c *Container) ThemeService() themes.Service {
	return c.themeSvc
}

// ActiveTheme returns the theme activated during bootstrap; nil when the
// themes feature is disabled.
func (c *Container) ActiveTheme() *themes.Theme {
	return c.activeTheme
}

// PermalinkResolver returns the configured permalink resolver.
func (c *Container) PermalinkResolver() *permalinks.Resolver {
	return c.resolver
}

// GeneratorService returns the static site generator.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// Scheduler returns the configured scheduler.
func (c *Container) Scheduler() interfaces.Scheduler {
	return c.schedulerSvc
}

// ActivityNotifier returns the configured audit sink.
func (c *Container) ActivityNotifier() activity.Notifier {
	return c.notifier
}

// PublishWorker returns the scheduled publish worker; nil when scheduling
// is disabled.
func (c *Container) PublishWorker() *jobs.Worker {
	return c.publishWorker
}

// AuditRecorder returns the audit sink used by the publish worker; nil when
// scheduling is disabled.
func (c *Container) AuditRecorder() jobs.AuditRecorder {
	return c.auditRecorder
}

// Clock returns the configured time source.
func (c *Container) Clock() func() time.Time {
	return c.clock
}

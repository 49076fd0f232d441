package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-press/internal/lint"
	"github.com/goliatone/go-press/internal/permalinks"
	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrLintFailed indicates the lint gate blocked the build before any write.
	ErrLintFailed       = errors.New("generator: content lint failed")
	errRendererRequired = errors.New("generator: template renderer is required")
)

// Service describes the static site build contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// SiteInfo carries the site fields the generator snapshots per build.
type SiteInfo struct {
	Title       string
	Description string
	Author      string
	Language    string
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	StaticDir       string
	BaseURL         string
	Site            SiteInfo
	PageSize        int
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	TagFeeds        bool
	FeedLimit       int
	IncludeDrafts   bool
	IncludeFuture   bool
	Workers         int
	// ActivityChannel tags build events emitted on completion.
	ActivityChannel string
}

// BuildOptions narrows the scope of a single build run.
type BuildOptions struct {
	// Sections restricts the build to posts in the named sections.
	Sections []string
	// IncludeDrafts renders draft posts in addition to published ones.
	IncludeDrafts bool
	// IncludeFuture renders scheduled posts whose publish time is ahead.
	IncludeFuture bool
	// SkipLint bypasses the content lint gate.
	SkipLint bool
	DryRun   bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	Sections      []string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	LintFindings  []lint.Finding
	Errors        []error
	DryRun        bool
}

// ContentLinter gates builds on content validation. Implementations walk
// the content tree and report findings; error findings abort the build
// before anything is written.
type ContentLinter interface {
	CheckTree(ctx context.Context) (*lint.Report, error)
	FailOnWarnings() bool
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Posts    interfaces.PostService
	Themes   themes.Service
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.StorageProvider
	Resolver *permalinks.Resolver
	Lint     ContentLinter
	Static   AssetSource
	Activity activity.Notifier
	Logger   interfaces.Logger
}

// NewService wires a generator with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	resolver := deps.Resolver
	if resolver == nil {
		resolver = permalinks.NewResolver(permalinks.ResolverOptions{})
	}
	return &service{
		cfg:      cfg,
		deps:     deps,
		resolver: resolver,
		now:      time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg      Config
	deps     Dependencies
	resolver *permalinks.Resolver
	now      func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	start := time.Now()
	result := &BuildResult{DryRun: opts.DryRun}

	if s.deps.Lint != nil && !opts.SkipLint {
		report, err := s.deps.Lint.CheckTree(ctx)
		if err != nil {
			return nil, fmt.Errorf("generator: lint gate: %w", err)
		}
		result.LintFindings = report.Findings
		if report.Failed(s.deps.Lint.FailOnWarnings()) {
			result.Duration = time.Since(start)
			err := fmt.Errorf("%w: %d errors, %d warnings",
				ErrLintFailed, len(report.Errors()), len(report.Warnings()))
			result.Errors = append(result.Errors, err)
			return result, err
		}
	}

	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Sections = append([]string(nil), buildCtx.Sections...)

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(buildCtx.Jobs))
		errorsSlice []error
		baseDir     = strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	)
	result.Diagnostics = make([]RenderDiagnostic, 0, len(buildCtx.Jobs))

	// A clean build starts from an empty manifest so nothing skips.
	var manifest *buildManifest
	if !s.cfg.CleanBuild {
		loaded, manifestErr := s.loadManifest(ctx)
		if manifestErr != nil {
			errorsSlice = append(errorsSlice, manifestErr)
		}
		manifest = loaded
	}
	if manifest == nil {
		manifest = newBuildManifest()
	}

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	batches := groupJobs(buildCtx.Jobs)
	workerCount := s.effectiveWorkerCount(len(batches))
	if workerCount <= 1 || len(buildCtx.Jobs) <= 1 {
		for _, batch := range batches {
			for _, job := range batch {
				select {
				case <-ctx.Done():
					collect(cancelledOutcome(job, ctx.Err()))
					return result, ctx.Err()
				default:
					collect(s.renderJob(ctx, buildCtx, job, manifest, baseDir))
				}
			}
		}
	} else {
		if err := s.renderConcurrently(ctx, buildCtx, batches, workerCount, manifest, baseDir, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	writer := newArtifactWriter(s.deps.Storage)
	if s.cfg.CleanBuild && baseDir != "" {
		if err := writer.Remove(ctx, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if err := s.persistPages(ctx, writer, rendered, baseDir); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	assetSummary, err := s.copyAssets(ctx, writer, buildCtx, manifest, baseDir)
	if err != nil {
		errorsSlice = append(errorsSlice, err)
	} else {
		result.AssetsBuilt += assetSummary.Built
		result.AssetsSkipped += assetSummary.Skipped
	}

	sitemapPages := s.mergeRenderedForSitemap(buildCtx, rendered, manifest)

	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, writer, buildCtx, sitemapPages, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateFeeds {
		if err := s.writeFeeds(ctx, writer, buildCtx, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		keep := make(map[string]struct{}, len(buildCtx.Jobs))
		for _, job := range buildCtx.Jobs {
			keep[manifest.pageKey(job.Route)] = struct{}{}
		}
		manifest.prunePages(keep)
		for _, page := range rendered {
			if strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setPage(manifestPage{
				Route:        page.Route,
				Kind:         page.Kind,
				Output:       page.Output,
				Template:     page.Template,
				Hash:         page.Hash,
				Checksum:     page.Checksum,
				LastModified: page.LastModified,
				RenderedAt:   buildCtx.GeneratedAt,
			})
		}
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}

	if s.deps.Logger != nil {
		s.deps.Logger.Info("build complete",
			"pages", result.PagesBuilt,
			"skipped", result.PagesSkipped,
			"assets", result.AssetsBuilt,
			"duration", result.Duration.String(),
		)
	}
	s.emitBuildEvent(ctx, result)
	return result, nil
}

func (s *service) emitBuildEvent(ctx context.Context, result *BuildResult) {
	if s.deps.Activity == nil {
		return
	}
	event := activity.Event{
		Verb:           "build",
		ObjectType:     "site",
		Channel:        s.cfg.ActivityChannel,
		DefinitionCode: "site:build",
		OccurredAt:     s.now(),
		Metadata: map[string]any{
			"pages_built":   result.PagesBuilt,
			"pages_skipped": result.PagesSkipped,
			"assets_built":  result.AssetsBuilt,
			"duration_ms":   result.Duration.Milliseconds(),
		},
	}
	if err := s.deps.Activity.Notify(ctx, event); err != nil && s.deps.Logger != nil {
		s.deps.Logger.Warn("activity notify failed", "verb", "build", "error", err)
	}
}

// Clean removes the configured output directory.
func (s *service) Clean(ctx context.Context) error {
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	if baseDir == "" {
		return errors.New("generator: output directory required")
	}
	writer := newArtifactWriter(s.deps.Storage)
	return writer.Remove(ctx, baseDir)
}

func (s *service) renderConcurrently(
	ctx context.Context,
	buildCtx *BuildContext,
	batches [][]*pageJob,
	workers int,
	manifest *buildManifest,
	baseDir string,
	collect func(renderOutcome),
) error {
	if len(batches) == 0 {
		return nil
	}

	jobs := make(chan []*pageJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				for _, job := range batch {
					select {
					case <-ctx.Done():
						collect(cancelledOutcome(job, ctx.Err()))
						return
					default:
						collect(s.renderJob(ctx, buildCtx, job, manifest, baseDir))
					}
				}
			}
		}()
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- batch:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func cancelledOutcome(job *pageJob, err error) renderOutcome {
	return renderOutcome{
		diagnostic: RenderDiagnostic{
			Route:    job.Route,
			Kind:     job.Kind,
			Template: job.Template,
			Err:      err,
		},
		err: err,
	}
}

func (s *service) renderJob(
	ctx context.Context,
	buildCtx *BuildContext,
	job *pageJob,
	manifest *buildManifest,
	baseDir string,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Route:    job.Route,
			Kind:     job.Kind,
			Template: job.Template,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	expectedOutput := joinOutputPath(baseDir, buildOutputPath(job.Route))
	if s.cfg.Incremental && manifest != nil {
		if manifest.shouldSkipPage(job.Route, job.Hash, expectedOutput) {
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			return outcome
		}
	}

	templateCtx := TemplateContext{
		Site: buildCtx.Site,
		Page: job.Page,
		Build: BuildInfo{
			GeneratedAt: buildCtx.GeneratedAt,
			Incremental: s.cfg.Incremental,
			Options:     buildCtx.Options,
		},
		Theme:   buildThemeContext(buildCtx.Selection, "", nil),
		Helpers: newTemplateHelpers(buildCtx.Site.BaseURL, s.resolver),
	}

	start := time.Now()
	html, err := s.deps.Renderer.RenderTemplate(job.Template, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for route %s: %w", job.Template, job.Route, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		Route:        job.Route,
		Kind:         job.Kind,
		Template:     job.Template,
		HTML:         html,
		Hash:         job.Hash,
		LastModified: job.LastMod,
		Duration:     duration,
	}
	return outcome
}

func (s *service) persistPages(
	ctx context.Context,
	writer artifactWriter,
	pages []RenderedPage,
	baseDir string,
) error {
	if len(pages) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		destRel := buildOutputPath(pages[i].Route)
		fullPath := joinOutputPath(baseDir, destRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Output = fullPath
		pages[i].Checksum = checksum

		metadata := map[string]string{
			"route":    pages[i].Route,
			"kind":     pages[i].Kind,
			"template": pages[i].Template,
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata:    metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// mergeRenderedForSitemap combines this run's pages with manifest entries
// for routes that were skipped by the incremental check, so the sitemap
// still covers the whole site.
func (s *service) mergeRenderedForSitemap(
	buildCtx *BuildContext,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	renderedByKey := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByKey[manifest.pageKey(page.Route)] = page
	}

	out := make([]RenderedPage, 0, len(buildCtx.Jobs))
	for _, job := range buildCtx.Jobs {
		key := manifest.pageKey(job.Route)
		if page, ok := renderedByKey[key]; ok {
			out = append(out, page)
			continue
		}
		if entry, ok := manifest.lookupPage(job.Route); ok {
			out = append(out, RenderedPage{
				Route:        job.Route,
				Kind:         entry.Kind,
				Output:       entry.Output,
				Template:     entry.Template,
				Hash:         entry.Hash,
				Checksum:     entry.Checksum,
				LastModified: entry.LastModified,
			})
			continue
		}
		out = append(out, RenderedPage{
			Route:        job.Route,
			Kind:         job.Kind,
			Template:     job.Template,
			LastModified: job.LastMod,
		})
	}
	return out
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, storageOpRead, target)
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) manifestTargetPath() string {
	base := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	return joinOutputPath(base, manifestFileName)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	if manifest == nil {
		return nil
	}
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return nil
	}
	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, writer, dirCache, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	req := writeFileRequest{
		Path:        target,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	pages []RenderedPage,
	baseDir string,
) error {
	content := buildSitemap(buildCtx.Site.BaseURL, pages, buildCtx.GeneratedAt)
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter, baseDir string) error {
	content := buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap)
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": s.now().UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) effectiveWorkerCount(batchCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if batchCount > 0 && workers > batchCount {
		return batchCount
	}
	return workers
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}

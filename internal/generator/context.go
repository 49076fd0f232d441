package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-press/internal/permalinks"
	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	errPostsServiceRequired = errors.New("generator: posts service is required")
	errResolverRequired     = errors.New("generator: permalink resolver is required")
)

// BuildContext aggregates everything a build run renders: the post
// views, the listing pages derived from them, and the active theme.
type BuildContext struct {
	GeneratedAt time.Time
	Site        SiteMetadata
	Posts       []*PostView
	Jobs        []*pageJob
	Sections    []string
	Theme       *themes.Theme
	Selection   *gotheme.Selection
	Options     BuildOptions
}

// pageJob is one route scheduled for rendering.
type pageJob struct {
	Kind     string
	Route    string
	Layout   string
	Template string
	Page     PageContext
	Hash     string
	LastMod  time.Time
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Posts == nil {
		return nil, errPostsServiceRequired
	}
	if s.resolver == nil {
		return nil, errResolverRequired
	}

	records, err := s.deps.Posts.List(ctx, interfaces.PostListOptions{
		IncludeDrafts: opts.IncludeDrafts || s.cfg.IncludeDrafts,
		IncludeFuture: opts.IncludeFuture || s.cfg.IncludeFuture,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: list posts: %w", err)
	}

	records = filterSections(records, opts.Sections)

	theme, selection, err := s.activeTheme(ctx)
	if err != nil {
		return nil, err
	}

	buildCtx := &BuildContext{
		GeneratedAt: s.now(),
		Site:        s.siteMetadata(),
		Theme:       theme,
		Selection:   selection,
		Options:     opts,
	}

	views := make([]*PostView, 0, len(records))
	sources := make([]*interfaces.PostRecord, 0, len(records))
	seenSections := map[string]struct{}{}
	for _, record := range records {
		if record == nil {
			continue
		}
		view, err := s.postView(record)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
		sources = append(sources, record)
		if _, ok := seenSections[view.Section]; !ok {
			seenSections[view.Section] = struct{}{}
			buildCtx.Sections = append(buildCtx.Sections, view.Section)
		}
	}
	sort.Strings(buildCtx.Sections)
	buildCtx.Posts = views

	jobs := make([]*pageJob, 0, len(views)+8)
	for i, view := range views {
		job, err := s.postJob(theme, view, sources[i])
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	listings, err := s.listingJobs(theme, views, buildCtx.GeneratedAt)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, listings...)

	buildCtx.Jobs = jobs
	return buildCtx, nil
}

func (s *service) siteMetadata() SiteMetadata {
	return SiteMetadata{
		Title:       s.cfg.Site.Title,
		Description: s.cfg.Site.Description,
		BaseURL:     strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/"),
		Author:      s.cfg.Site.Author,
		Language:    s.cfg.Site.Language,
		Metadata:    map[string]any{},
	}
}

func (s *service) activeTheme(ctx context.Context) (*themes.Theme, *gotheme.Selection, error) {
	if s.deps.Themes == nil {
		return nil, nil, nil
	}
	theme, err := s.deps.Themes.Active(ctx)
	if err != nil {
		if errors.Is(err, themes.ErrFeatureDisabled) || errors.Is(err, themes.ErrThemeNotActive) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	selection, err := s.deps.Themes.Selection(ctx, "")
	if err != nil && !errors.Is(err, themes.ErrFeatureDisabled) {
		return nil, nil, err
	}
	return theme, selection, nil
}

// postView projects a stored record into the template-facing shape,
// resolving its route along the way. Unpublished posts borrow their
// update time for date-based routes so draft previews still resolve.
func (s *service) postView(record *interfaces.PostRecord) (*PostView, error) {
	routeTime := publishInstant(record)
	if routeTime == nil {
		updated := record.UpdatedAt
		routeTime = &updated
	}
	route, err := s.resolver.Resolve(permalinks.Input{
		Slug:      record.Slug,
		Section:   record.Section,
		Permalink: record.Permalink,
		PublishAt: routeTime,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: resolve route for %s: %w", record.Slug, err)
	}

	view := &PostView{
		ID:        record.ID,
		Slug:      record.Slug,
		Section:   record.Section,
		Layout:    record.Layout,
		Title:     record.Title,
		Author:    record.Author,
		Tags:      append([]string(nil), record.Tags...),
		Reviewers: append([]string(nil), record.Reviewers...),
		Route:     route,
		Content:   template.HTML(record.BodyHTML),
		UpdatedAt: record.UpdatedAt,
	}
	if record.Summary != nil {
		view.Summary = *record.Summary
	}
	if at := publishInstant(record); at != nil {
		view.PublishedAt = *at
	}
	return view, nil
}

func (s *service) postJob(theme *themes.Theme, view *PostView, record *interfaces.PostRecord) (*pageJob, error) {
	layout := strings.TrimSpace(view.Layout)
	if layout == "" {
		layout = KindPost
	}
	templateName, err := resolveLayoutTemplate(theme, layout)
	if err != nil {
		return nil, fmt.Errorf("generator: post %s: %w", view.Slug, err)
	}

	hash := hashSources(map[string]string{
		"post": joinParts(
			record.ID.String(),
			record.Slug,
			record.Status,
			record.Checksum,
			record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		),
		"route":    view.Route,
		"template": templateName,
		"theme":    themeStamp(theme),
	})

	return &pageJob{
		Kind:     KindPost,
		Route:    view.Route,
		Layout:   layout,
		Template: templateName,
		Page: PageContext{
			Kind:  KindPost,
			Title: view.Title,
			Route: view.Route,
			Post:  view,
		},
		Hash:    hash,
		LastMod: record.UpdatedAt,
	}, nil
}

// resolveLayoutTemplate maps a layout name to the template identifier the
// renderer resolves. Without a theme the layout name doubles as the
// template name.
func resolveLayoutTemplate(theme *themes.Theme, layout string) (string, error) {
	if theme == nil {
		return layout, nil
	}
	resolved, err := theme.Layout(layout)
	if err != nil {
		return "", err
	}
	return resolved.Template(), nil
}

func themeStamp(theme *themes.Theme) string {
	if theme == nil {
		return ""
	}
	return joinParts(theme.Name, theme.Version)
}

func publishInstant(record *interfaces.PostRecord) *time.Time {
	switch {
	case record.PublishAt != nil:
		return record.PublishAt
	case record.PublishedAt != nil:
		return record.PublishedAt
	default:
		return nil
	}
}

func filterSections(records []*interfaces.PostRecord, sections []string) []*interfaces.PostRecord {
	if len(sections) == 0 {
		return records
	}
	wanted := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		section = strings.ToLower(strings.TrimSpace(section))
		if section != "" {
			wanted[section] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return records
	}
	out := make([]*interfaces.PostRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if _, ok := wanted[strings.ToLower(record.Section)]; ok {
			out = append(out, record)
		}
	}
	return out
}

// groupJobs batches jobs for the worker pool: one batch per section for
// post pages plus one batch of listing pages.
func groupJobs(jobs []*pageJob) [][]*pageJob {
	bySection := map[string][]*pageJob{}
	var listings []*pageJob
	var order []string
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if job.Kind != KindPost {
			listings = append(listings, job)
			continue
		}
		section := job.Page.Post.Section
		if _, ok := bySection[section]; !ok {
			order = append(order, section)
		}
		bySection[section] = append(bySection[section], job)
	}
	sort.Strings(order)

	batches := make([][]*pageJob, 0, len(order)+1)
	for _, section := range order {
		batches = append(batches, bySection[section])
	}
	if len(listings) > 0 {
		batches = append(batches, listings)
	}
	return batches
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

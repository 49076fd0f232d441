package generator

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/permalinks"
)

// Page kinds produced by a build. Each kind renders through the theme
// layout of the same name unless the post names its own.
const (
	KindPost    = "post"
	KindIndex   = "index"
	KindTag     = "tag"
	KindArchive = "archive"
)

// TemplateContext captures the data contract passed to TemplateRenderer
// implementations. Theme layouts address it as .Site, .Page, .Build,
// .Theme and .Helpers.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageContext
	Build   BuildInfo
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteMetadata exposes site-wide information to templates.
type SiteMetadata struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
	Metadata    map[string]any
}

// BuildInfo surfaces high level build information to templates.
type BuildInfo struct {
	GeneratedAt time.Time
	Incremental bool
	Options     BuildOptions
}

// PageContext describes the page being rendered. Post pages set Post;
// listing pages set Posts plus the kind-specific fields.
type PageContext struct {
	Kind       string
	Title      string
	Route      string
	Tag        string
	Year       int
	Post       *PostView
	Posts      []*PostView
	Pagination *Pagination
}

// PostView is the template-facing projection of a stored post.
type PostView struct {
	ID          uuid.UUID
	Slug        string
	Section     string
	Layout      string
	Title       string
	Summary     string
	Author      string
	Tags        []string
	Reviewers   []string
	Route       string
	Content     template.HTML
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// Pagination carries listing page numbers plus the neighbouring routes.
// Prev and Next are empty on the first and last page respectively.
type Pagination struct {
	Page    int
	Pages   int
	PerPage int
	Total   int
	Prev    string
	Next    string
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

func buildThemeContext(selection *gotheme.Selection, cssPrefix string, partialFallbacks map[string]string) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
		Template: func(_ string, fallback string) string { return fallback },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(cssPrefix),
		Partials:  selection.Partials(partialFallbacks),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}

// TemplateHelpers exposes URL helpers for template authors.
type TemplateHelpers struct {
	baseURL  string
	resolver *permalinks.Resolver
}

func newTemplateHelpers(baseURL string, resolver *permalinks.Resolver) TemplateHelpers {
	return TemplateHelpers{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		resolver: resolver,
	}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// AbsURL prefixes a site-relative path with the base URL. Fully
// qualified URLs pass through untouched.
func (h TemplateHelpers) AbsURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.Contains(path, "://") {
		return path
	}
	return permalinks.Absolute(h.baseURL, path)
}

// TagURL returns the absolute listing URL for a tag.
func (h TemplateHelpers) TagURL(tag string) string {
	if h.resolver != nil {
		if route, err := h.resolver.TagURL(tag); err == nil {
			return h.AbsURL(route)
		}
	}
	slug := permalinks.Slugify(tag)
	if slug == "" {
		return h.baseURL
	}
	return h.AbsURL("/tags/" + slug + "/")
}

// YearURL returns the absolute listing URL for a yearly archive.
func (h TemplateHelpers) YearURL(year int) string {
	if h.resolver != nil {
		if route, err := h.resolver.ArchiveURL(year, 0); err == nil {
			return h.AbsURL(route)
		}
	}
	return h.AbsURL(fmt.Sprintf("/archive/%04d/", year))
}

// RenderedPage captures the rendered HTML output for one route.
type RenderedPage struct {
	Route        string
	Kind         string
	Output       string
	Template     string
	HTML         string
	Hash         string
	Checksum     string
	LastModified time.Time
	Duration     time.Duration
}

// RenderDiagnostic records rendering timing and errors per route.
type RenderDiagnostic struct {
	Route    string
	Kind     string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

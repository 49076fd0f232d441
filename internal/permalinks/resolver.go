package permalinks

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrSlugRequired = errors.New("permalinks: slug is required")
	ErrDateRequired = errors.New("permalinks: pattern requires a publish date")
)

// DefaultPattern is the permalink layout used when the site config
// does not set one.
const DefaultPattern = "/:year/:month/:slug/"

// Input carries the post fields permalink patterns can reference.
type Input struct {
	Slug      string
	Section   string
	Permalink string
	PublishAt *time.Time
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Pattern         string
	SectionPatterns map[string]string

	Manager *urlkit.RouteManager
	Group   string

	TagRoute     string
	ArchiveRoute string
	FeedRoute    string
}

// Resolver turns posts into site-relative paths. Listing pages (tags,
// archives, feeds) resolve through a go-urlkit route manager when one
// is configured and fall back to the built-in layout otherwise.
type Resolver struct {
	pattern  string
	sections map[string]string

	manager *urlkit.RouteManager
	group   string

	tagRoute     string
	archiveRoute string
	feedRoute    string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewResolver constructs a resolver from options.
func NewResolver(opts ResolverOptions) *Resolver {
	if strings.TrimSpace(opts.Pattern) == "" {
		opts.Pattern = DefaultPattern
	}
	if opts.TagRoute == "" {
		opts.TagRoute = "tag"
	}
	if opts.ArchiveRoute == "" {
		opts.ArchiveRoute = "archive"
	}
	if opts.FeedRoute == "" {
		opts.FeedRoute = "feed"
	}

	sections := make(map[string]string, len(opts.SectionPatterns))
	for name, pattern := range opts.SectionPatterns {
		name = strings.TrimSpace(name)
		pattern = strings.TrimSpace(pattern)
		if name == "" || pattern == "" {
			continue
		}
		sections[name] = pattern
	}

	return &Resolver{
		pattern:  strings.TrimSpace(opts.Pattern),
		sections: sections,

		manager: opts.Manager,
		group:   strings.TrimSpace(opts.Group),

		tagRoute:     opts.TagRoute,
		archiveRoute: opts.ArchiveRoute,
		feedRoute:    opts.FeedRoute,

		groupCache: make(map[string]*urlkit.Group),
	}
}

// Resolve returns the site-relative path for a post. An explicit
// permalink from front matter wins over the configured pattern.
func (r *Resolver) Resolve(in Input) (string, error) {
	if explicit := strings.TrimSpace(in.Permalink); explicit != "" {
		return collapsePath(explicit), nil
	}

	pattern := r.pattern
	if override, ok := r.sections[strings.TrimSpace(in.Section)]; ok {
		pattern = override
	}
	return Expand(pattern, in)
}

var dateTokens = []string{":short_year", ":year", ":i_month", ":month", ":i_day", ":day"}

// Expand substitutes pattern tokens with values from the input.
// Supported tokens: :year, :short_year, :month, :i_month, :day,
// :i_day, :section, :slug.
func Expand(pattern string, in Input) (string, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		return "", ErrSlugRequired
	}

	values := map[string]string{
		":section": Slugify(in.Section),
		":slug":    slug,
	}

	if hasDateToken(pattern) {
		when, ok := publishTime(in)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrDateRequired, pattern)
		}
		values[":year"] = fmt.Sprintf("%04d", when.Year())
		values[":short_year"] = fmt.Sprintf("%02d", when.Year()%100)
		values[":month"] = fmt.Sprintf("%02d", int(when.Month()))
		values[":i_month"] = strconv.Itoa(int(when.Month()))
		values[":day"] = fmt.Sprintf("%02d", when.Day())
		values[":i_day"] = strconv.Itoa(when.Day())
	}

	pairs := make([]string, 0, len(values)*2)
	for token, value := range values {
		pairs = append(pairs, token, value)
	}
	expanded := strings.NewReplacer(pairs...).Replace(pattern)
	return collapsePath(expanded), nil
}

func hasDateToken(pattern string) bool {
	for _, token := range dateTokens {
		if strings.Contains(pattern, token) {
			return true
		}
	}
	return false
}

func publishTime(in Input) (time.Time, bool) {
	if in.PublishAt == nil || in.PublishAt.IsZero() {
		return time.Time{}, false
	}
	return *in.PublishAt, true
}

// TagURL returns the listing path for a tag. A route registered on the
// route manager wins; otherwise the built-in /tags/ layout is used.
func (r *Resolver) TagURL(tag string) (string, error) {
	slug := Slugify(tag)
	if slug == "" {
		return "", fmt.Errorf("permalinks: tag %q has no usable slug", tag)
	}
	if url, ok, err := r.routeURL(r.tagRoute, map[string]any{"tag": slug}); err != nil {
		return "", err
	} else if ok {
		return url, nil
	}
	return "/tags/" + slug + "/", nil
}

// ArchiveURL returns the listing path for a year or a year+month
// archive. A zero month selects the yearly archive.
func (r *Resolver) ArchiveURL(year int, month time.Month) (string, error) {
	params := map[string]any{"year": fmt.Sprintf("%04d", year)}
	if month != 0 {
		params["month"] = fmt.Sprintf("%02d", int(month))
	}
	if url, ok, err := r.routeURL(r.archiveRoute, params); err != nil {
		return "", err
	} else if ok {
		return url, nil
	}
	if month == 0 {
		return fmt.Sprintf("/archive/%04d/", year), nil
	}
	return fmt.Sprintf("/archive/%04d/%02d/", year, int(month)), nil
}

// FeedURL returns the feed path for a section. An empty section
// selects the site-wide feed.
func (r *Resolver) FeedURL(section string) (string, error) {
	section = Slugify(section)
	params := map[string]any{}
	if section != "" {
		params["section"] = section
	}
	if url, ok, err := r.routeURL(r.feedRoute, params); err != nil {
		return "", err
	} else if ok {
		return url, nil
	}
	if section == "" {
		return "/feed.xml", nil
	}
	return "/" + section + "/feed.xml", nil
}

// routeURL builds a URL through the route manager. ok reports whether
// the manager had the group and route; callers fall back when it does
// not.
func (r *Resolver) routeURL(route string, params map[string]any) (string, bool, error) {
	if r == nil || r.manager == nil || r.group == "" || route == "" {
		return "", false, nil
	}

	group, err := r.groupForPath(r.group)
	if err != nil || group == nil {
		return "", false, nil
	}

	builder, err := r.safeBuilder(group, route)
	if err != nil || builder == nil {
		return "", false, nil
	}

	for key, val := range params {
		builder.WithParam(key, val)
	}

	url, err := builder.Build()
	if errors.Is(err, urlkit.ErrRouteNotFound) || errors.Is(err, urlkit.ErrGroupNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("permalinks: route %q: %w", route, err)
	}
	return url, true, nil
}

func (r *Resolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return nil, fmt.Errorf("permalinks: invalid route group path %q", path)
	}

	root, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	current := root
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

func (r *Resolver) safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("permalinks: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("permalinks: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("permalinks: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("permalinks: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("permalinks: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("permalinks: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a value into a URL-safe path segment.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugStrip.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// Absolute joins a site-relative path onto the base URL.
func Absolute(baseURL, path string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// collapsePath ensures a leading slash and folds duplicate slashes
// left behind by empty token values.
func collapsePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

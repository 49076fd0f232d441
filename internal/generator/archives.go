package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/permalinks"
	"github.com/goliatone/go-press/internal/themes"
)

// listingJobs derives the archive surfaces from the post views: the
// paginated index, one page per tag and one per publication year. Posts
// are already sorted newest first by the catalogue.
func (s *service) listingJobs(theme *themes.Theme, views []*PostView, generatedAt time.Time) ([]*pageJob, error) {
	var jobs []*pageJob

	indexJobs, err := s.indexJobs(theme, views, generatedAt)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, indexJobs...)

	tagJobs, err := s.tagJobs(theme, views)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, tagJobs...)

	yearJobs, err := s.yearJobs(theme, views)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, yearJobs...)

	return jobs, nil
}

func (s *service) indexJobs(theme *themes.Theme, views []*PostView, generatedAt time.Time) ([]*pageJob, error) {
	templateName, err := resolveLayoutTemplate(theme, KindIndex)
	if err != nil {
		return nil, fmt.Errorf("generator: index layout: %w", err)
	}

	pageSize := s.cfg.PageSize
	if pageSize <= 0 {
		pageSize = len(views)
	}
	pages := chunkViews(views, pageSize)
	if len(pages) == 0 {
		pages = [][]*PostView{nil}
	}

	jobs := make([]*pageJob, 0, len(pages))
	for number, posts := range pages {
		route := indexRoute(number + 1)
		pagination := &Pagination{
			Page:    number + 1,
			Pages:   len(pages),
			PerPage: pageSize,
			Total:   len(views),
		}
		if number > 0 {
			pagination.Prev = indexRoute(number)
		}
		if number < len(pages)-1 {
			pagination.Next = indexRoute(number + 2)
		}

		jobs = append(jobs, &pageJob{
			Kind:     KindIndex,
			Route:    route,
			Layout:   KindIndex,
			Template: templateName,
			Page: PageContext{
				Kind:       KindIndex,
				Title:      s.cfg.Site.Title,
				Route:      route,
				Posts:      posts,
				Pagination: pagination,
			},
			Hash:    listingHash(KindIndex, route, templateName, theme, posts),
			LastMod: latestUpdate(posts, generatedAt),
		})
	}
	return jobs, nil
}

func (s *service) tagJobs(theme *themes.Theme, views []*PostView) ([]*pageJob, error) {
	templateName, err := resolveLayoutTemplate(theme, KindTag)
	if err != nil {
		return nil, fmt.Errorf("generator: tag layout: %w", err)
	}

	grouped := map[string][]*PostView{}
	display := map[string]string{}
	for _, view := range views {
		for _, tag := range view.Tags {
			slug := permalinks.Slugify(tag)
			if slug == "" {
				continue
			}
			if _, ok := display[slug]; !ok {
				display[slug] = strings.TrimSpace(tag)
			}
			grouped[slug] = append(grouped[slug], view)
		}
	}

	slugs := make([]string, 0, len(grouped))
	for slug := range grouped {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	jobs := make([]*pageJob, 0, len(slugs))
	for _, slug := range slugs {
		route, err := s.resolver.TagURL(slug)
		if err != nil {
			return nil, err
		}
		posts := grouped[slug]
		jobs = append(jobs, &pageJob{
			Kind:     KindTag,
			Route:    route,
			Layout:   KindTag,
			Template: templateName,
			Page: PageContext{
				Kind:  KindTag,
				Title: display[slug],
				Route: route,
				Tag:   display[slug],
				Posts: posts,
			},
			Hash:    listingHash(KindTag, route, templateName, theme, posts),
			LastMod: latestUpdate(posts, time.Time{}),
		})
	}
	return jobs, nil
}

func (s *service) yearJobs(theme *themes.Theme, views []*PostView) ([]*pageJob, error) {
	templateName, err := resolveLayoutTemplate(theme, KindArchive)
	if err != nil {
		return nil, fmt.Errorf("generator: archive layout: %w", err)
	}

	grouped := map[int][]*PostView{}
	for _, view := range views {
		if view.PublishedAt.IsZero() {
			continue
		}
		year := view.PublishedAt.Year()
		grouped[year] = append(grouped[year], view)
	}

	years := make([]int, 0, len(grouped))
	for year := range grouped {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	jobs := make([]*pageJob, 0, len(years))
	for _, year := range years {
		route, err := s.resolver.ArchiveURL(year, 0)
		if err != nil {
			return nil, err
		}
		posts := grouped[year]
		jobs = append(jobs, &pageJob{
			Kind:     KindArchive,
			Route:    route,
			Layout:   KindArchive,
			Template: templateName,
			Page: PageContext{
				Kind:  KindArchive,
				Title: fmt.Sprintf("%d", year),
				Route: route,
				Year:  year,
				Posts: posts,
			},
			Hash:    listingHash(KindArchive, route, templateName, theme, posts),
			LastMod: latestUpdate(posts, time.Time{}),
		})
	}
	return jobs, nil
}

func indexRoute(page int) string {
	if page <= 1 {
		return "/"
	}
	return fmt.Sprintf("/page/%d/", page)
}

func chunkViews(views []*PostView, size int) [][]*PostView {
	if len(views) == 0 || size <= 0 {
		return nil
	}
	chunks := make([][]*PostView, 0, (len(views)+size-1)/size)
	for start := 0; start < len(views); start += size {
		end := start + size
		if end > len(views) {
			end = len(views)
		}
		chunks = append(chunks, views[start:end])
	}
	return chunks
}

// listingHash folds the member posts into the page hash so a changed or
// re-ordered post invalidates every listing that shows it.
func listingHash(kind, route, templateName string, theme *themes.Theme, posts []*PostView) string {
	members := make([]string, 0, len(posts))
	for _, post := range posts {
		members = append(members, joinParts(
			post.ID.String(),
			post.Route,
			post.UpdatedAt.UTC().Format(time.RFC3339Nano),
		))
	}
	return hashSources(map[string]string{
		"kind":     kind,
		"route":    route,
		"template": templateName,
		"theme":    themeStamp(theme),
		"members":  strings.Join(members, ";"),
	})
}

func latestUpdate(posts []*PostView, fallback time.Time) time.Time {
	latest := fallback
	for _, post := range posts {
		if post.UpdatedAt.After(latest) {
			latest = post.UpdatedAt
		}
	}
	return latest
}

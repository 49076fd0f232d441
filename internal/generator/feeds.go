package generator

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/permalinks"
)

// maxFeedItems bounds feed size when no explicit limit is configured.
const maxFeedItems = 100

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Author      string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

type feedDocument struct {
	Title string
	Route string
	Tag   string
	Items []feedItem
}

// writeFeeds emits the site-wide RSS and Atom feeds, plus one RSS feed
// per tag when enabled.
func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	baseDir string,
) error {
	docs, err := s.buildFeedDocuments(buildCtx)
	if err != nil {
		return err
	}

	base := baseURLWithFallback(buildCtx.Site.BaseURL)
	for _, doc := range docs {
		rss := buildRSSFeed(buildCtx.Site, base, doc, buildCtx.GeneratedAt)
		if err := s.writeFeedFile(ctx, writer, baseDir, doc.Route, rss, "application/rss+xml", buildCtx.GeneratedAt); err != nil {
			return err
		}
		if doc.Tag != "" {
			continue
		}
		atom := buildAtomFeed(buildCtx.Site, base, doc, buildCtx.GeneratedAt)
		atomRoute := atomRouteFor(doc.Route)
		if err := s.writeFeedFile(ctx, writer, baseDir, atomRoute, atom, "application/atom+xml", buildCtx.GeneratedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) buildFeedDocuments(buildCtx *BuildContext) ([]feedDocument, error) {
	if buildCtx == nil || len(buildCtx.Posts) == 0 {
		return nil, nil
	}

	base := baseURLWithFallback(buildCtx.Site.BaseURL)
	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = maxFeedItems
	}

	items := make([]feedItem, 0, len(buildCtx.Posts))
	byTag := map[string][]feedItem{}
	tagTitle := map[string]string{}
	seen := map[string]struct{}{}

	for _, post := range buildCtx.Posts {
		if post == nil {
			continue
		}
		guid := post.ID.String()
		if guid == "" {
			guid = post.Route
		}
		if _, ok := seen[guid]; ok {
			continue
		}
		seen[guid] = struct{}{}

		item := feedItem{
			Title:       post.Title,
			Summary:     post.Summary,
			Link:        permalinks.Absolute(base, post.Route),
			GUID:        guid,
			Author:      post.Author,
			PublishedAt: post.PublishedAt,
			UpdatedAt:   post.UpdatedAt,
		}
		items = append(items, item)

		if !s.cfg.TagFeeds {
			continue
		}
		for _, tag := range post.Tags {
			slug := permalinks.Slugify(tag)
			if slug == "" {
				continue
			}
			if _, ok := tagTitle[slug]; !ok {
				tagTitle[slug] = strings.TrimSpace(tag)
			}
			byTag[slug] = append(byTag[slug], item)
		}
	}

	siteRoute, err := s.resolver.FeedURL("")
	if err != nil {
		return nil, fmt.Errorf("generator: resolve feed route: %w", err)
	}

	docs := []feedDocument{{
		Title: buildCtx.Site.Title,
		Route: siteRoute,
		Items: capFeedItems(items, limit),
	}}

	slugs := make([]string, 0, len(byTag))
	for slug := range byTag {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		tagRoute, err := s.resolver.TagURL(slug)
		if err != nil {
			return nil, err
		}
		title := tagTitle[slug]
		if site := strings.TrimSpace(buildCtx.Site.Title); site != "" {
			title = site + ": " + title
		}
		docs = append(docs, feedDocument{
			Title: title,
			Route: joinRoute(tagRoute, "feed.xml"),
			Tag:   slug,
			Items: capFeedItems(byTag[slug], limit),
		})
	}
	return docs, nil
}

func capFeedItems(items []feedItem, limit int) []feedItem {
	out := append([]feedItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func buildRSSFeed(site SiteMetadata, base string, doc feedDocument, generatedAt time.Time) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(doc.Title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(base+"/")))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(site.Description)))
	if site.Language != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(site.Language)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	builder.WriteString(fmt.Sprintf(`    <atom:link href="%s" rel="self" type="application/rss+xml"/>`+"\n",
		escapeXML(permalinks.Absolute(base, doc.Route))))

	for _, item := range doc.Items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf(`      <guid isPermaLink="false">%s</guid>`+"\n", escapeXML(item.GUID)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", item.PublishedAt.UTC().Format(time.RFC1123Z)))
		}
		builder.WriteString("    </item>\n")
	}

	builder.WriteString("  </channel>\n")
	builder.WriteString("</rss>\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, base string, doc feedDocument, generatedAt time.Time) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(doc.Title)))
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(base+"/")))
	builder.WriteString(fmt.Sprintf(`  <link href="%s"/>`+"\n", escapeXML(base+"/")))
	builder.WriteString(fmt.Sprintf(`  <link href="%s" rel="self"/>`+"\n",
		escapeXML(permalinks.Absolute(base, atomRouteFor(doc.Route)))))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	if site.Author != "" {
		builder.WriteString("  <author>\n")
		builder.WriteString(fmt.Sprintf("    <name>%s</name>\n", escapeXML(site.Author)))
		builder.WriteString("  </author>\n")
	}

	for _, item := range doc.Items {
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML("urn:uuid:"+item.GUID)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s"/>`+"\n", escapeXML(item.Link)))
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if !updated.IsZero() {
			builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		}
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if item.Author != "" {
			builder.WriteString("    <author>\n")
			builder.WriteString(fmt.Sprintf("      <name>%s</name>\n", escapeXML(item.Author)))
			builder.WriteString("    </author>\n")
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}

	builder.WriteString("</feed>\n")
	return builder.String()
}

func (s *service) writeFeedFile(
	ctx context.Context,
	writer artifactWriter,
	baseDir, route, content, contentType string,
	generatedAt time.Time,
) error {
	destRel := strings.TrimPrefix(strings.TrimSpace(route), "/")
	if destRel == "" {
		return fmt.Errorf("generator: feed route is empty")
	}
	fullPath := joinOutputPath(baseDir, destRel)
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryFeed,
		ContentType: contentType,
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"route":        route,
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

// atomRouteFor derives the Atom route from the RSS one, so /feed.xml
// pairs with /feed.atom.xml.
func atomRouteFor(rssRoute string) string {
	if strings.HasSuffix(rssRoute, ".xml") {
		return strings.TrimSuffix(rssRoute, ".xml") + ".atom.xml"
	}
	return joinRoute(rssRoute, "feed.atom.xml")
}

func joinRoute(base, rest string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	rest = strings.TrimLeft(strings.TrimSpace(rest), "/")
	if base == "" {
		return "/" + rest
	}
	return base + "/" + rest
}

func baseURLWithFallback(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "http://localhost"
	}
	return base
}

func escapeXML(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(value)
}

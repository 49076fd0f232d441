package themes

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

type renderSite struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
}

type renderPost struct {
	Title       string
	Author      string
	Summary     string
	Content     template.HTML
	Tags        []string
	Reviewers   []string
	Route       string
	PublishedAt time.Time
}

type renderPage struct {
	Kind  string
	Title string
	Post  *renderPost
}

type renderBuild struct {
	GeneratedAt time.Time
}

type renderHelpers struct {
	base string
}

func (h renderHelpers) AbsURL(p string) string { return absURL(h.base, p) }

func (h renderHelpers) TagURL(tag string) string {
	return absURL(h.base, "/tags/"+tag+"/")
}

type renderContext struct {
	Site    renderSite
	Page    renderPage
	Build   renderBuild
	Helpers renderHelpers
}

func TestRenderDefaultThemePost(t *testing.T) {
	renderer := NewHTMLRenderer(DefaultThemeFS(), WithBaseURL("https://example.com"))

	published := time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)
	ctx := renderContext{
		Site: renderSite{
			Title:    "NSHipster Notes",
			Author:   "Mattt",
			Language: "en-US",
		},
		Page: renderPage{
			Kind:  "post",
			Title: "Testing Swift Concurrency",
			Post: &renderPost{
				Title:       "Testing Swift Concurrency",
				Author:      "Mattt",
				Content:     template.HTML("<p>Body copy.</p>"),
				Tags:        []string{"swift", "concurrency"},
				Reviewers:   []string{"nate", "amanda"},
				PublishedAt: published,
			},
		},
		Build:   renderBuild{GeneratedAt: published},
		Helpers: renderHelpers{base: "https://example.com"},
	}

	html, err := renderer.Render("post", ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		`<html lang="en-US">`,
		"Testing Swift Concurrency &middot; NSHipster Notes",
		`<time datetime="2026-01-12">January 12, 2026</time>`,
		"<p>Body copy.</p>",
		`href="https://example.com/tags/swift/"`,
		"#swift",
		"Reviewed by nate, amanda",
		`href="https://example.com/assets/css/site.css"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q\n%s", want, html)
		}
	}
}

func TestRendererHelperFuncs(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/page.html": &fstest.MapFile{Data: []byte(
			`{{safeHTML .HTML}}|{{formatDate .When "2006-01-02"}}|{{absURL "/feed.xml"}}|{{joinTags .Tags}}`,
		)},
	}
	renderer := NewHTMLRenderer(fsys, WithBaseURL("https://example.com/"))

	out, err := renderer.Render("page", map[string]any{
		"HTML": "<em>hi</em>",
		"When": time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		"Tags": []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<em>hi</em>|2026-03-03|https://example.com/feed.xml|a, b"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRendererMissingTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/page.html": &fstest.MapFile{Data: []byte("ok")},
	}
	renderer := NewHTMLRenderer(fsys)

	if _, err := renderer.Render("ghost", nil); err == nil {
		t.Fatal("expected missing template error")
	}
}

func TestRendererNoTemplates(t *testing.T) {
	renderer := NewHTMLRenderer(fstest.MapFS{})
	if _, err := renderer.Render("page", nil); err == nil {
		t.Fatal("expected error for empty theme")
	}
}

func TestRendererWritesToWriter(t *testing.T) {
	fsys := fstest.MapFS{
		"page.html": &fstest.MapFile{Data: []byte("hello {{.Name}}")},
	}
	renderer := NewHTMLRenderer(fsys)

	var buf bytes.Buffer
	out, err := renderer.RenderTemplate("page.html", map[string]string{"Name": "world"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty return when writing to writer, got %q", out)
	}
	if buf.String() != "hello world" {
		t.Fatalf("unexpected writer content %q", buf.String())
	}
}

func TestRendererRenderString(t *testing.T) {
	renderer := NewHTMLRenderer(fstest.MapFS{}, WithBaseURL("https://example.com"))

	out, err := renderer.RenderString(`{{absURL .Path}}`, map[string]string{"Path": "about/"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "https://example.com/about/" {
		t.Fatalf("got %q", out)
	}
}

func TestRendererRegisterFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"page.html": &fstest.MapFile{Data: []byte(`{{shout .Name "!"}}`)},
	}
	renderer := NewHTMLRenderer(fsys)

	err := renderer.RegisterFilter("shout", func(value any, arg any) (any, error) {
		return strings.ToUpper(value.(string)) + arg.(string), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	out, err := renderer.Render("page", map[string]string{"Name": "ship it"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "SHIP IT!" {
		t.Fatalf("got %q", out)
	}

	if err := renderer.RegisterFilter("late", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected error registering filter after parse")
	}
}

func TestRendererGlobalContext(t *testing.T) {
	fsys := fstest.MapFS{
		"page.html": &fstest.MapFile{Data: []byte(`{{(global).mode}}`)},
	}
	renderer := NewHTMLRenderer(fsys)

	if err := renderer.GlobalContext(map[string]string{"mode": "production"}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	out, err := renderer.Render("page", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "production" {
		t.Fatalf("got %q", out)
	}
}

func TestFormatDate(t *testing.T) {
	when := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)

	if got := formatDate(when); got != "July 4, 2026" {
		t.Fatalf("default layout: got %q", got)
	}
	if got := formatDate(&when, "2006-01-02"); got != "2026-07-04" {
		t.Fatalf("pointer value: got %q", got)
	}
	if got := formatDate((*time.Time)(nil)); got != "" {
		t.Fatalf("nil pointer: got %q", got)
	}
	if got := formatDate("already formatted"); got != "already formatted" {
		t.Fatalf("string passthrough: got %q", got)
	}
}

func TestAbsURL(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"https://example.com", "/feed.xml", "https://example.com/feed.xml"},
		{"https://example.com/", "posts/hello/", "https://example.com/posts/hello/"},
		{"https://example.com", "https://cdn.example.com/a.css", "https://cdn.example.com/a.css"},
		{"https://example.com", "", "https://example.com"},
		{"", "/about/", "/about/"},
	}
	for _, tc := range cases {
		if got := absURL(tc.base, tc.path); got != tc.want {
			t.Errorf("absURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

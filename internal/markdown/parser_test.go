package markdown

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Layout != "post" {
		t.Fatalf("FrontMatter Layout mismatch, got %q", fm.Layout)
	}
	if fm.Title != "Sample Post" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Slug != "sample-post" {
		t.Fatalf("FrontMatter Slug mismatch, got %q", fm.Slug)
	}
	if fm.Date != "2014-04-03 09:21:10 -0500" {
		t.Fatalf("FrontMatter Date mismatch, got %q", fm.Date)
	}
	if fm.Permalink != "/2014/04/sample-post/" {
		t.Fatalf("FrontMatter Permalink mismatch, got %q", fm.Permalink)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "swift" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if len(fm.Reviewers) != 1 || fm.Reviewers[0] != "natasha" {
		t.Fatalf("FrontMatter Reviewers mismatch: %#v", fm.Reviewers)
	}
	if fm.Custom["custom_flag"] != true {
		t.Fatalf("FrontMatter Custom flag missing: %#v", fm.Custom)
	}
	if fm.Raw["summary"] != "Sample summary goes here" {
		t.Fatalf("FrontMatter Raw summary missing: %#v", fm.Raw)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Sample Post") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("testdata/basic.md", "posts", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if doc.FilePath != "testdata/basic.md" {
		t.Fatalf("expected FilePath to be set, got %q", doc.FilePath)
	}
	if doc.Section != "posts" {
		t.Fatalf("expected Section to be posts, got %q", doc.Section)
	}
	if doc.LastModified != modified {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	if len(doc.Body) == 0 {
		t.Fatalf("expected Body to contain markdown content")
	}
	if len(doc.Checksum) == 0 {
		t.Fatalf("expected Checksum to be populated")
	}
}

func TestHasFrontMatter(t *testing.T) {
	cases := []struct {
		name   string
		source string
		opened bool
		closed bool
	}{
		{"complete", "---\ntitle: x\n---\nbody", true, true},
		{"unterminated", "---\ntitle: x\nbody", true, false},
		{"missing", "# Heading\n\nbody", false, false},
		{"indented", "  ---\ntitle: x\n---\n", false, false},
		{"crlf", "---\r\ntitle: x\r\n---\r\nbody", true, true},
	}

	for _, tc := range cases {
		opened, closed := HasFrontMatter([]byte(tc.source))
		if opened != tc.opened || closed != tc.closed {
			t.Fatalf("%s: HasFrontMatter = (%v, %v), want (%v, %v)", tc.name, opened, closed, tc.opened, tc.closed)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]bool{
		"2014-04-03 09:21:10 -0500": true,
		"2014-04-03 09:21:10":       true,
		"2014-04-03":                true,
		"2014-04-03T09:21:10Z":      true,
		"April 3rd, 2014":           false,
		"03/04/2014":                false,
		"":                          false,
	}

	for value, want := range cases {
		if got := IsValidDate(value); got != want {
			t.Fatalf("IsValidDate(%q) = %v, want %v", value, got, want)
		}
	}

	ts, err := ParseDate("2014-04-03 09:21:10 -0500")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if ts.UTC().Hour() != 14 {
		t.Fatalf("expected offset applied, got %v", ts)
	}

	ts, err = ParseDate("2014-04-03")
	if err != nil {
		t.Fatalf("ParseDate bare date: %v", err)
	}
	if ts.Location() != time.UTC {
		t.Fatalf("expected bare date interpreted in UTC, got %v", ts.Location())
	}
}

func TestParseFileName(t *testing.T) {
	date, slug := ParseFileName("posts/2014-04-03-finding-memory-leaks.md")
	if date != "2014-04-03" || slug != "finding-memory-leaks" {
		t.Fatalf("ParseFileName = (%q, %q)", date, slug)
	}

	date, slug = ParseFileName("pages/about.md")
	if date != "" || slug != "about" {
		t.Fatalf("ParseFileName without date = (%q, %q)", date, slug)
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_FencedCode(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("```swift\nlet x = 1\n```"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !strings.Contains(string(html), `<code class="language-swift">`) {
		t.Fatalf("expected fenced code block with language class, got %q", string(html))
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

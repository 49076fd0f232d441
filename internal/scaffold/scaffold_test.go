package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	}
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.ContentDir == "" {
		cfg.ContentDir = filepath.Join(t.TempDir(), "content")
	}
	return New(cfg, WithClock(fixedClock()))
}

func TestCreateWritesDatedFile(t *testing.T) {
	svc := newTestService(t, Config{DefaultAuthor: "Editorial Team"})

	result, err := svc.Create(context.Background(), NewPostRequest{
		Title: "My First Post",
		Tags:  []string{"go", "writing"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if result.Slug != "my-first-post" {
		t.Fatalf("expected derived slug, got %q", result.Slug)
	}
	if filepath.Base(result.Path) != "2024-06-15-my-first-post.md" {
		t.Fatalf("unexpected file name %q", filepath.Base(result.Path))
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read scaffolded file: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Fatalf("expected yaml front matter delimiter, got %q", content[:20])
	}
	for _, want := range []string{
		"layout: post",
		"title: My First Post",
		"2024-06-15",
		"author: Editorial Team",
		"draft: true",
		"- go",
		"- writing",
		"# My First Post",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected content to contain %q, got:\n%s", want, content)
		}
	}
}

func TestCreateTOMLFormat(t *testing.T) {
	svc := newTestService(t, Config{Format: FormatTOML})

	result, err := svc.Create(context.Background(), NewPostRequest{Title: "Config Notes"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	content := string(result.Content)
	if !strings.HasPrefix(content, "+++\n") {
		t.Fatalf("expected toml delimiter, got %q", content[:10])
	}
	for _, want := range []string{
		"layout = 'post'",
		"title = 'Config Notes'",
		"draft = true",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected content to contain %q, got:\n%s", want, content)
		}
	}
}

func TestCreateRefusesOverwrite(t *testing.T) {
	svc := newTestService(t, Config{})

	req := NewPostRequest{Title: "Duplicate"}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrFileExists) {
		t.Fatalf("expected file exists error, got %v", err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := newTestService(t, Config{})
	if _, err := svc.Create(context.Background(), NewPostRequest{}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected title required error, got %v", err)
	}
}

func TestCreateNormalizesExplicitSlug(t *testing.T) {
	svc := newTestService(t, Config{})

	result, err := svc.Create(context.Background(), NewPostRequest{
		Title: "Ignored Title",
		Slug:  "Custom Slug Here",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Slug != "custom-slug-here" {
		t.Fatalf("expected normalized slug, got %q", result.Slug)
	}
}

func TestCreateUnknownFormat(t *testing.T) {
	svc := newTestService(t, Config{})
	_, err := svc.Create(context.Background(), NewPostRequest{
		Title:  "Oops",
		Format: Format("ini"),
	})
	if !errors.Is(err, ErrFormatUnknown) {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestCreateHonoursSectionAndOverrides(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	svc := New(Config{
		ContentDir:    root,
		Section:       "notes",
		DefaultLayout: "note",
	}, WithClock(fixedClock()))

	result, err := svc.Create(context.Background(), NewPostRequest{
		Title:  "Quick Note",
		Author: "Sam",
		Layout: "aside",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Dir(result.Path) != filepath.Join(root, "notes") {
		t.Fatalf("expected notes section directory, got %q", filepath.Dir(result.Path))
	}
	content := string(result.Content)
	if !strings.Contains(content, "layout: aside") {
		t.Fatalf("expected layout override, got:\n%s", content)
	}
	if !strings.Contains(content, "author: Sam") {
		t.Fatalf("expected author override, got:\n%s", content)
	}
}

func TestPreviewContentRendersMarkdown(t *testing.T) {
	out, err := PreviewContent([]byte("# Title\n\nbody text\n"), 60)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Fatalf("expected rendered heading, got %q", out)
	}
}

func TestCreateCancelledContext(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Create(ctx, NewPostRequest{Title: "Never"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

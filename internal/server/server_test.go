package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/google/uuid"
)

type stubPostService struct {
	records []*interfaces.PostRecord
	listErr error

	mu       sync.Mutex
	listOpts []interfaces.PostListOptions
}

func (s *stubPostService) Create(context.Context, interfaces.PostCreateRequest) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) Update(context.Context, interfaces.PostUpdateRequest) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) GetBySlug(context.Context, string, interfaces.PostReadOptions) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) GetByPermalink(context.Context, string) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) List(_ context.Context, opts interfaces.PostListOptions) ([]*interfaces.PostRecord, error) {
	s.mu.Lock()
	s.listOpts = append(s.listOpts, opts)
	s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

func (s *stubPostService) ListTags(context.Context) ([]interfaces.TagCount, error) {
	return nil, nil
}

func (s *stubPostService) Publish(context.Context, interfaces.PostPublishRequest) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) Unpublish(context.Context, interfaces.PostUnpublishRequest) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) Archive(context.Context, uuid.UUID) (*interfaces.PostRecord, error) {
	return nil, nil
}

func (s *stubPostService) Delete(context.Context, interfaces.PostDeleteRequest) error {
	return nil
}

type stubBuilder struct {
	mu      sync.Mutex
	calls   int
	active  int
	overlap bool

	result *generator.BuildResult
	err    error
	delay  time.Duration
}

func (s *stubBuilder) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	s.mu.Lock()
	s.calls++
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubBuilder) Clean(context.Context) error { return nil }

func samplePosts() []*interfaces.PostRecord {
	published := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	return []*interfaces.PostRecord{
		{
			Slug:        "understanding-goroutines",
			Section:     "posts",
			Title:       "Understanding Goroutines",
			Tags:        []string{"go", "concurrency"},
			Permalink:   "/2024/01/understanding-goroutines/",
			Status:      "published",
			PublishedAt: &published,
		},
		{
			Slug:      "http-servers",
			Section:   "posts",
			Title:     "Building HTTP Servers",
			Tags:      []string{"go", "web"},
			Permalink: "/2024/03/http-servers/",
			Status:    "published",
		},
		{
			Slug:    "gardening-notes",
			Section: "notes",
			Title:   "Gardening Notes",
			Tags:    []string{"offtopic"},
			Status:  "published",
		},
	}
}

func newTestServer(t *testing.T, posts *stubPostService, builder *stubBuilder) *Server {
	t.Helper()
	srv, err := New(Config{
		Addr:      "127.0.0.1:0",
		OutputDir: t.TempDir(),
	}, Dependencies{
		Posts:   posts,
		Builder: builder,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func performRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	payload := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestNewValidatesDependencies(t *testing.T) {
	if _, err := New(Config{}, Dependencies{Posts: &stubPostService{}}); err == nil {
		t.Fatal("expected error for missing address")
	}
	if _, err := New(Config{Addr: ":8080"}, Dependencies{}); err == nil {
		t.Fatal("expected error for missing post service")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubPostService{}, &stubBuilder{})

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Fatalf("expected ok status, got %#v", body)
	}
}

func TestListPostsEndpoint(t *testing.T) {
	posts := &stubPostService{records: samplePosts()}
	srv := newTestServer(t, posts, &stubBuilder{})

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/api/posts?section=posts&drafts=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["total"] != float64(3) {
		t.Fatalf("expected total 3, got %v", body["total"])
	}

	if len(posts.listOpts) != 1 {
		t.Fatalf("expected one list call, got %d", len(posts.listOpts))
	}
	opts := posts.listOpts[0]
	if opts.Section != "posts" {
		t.Fatalf("expected section filter forwarded, got %q", opts.Section)
	}
	if !opts.IncludeDrafts {
		t.Fatal("expected drafts flag forwarded")
	}
}

func TestListPostsEndpointError(t *testing.T) {
	posts := &stubPostService{listErr: errors.New("store down")}
	srv := newTestServer(t, posts, &stubBuilder{})

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/api/posts")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestSearchPostsEndpoint(t *testing.T) {
	posts := &stubPostService{records: samplePosts()}
	srv := newTestServer(t, posts, &stubBuilder{})

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/api/posts/search?q=goroutines")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	results, ok := body["posts"].([]any)
	if !ok || len(results) == 0 {
		t.Fatalf("expected search results, got %#v", body)
	}
	first, ok := results[0].(map[string]any)
	if !ok || first["slug"] != "understanding-goroutines" {
		t.Fatalf("expected goroutines post first, got %#v", results[0])
	}
}

func TestSearchPostsMatchesTags(t *testing.T) {
	posts := &stubPostService{records: samplePosts()}
	srv := newTestServer(t, posts, &stubBuilder{})

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/api/posts/search?q=offtopic")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	results, ok := body["posts"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected single tag match, got %#v", body)
	}
	first := results[0].(map[string]any)
	if first["slug"] != "gardening-notes" {
		t.Fatalf("expected tag match on gardening-notes, got %#v", first)
	}
}

func TestSearchPostsRequiresQuery(t *testing.T) {
	srv := newTestServer(t, &stubPostService{}, &stubBuilder{})

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/api/posts/search")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBuildEndpointTriggersBuilder(t *testing.T) {
	builder := &stubBuilder{
		result: &generator.BuildResult{PagesBuilt: 5, PagesSkipped: 1, Duration: 40 * time.Millisecond},
	}
	srv := newTestServer(t, &stubPostService{}, builder)

	rec := performRequest(t, srv.Handler(), http.MethodPost, "/api/build")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["pages_built"] != float64(5) {
		t.Fatalf("expected pages_built 5, got %v", body["pages_built"])
	}
	if builder.calls != 1 {
		t.Fatalf("expected one build call, got %d", builder.calls)
	}
}

func TestBuildEndpointLintFailure(t *testing.T) {
	builder := &stubBuilder{err: generator.ErrLintFailed}
	srv := newTestServer(t, &stubPostService{}, builder)

	rec := performRequest(t, srv.Handler(), http.MethodPost, "/api/build")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRebuildsAreSerialized(t *testing.T) {
	builder := &stubBuilder{
		result: &generator.BuildResult{},
		delay:  20 * time.Millisecond,
	}
	srv := newTestServer(t, &stubPostService{}, builder)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := srv.rebuild(context.Background()); err != nil {
				t.Errorf("rebuild: %v", err)
			}
		}()
	}
	wg.Wait()

	if builder.calls != 4 {
		t.Fatalf("expected 4 build calls, got %d", builder.calls)
	}
	if builder.overlap {
		t.Fatal("expected rebuilds to be serialized")
	}
}

func TestStaticFilesServedFromOutputDir(t *testing.T) {
	dir := t.TempDir()
	pagePath := filepath.Join(dir, "about")
	if err := os.MkdirAll(pagePath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pagePath, "index.html"), []byte("<html>about</html>"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	srv, err := New(Config{Addr: "127.0.0.1:0", OutputDir: dir}, Dependencies{
		Posts:   &stubPostService{},
		Builder: &stubBuilder{},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := performRequest(t, srv.Handler(), http.MethodGet, "/about/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "<html>about</html>" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestNormalizeWatchDirs(t *testing.T) {
	dirs := normalizeWatchDirs([]string{" content ", "content", "", "themes/default"})
	if len(dirs) != 2 {
		t.Fatalf("expected deduplicated dirs, got %#v", dirs)
	}
	if dirs[0] != "content" || dirs[1] != "themes/default" {
		t.Fatalf("unexpected dirs %#v", dirs)
	}
}

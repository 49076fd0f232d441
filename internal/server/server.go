package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/sahilm/fuzzy"
)

var (
	// ErrServerDisabled indicates the preview server feature is disabled.
	ErrServerDisabled = errors.New("server: service disabled")
	errAddrRequired   = errors.New("server: listen address is required")
	errPostsRequired  = errors.New("server: post service is required")
)

const (
	defaultSearchLimit   = 20
	defaultWatchDebounce = 300 * time.Millisecond
	shutdownGrace        = 5 * time.Second
)

// Config captures preview server behaviour.
type Config struct {
	Addr string
	// OutputDir is the directory the generator writes to; its files are
	// served as the site root.
	OutputDir string
	// SearchLimit bounds results returned by the search endpoint.
	SearchLimit int
	// Watch enables filesystem watching with automatic rebuilds.
	Watch bool
	// WatchDirs lists the directories observed in watch mode.
	WatchDirs []string
	// WatchDebounce is the quiet period before a rebuild after a change burst.
	WatchDebounce time.Duration
}

// Dependencies lists the collaborators required by the preview server.
type Dependencies struct {
	Posts   interfaces.PostService
	Builder generator.Service
	Logger  interfaces.Logger
}

// Server exposes the generated site plus a small JSON API for previews.
type Server struct {
	cfg    Config
	deps   Dependencies
	engine *gin.Engine
	logger interfaces.Logger

	// buildMu serializes rebuilds; watch events and API triggers share it.
	buildMu sync.Mutex
}

// New constructs a preview server around the generated output directory.
func New(cfg Config, deps Dependencies) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errAddrRequired
	}
	if deps.Posts == nil {
		return nil, errPostsRequired
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = defaultSearchLimit
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = defaultWatchDebounce
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.engine = s.buildEngine()
	return s, nil
}

// Handler returns the HTTP handler so tests and embedding hosts can mount it.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.start", "addr", s.cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var watcher *watchLoop
	if s.cfg.Watch && len(s.cfg.WatchDirs) > 0 {
		loop, err := newWatchLoop(s.cfg.WatchDirs, s.cfg.WatchDebounce, s.logger, func(triggerCtx context.Context) {
			if _, err := s.rebuild(triggerCtx); err != nil {
				s.logger.Error("server.watch.rebuild_failed", "error", err)
			}
		})
		if err != nil {
			s.logger.Error("server.watch.start_failed", "error", err)
		} else {
			watcher = loop
			go watcher.run(ctx)
		}
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if watcher != nil {
			watcher.close()
		}
		return err
	}

	if watcher != nil {
		watcher.close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("server.shutdown")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api")
	api.GET("/posts", s.handleListPosts)
	api.GET("/posts/search", s.handleSearchPosts)
	api.POST("/build", s.handleBuild)

	if strings.TrimSpace(s.cfg.OutputDir) != "" {
		fileServer := http.FileServer(http.Dir(s.cfg.OutputDir))
		engine.NoRoute(func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
	}

	return engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type postSummary struct {
	Slug        string     `json:"slug"`
	Section     string     `json:"section"`
	Title       string     `json:"title"`
	Summary     *string    `json:"summary,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Permalink   string     `json:"permalink,omitempty"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func (s *Server) handleListPosts(c *gin.Context) {
	opts := interfaces.PostListOptions{
		Section:       strings.TrimSpace(c.Query("section")),
		Tag:           strings.TrimSpace(c.Query("tag")),
		IncludeDrafts: c.Query("drafts") == "true",
	}

	records, err := s.deps.Posts.List(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": summarize(records),
		"total": len(records),
	})
}

// searchCorpus adapts post records to fuzzy.Source; each entry folds the
// title and tags into one searchable string.
type searchCorpus struct {
	records []*interfaces.PostRecord
	keys    []string
}

func newSearchCorpus(records []*interfaces.PostRecord) *searchCorpus {
	corpus := &searchCorpus{
		records: records,
		keys:    make([]string, len(records)),
	}
	for i, record := range records {
		parts := append([]string{record.Title}, record.Tags...)
		corpus.keys[i] = strings.ToLower(strings.Join(parts, " "))
	}
	return corpus
}

func (s *searchCorpus) String(i int) string { return s.keys[i] }
func (s *searchCorpus) Len() int            { return len(s.keys) }

func (s *Server) handleSearchPosts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query_required", "message": "q parameter is required"})
		return
	}

	records, err := s.deps.Posts.List(c.Request.Context(), interfaces.PostListOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search_failed", "message": err.Error()})
		return
	}

	corpus := newSearchCorpus(records)
	matches := fuzzy.FindFrom(strings.ToLower(query), corpus)

	limit := s.cfg.SearchLimit
	if len(matches) < limit {
		limit = len(matches)
	}
	results := make([]*interfaces.PostRecord, 0, limit)
	for _, match := range matches[:limit] {
		results = append(results, corpus.records[match.Index])
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"posts": summarize(results),
		"total": len(matches),
	})
}

func (s *Server) handleBuild(c *gin.Context) {
	result, err := s.rebuild(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, generator.ErrLintFailed) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": "build_failed", "message": err.Error()})
		return
	}

	payload := gin.H{"status": "ok"}
	if result != nil {
		payload["pages_built"] = result.PagesBuilt
		payload["pages_skipped"] = result.PagesSkipped
		payload["assets_built"] = result.AssetsBuilt
		payload["duration_ms"] = result.Duration.Milliseconds()
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) rebuild(ctx context.Context) (*generator.BuildResult, error) {
	if s.deps.Builder == nil {
		return nil, ErrServerDisabled
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.logger.Info("server.rebuild.start")
	result, err := s.deps.Builder.Build(ctx, generator.BuildOptions{})
	if err != nil {
		return result, err
	}
	if result != nil {
		s.logger.Info("server.rebuild.complete",
			"pages_built", result.PagesBuilt,
			"pages_skipped", result.PagesSkipped,
			"duration_ms", result.Duration.Milliseconds(),
		)
	}
	return result, nil
}

func summarize(records []*interfaces.PostRecord) []postSummary {
	out := make([]postSummary, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		out = append(out, postSummary{
			Slug:        record.Slug,
			Section:     record.Section,
			Title:       record.Title,
			Summary:     record.Summary,
			Author:      record.Author,
			Tags:        record.Tags,
			Permalink:   record.Permalink,
			Status:      record.Status,
			PublishedAt: record.PublishedAt,
		})
	}
	return out
}

// normalizeWatchDirs trims blanks and resolves duplicates before the watcher
// registers them.
func normalizeWatchDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	seen := map[string]struct{}{}
	for _, dir := range dirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		cleaned := filepath.Clean(trimmed)
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

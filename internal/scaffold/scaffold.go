package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Format selects the front matter serialization for scaffolded posts.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrTitleRequired indicates the post cannot be scaffolded without a title.
	ErrTitleRequired = errors.New("scaffold: title is required")
	// ErrFileExists indicates the target file already exists; scaffolding never overwrites.
	ErrFileExists = errors.New("scaffold: file already exists")
	// ErrFormatUnknown indicates an unsupported front matter format.
	ErrFormatUnknown = errors.New("scaffold: unknown front matter format")
)

// Config captures scaffolding defaults.
type Config struct {
	// ContentDir is the root the new file is created under, typically "content".
	ContentDir string
	// Section is the subdirectory posts land in, "posts" by default.
	Section       string
	DefaultLayout string
	DefaultAuthor string
	Format        Format
}

// NewPostRequest describes the post to scaffold.
type NewPostRequest struct {
	Title string
	// Slug overrides the slug derived from the title.
	Slug   string
	Author string
	Layout string
	Tags   []string
	// Format overrides the configured front matter format for this file.
	Format Format
}

// NewPostResult reports where the file was written.
type NewPostResult struct {
	Path    string
	Slug    string
	Content []byte
}

// Option adjusts service construction.
type Option func(*Service)

// WithClock overrides the time source used for file naming and the date field.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service scaffolds new Markdown post files with seeded front matter.
type Service struct {
	cfg Config
	now func() time.Time
}

// New constructs a scaffold service with the supplied defaults.
func New(cfg Config, opts ...Option) *Service {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		cfg.ContentDir = "content"
	}
	if strings.TrimSpace(cfg.Section) == "" {
		cfg.Section = "posts"
	}
	if strings.TrimSpace(cfg.DefaultLayout) == "" {
		cfg.DefaultLayout = "post"
	}
	if cfg.Format == "" {
		cfg.Format = FormatYAML
	}
	s := &Service{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// frontMatter is the seed block written to new posts. Field order matters for
// readability of the generated file.
type frontMatter struct {
	Layout string   `yaml:"layout" toml:"layout"`
	Title  string   `yaml:"title" toml:"title"`
	Date   string   `yaml:"date" toml:"date"`
	Author string   `yaml:"author,omitempty" toml:"author,omitempty"`
	Tags   []string `yaml:"tags,omitempty" toml:"tags,omitempty"`
	Draft  bool     `yaml:"draft" toml:"draft"`
}

// Create writes a new post file named content/<section>/YYYY-MM-DD-<slug>.md.
// It never overwrites an existing file.
func (s *Service) Create(ctx context.Context, req NewPostRequest) (*NewPostResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	postSlug := strings.TrimSpace(req.Slug)
	if postSlug == "" {
		normalized, err := slug.Normalize(title)
		if err != nil {
			return nil, fmt.Errorf("scaffold: derive slug from %q: %w", title, err)
		}
		postSlug = normalized
	} else if !slug.IsValid(postSlug) {
		normalized, err := slug.Normalize(postSlug)
		if err != nil {
			return nil, fmt.Errorf("scaffold: normalize slug %q: %w", req.Slug, err)
		}
		postSlug = normalized
	}

	now := s.now()
	format := req.Format
	if format == "" {
		format = s.cfg.Format
	}

	matter := frontMatter{
		Layout: firstNonEmpty(req.Layout, s.cfg.DefaultLayout),
		Title:  title,
		Date:   now.Format("2006-01-02"),
		Author: firstNonEmpty(req.Author, s.cfg.DefaultAuthor),
		Tags:   req.Tags,
		Draft:  true,
	}

	content, err := renderFile(matter, title, format)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.cfg.ContentDir, s.cfg.Section)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scaffold: create directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s-%s.md", now.Format("2006-01-02"), postSlug)
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("scaffold: %s: %w", path, ErrFileExists)
		}
		return nil, fmt.Errorf("scaffold: create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write(content); err != nil {
		return nil, fmt.Errorf("scaffold: write %s: %w", path, err)
	}

	return &NewPostResult{
		Path:    path,
		Slug:    postSlug,
		Content: content,
	}, nil
}

func renderFile(matter frontMatter, title string, format Format) ([]byte, error) {
	var out strings.Builder
	switch format {
	case FormatYAML:
		encoded, err := yaml.Marshal(matter)
		if err != nil {
			return nil, fmt.Errorf("scaffold: encode front matter: %w", err)
		}
		out.WriteString("---\n")
		out.Write(encoded)
		out.WriteString("---\n")
	case FormatTOML:
		encoded, err := toml.Marshal(matter)
		if err != nil {
			return nil, fmt.Errorf("scaffold: encode front matter: %w", err)
		}
		out.WriteString("+++\n")
		out.Write(encoded)
		out.WriteString("+++\n")
	default:
		return nil, fmt.Errorf("scaffold: %q: %w", format, ErrFormatUnknown)
	}

	out.WriteString("\n# ")
	out.WriteString(title)
	out.WriteString("\n\nWrite your post here.\n")
	return []byte(out.String()), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

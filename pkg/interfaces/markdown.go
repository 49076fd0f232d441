package interfaces

import (
	"context"
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should support reusable parser instances and extension
// toggles so hosts can tailor rendering without rewriting the core service.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService exposes the file workflows the publishing pipeline is built
// on: loading Markdown documents, converting them into HTML, and synchronising
// them with the post store.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
	Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error)
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Document represents a Markdown file with parsed metadata and content. The
// struct is shared between the interfaces package and internal implementations
// so consumers can depend on a stable contract.
type Document struct {
	FilePath    string
	Section     string
	FrontMatter FrontMatter
	Body        []byte
	BodyHTML    []byte
	// LastModified carries the file modification time when the document was
	// loaded from disk; zero when the source was constructed in memory.
	LastModified time.Time
	// Checksum stores a digest of the original file content (typically SHA-256)
	// so sync workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// FrontMatter models the metadata block at the top of a post file. Date and
// Updated stay as the literal strings found in the file; validation and
// parsing happen downstream so malformed values surface as lint findings
// instead of load failures. Unrecognized keys are preserved in Custom and the
// whole block, typed fields included, in Raw.
type FrontMatter struct {
	Layout    string         `yaml:"layout" json:"layout"`
	Title     string         `yaml:"title" json:"title"`
	Slug      string         `yaml:"slug" json:"slug"`
	Summary   string         `yaml:"summary" json:"summary"`
	Author    string         `yaml:"author" json:"author"`
	Date      string         `yaml:"date" json:"date"`
	Updated   string         `yaml:"updated" json:"updated"`
	Tags      []string       `yaml:"tags" json:"tags"`
	Permalink string         `yaml:"permalink" json:"permalink"`
	Reviewers []string       `yaml:"reviewers" json:"reviewers"`
	Draft     bool           `yaml:"draft" json:"draft"`
	Custom    map[string]any `yaml:",inline" json:"custom"`
	Raw       map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive       *bool
	Pattern         string
	SectionPatterns map[string]string
	Parser          ParseOptions
}

// ImportOptions controls how Markdown documents are converted into stored
// posts.
type ImportOptions struct {
	// Section overrides the section detected from the file path.
	Section string
	// DefaultLayout applies when the front matter does not name one.
	DefaultLayout string
	// DefaultAuthor applies when the front matter does not name one.
	DefaultAuthor string
	DryRun        bool
}

// SyncOptions extends ImportOptions to handle update/delete semantics for
// repeated synchronisation runs.
type SyncOptions struct {
	ImportOptions
	ArchiveOrphaned bool
	UpdateExisting  bool
}

// ImportResult reports the outcome of a single import operation, exposing
// counts and slugs so callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	CreatedSlugs []string
	UpdatedSlugs []string
	SkippedSlugs []string
	Errors       []error
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created  int
	Updated  int
	Archived int
	Skipped  int
	Errors   []error
}

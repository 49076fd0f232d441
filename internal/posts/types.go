package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-press/internal/domain"
)

// Post is the canonical record for a piece of site content: a blog
// entry, a standalone page, or a draft awaiting publication.
type Post struct {
	bun.BaseModel `bun:"table:press_posts,alias:p"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug      string    `bun:"slug,notnull" json:"slug"`
	Section   string    `bun:"section,notnull,default:'posts'" json:"section"`
	Layout    string    `bun:"layout,nullzero" json:"layout,omitempty"`
	Title     string    `bun:"title,notnull" json:"title"`
	Summary   *string   `bun:"summary" json:"summary,omitempty"`
	Author    string    `bun:"author,nullzero" json:"author,omitempty"`
	Body      string    `bun:"body,nullzero" json:"body,omitempty"`
	BodyHTML  string    `bun:"body_html,nullzero" json:"body_html,omitempty"`
	Tags      []string  `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Permalink string    `bun:"permalink,nullzero" json:"permalink,omitempty"`
	Reviewers []string  `bun:"reviewers,type:jsonb" json:"reviewers,omitempty"`

	Status      string     `bun:"status,notnull,default:'draft'" json:"status"`
	PublishAt   *time.Time `bun:"publish_at,nullzero" json:"publish_at,omitempty"`
	UnpublishAt *time.Time `bun:"unpublish_at,nullzero" json:"unpublish_at,omitempty"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`

	// SourcePath links the record back to the markdown file it was
	// imported from. Posts created through the API leave it empty.
	SourcePath string `bun:"source_path,nullzero" json:"source_path,omitempty"`
	// Checksum is the hex digest of the source file at import time.
	Checksum string         `bun:"checksum,nullzero" json:"checksum,omitempty"`
	Metadata map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`

	CreatedBy uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy uuid.UUID  `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	EffectiveStatus domain.Status `bun:"-" json:"effective_status,omitempty"`
	IsVisible       bool          `bun:"-" json:"is_visible,omitempty"`
}

// TagCount pairs a tag with the number of visible posts carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}

	copied := *src
	copied.Tags = cloneStrings(src.Tags)
	copied.Reviewers = cloneStrings(src.Reviewers)
	copied.Metadata = cloneMap(src.Metadata)
	copied.Summary = cloneStringPtr(src.Summary)
	copied.PublishAt = cloneTimePtr(src.PublishAt)
	copied.UnpublishAt = cloneTimePtr(src.UnpublishAt)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	copied.DeletedAt = cloneTimePtr(src.DeletedAt)
	return &copied
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

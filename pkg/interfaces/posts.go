package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PostService abstracts the post catalogue so markdown imports and the site
// generator can provision or query records without depending on internal
// implementations.
type PostService interface {
	Create(ctx context.Context, req PostCreateRequest) (*PostRecord, error)
	Update(ctx context.Context, req PostUpdateRequest) (*PostRecord, error)
	// GetBySlug returns (nil, nil) when no record matches so callers can
	// branch on absence without unwrapping error chains.
	GetBySlug(ctx context.Context, slug string, opts PostReadOptions) (*PostRecord, error)
	GetByPermalink(ctx context.Context, permalink string) (*PostRecord, error)
	List(ctx context.Context, opts PostListOptions) ([]*PostRecord, error)
	ListTags(ctx context.Context) ([]TagCount, error)
	Publish(ctx context.Context, req PostPublishRequest) (*PostRecord, error)
	Unpublish(ctx context.Context, req PostUnpublishRequest) (*PostRecord, error)
	Archive(ctx context.Context, id uuid.UUID) (*PostRecord, error)
	Delete(ctx context.Context, req PostDeleteRequest) error
}

// PostReadOptions scopes single-record lookups.
type PostReadOptions struct {
	// Section restricts the lookup; empty matches any section.
	Section string
	// IncludeDeleted also returns soft-deleted records.
	IncludeDeleted bool
}

// PostListOptions filters catalogue listings.
type PostListOptions struct {
	Section string
	Status  string
	Tag     string
	Author  string
	// IncludeDrafts keeps draft records in the listing.
	IncludeDrafts bool
	// IncludeFuture keeps records whose publish time is still ahead of now.
	IncludeFuture bool
	// IncludeDeleted also returns soft-deleted records.
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// PostCreateRequest captures the details required to create a post record.
type PostCreateRequest struct {
	Slug      string
	Section   string
	Layout    string
	Title     string
	Summary   *string
	Author    string
	Body      string
	BodyHTML  string
	Tags      []string
	Permalink string
	Reviewers []string
	Status    string
	// PublishAt defers visibility until the supplied time.
	PublishAt  *time.Time
	SourcePath string
	Checksum   string
	CreatedBy  uuid.UUID
	UpdatedBy  uuid.UUID
	Metadata   map[string]any
}

// PostUpdateRequest captures the mutable fields for an existing record. Nil
// pointers leave the stored value untouched.
type PostUpdateRequest struct {
	ID         uuid.UUID
	Title      *string
	Summary    *string
	Layout     *string
	Author     *string
	Body       *string
	BodyHTML   *string
	Tags       []string
	Permalink  *string
	Reviewers  []string
	Status     *string
	PublishAt  *time.Time
	SourcePath *string
	Checksum   *string
	UpdatedBy  uuid.UUID
	Metadata   map[string]any
}

// PostPublishRequest publishes a record immediately or at a scheduled time.
type PostPublishRequest struct {
	ID uuid.UUID
	// At schedules publication for a future instant; nil publishes now.
	At        *time.Time
	UpdatedBy uuid.UUID
}

// PostUnpublishRequest reverts a record to draft, optionally at a future time.
type PostUnpublishRequest struct {
	ID        uuid.UUID
	At        *time.Time
	UpdatedBy uuid.UUID
}

// PostDeleteRequest captures the information required to remove a post. When
// HardDelete is false, implementations soft-delete where supported.
type PostDeleteRequest struct {
	ID         uuid.UUID
	DeletedBy  uuid.UUID
	HardDelete bool
}

// PostRecord is the transport-neutral projection of a stored post.
type PostRecord struct {
	ID          uuid.UUID
	Slug        string
	Section     string
	Layout      string
	Title       string
	Summary     *string
	Author      string
	Body        string
	BodyHTML    string
	Tags        []string
	Permalink   string
	Reviewers   []string
	Status      string
	PublishAt   *time.Time
	UnpublishAt *time.Time
	PublishedAt *time.Time
	SourcePath  string
	Checksum    string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TagCount pairs a tag with the number of visible posts carrying it.
type TagCount struct {
	Tag   string
	Count int
}

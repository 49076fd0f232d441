package posts

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// ServiceAdapter exposes a posts.Service through the transport-neutral
// interfaces.PostService contract consumed by the markdown importer and
// the generator.
type ServiceAdapter struct {
	service Service
}

// NewServiceAdapter wraps a post service in the interfaces contract.
func NewServiceAdapter(service Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) Create(ctx context.Context, req interfaces.PostCreateRequest) (*interfaces.PostRecord, error) {
	record, err := a.service.Create(ctx, CreatePostRequest{
		Slug:       req.Slug,
		Section:    req.Section,
		Layout:     req.Layout,
		Title:      req.Title,
		Summary:    req.Summary,
		Author:     req.Author,
		Body:       req.Body,
		BodyHTML:   req.BodyHTML,
		Tags:       req.Tags,
		Permalink:  req.Permalink,
		Reviewers:  req.Reviewers,
		Status:     req.Status,
		PublishAt:  req.PublishAt,
		SourcePath: req.SourcePath,
		Checksum:   req.Checksum,
		CreatedBy:  req.CreatedBy,
		UpdatedBy:  req.UpdatedBy,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return toRecord(record), nil
}

func (a *ServiceAdapter) Update(ctx context.Context, req interfaces.PostUpdateRequest) (*interfaces.PostRecord, error) {
	record, err := a.service.Update(ctx, UpdatePostRequest{
		ID:         req.ID,
		Title:      req.Title,
		Summary:    req.Summary,
		Layout:     req.Layout,
		Author:     req.Author,
		Body:       req.Body,
		BodyHTML:   req.BodyHTML,
		Tags:       req.Tags,
		Permalink:  req.Permalink,
		Reviewers:  req.Reviewers,
		Status:     req.Status,
		PublishAt:  req.PublishAt,
		SourcePath: req.SourcePath,
		Checksum:   req.Checksum,
		UpdatedBy:  req.UpdatedBy,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return toRecord(record), nil
}

// GetBySlug returns (nil, nil) on missing records per the interface
// contract so importers can branch on absence.
func (a *ServiceAdapter) GetBySlug(ctx context.Context, slug string, opts interfaces.PostReadOptions) (*interfaces.PostRecord, error) {
	record, err := a.service.GetBySlug(ctx, slug, opts.Section)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	if record != nil && record.DeletedAt != nil && !opts.IncludeDeleted {
		return nil, nil
	}
	return toRecord(record), nil
}

func (a *ServiceAdapter) GetByPermalink(ctx context.Context, permalink string) (*interfaces.PostRecord, error) {
	record, err := a.service.GetByPermalink(ctx, permalink)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return toRecord(record), nil
}

func (a *ServiceAdapter) List(ctx context.Context, opts interfaces.PostListOptions) ([]*interfaces.PostRecord, error) {
	records, err := a.service.List(ctx, ListOptions{
		Section:        opts.Section,
		Status:         opts.Status,
		Tag:            opts.Tag,
		Author:         opts.Author,
		IncludeDrafts:  opts.IncludeDrafts,
		IncludeFuture:  opts.IncludeFuture,
		IncludeDeleted: opts.IncludeDeleted,
		Limit:          opts.Limit,
		Offset:         opts.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*interfaces.PostRecord, 0, len(records))
	for _, record := range records {
		out = append(out, toRecord(record))
	}
	return out, nil
}

func (a *ServiceAdapter) ListTags(ctx context.Context) ([]interfaces.TagCount, error) {
	counts, err := a.service.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.TagCount, 0, len(counts))
	for _, count := range counts {
		out = append(out, interfaces.TagCount{Tag: count.Tag, Count: count.Count})
	}
	return out, nil
}

func (a *ServiceAdapter) Publish(ctx context.Context, req interfaces.PostPublishRequest) (*interfaces.PostRecord, error) {
	record, err := a.service.Publish(ctx, PublishPostRequest{
		ID:          req.ID,
		At:          req.At,
		PublishedBy: req.UpdatedBy,
	})
	if err != nil {
		return nil, err
	}
	return toRecord(record), nil
}

func (a *ServiceAdapter) Unpublish(ctx context.Context, req interfaces.PostUnpublishRequest) (*interfaces.PostRecord, error) {
	record, err := a.service.Unpublish(ctx, UnpublishPostRequest{
		ID:            req.ID,
		At:            req.At,
		UnpublishedBy: req.UpdatedBy,
	})
	if err != nil {
		return nil, err
	}
	return toRecord(record), nil
}

func (a *ServiceAdapter) Archive(ctx context.Context, id uuid.UUID) (*interfaces.PostRecord, error) {
	record, err := a.service.Archive(ctx, ArchivePostRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return toRecord(record), nil
}

func (a *ServiceAdapter) Delete(ctx context.Context, req interfaces.PostDeleteRequest) error {
	return a.service.Delete(ctx, DeletePostRequest{
		ID:         req.ID,
		DeletedBy:  req.DeletedBy,
		HardDelete: req.HardDelete,
	})
}

func toRecord(record *Post) *interfaces.PostRecord {
	if record == nil {
		return nil
	}
	return &interfaces.PostRecord{
		ID:          record.ID,
		Slug:        record.Slug,
		Section:     record.Section,
		Layout:      record.Layout,
		Title:       record.Title,
		Summary:     cloneStringPtr(record.Summary),
		Author:      record.Author,
		Body:        record.Body,
		BodyHTML:    record.BodyHTML,
		Tags:        cloneStrings(record.Tags),
		Permalink:   record.Permalink,
		Reviewers:   cloneStrings(record.Reviewers),
		Status:      record.Status,
		PublishAt:   cloneTimePtr(record.PublishAt),
		UnpublishAt: cloneTimePtr(record.UnpublishAt),
		PublishedAt: cloneTimePtr(record.PublishedAt),
		SourcePath:  record.SourcePath,
		Checksum:    record.Checksum,
		Metadata:    cloneMap(record.Metadata),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

package posts

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-press/internal/domain"
)

type BunPostRepository struct {
	db   *bun.DB
	repo repository.Repository[*Post]
}

func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

// NewBunPostRepositoryWithCache constructs a PostRepository backed by
// bun with optional read-through caching.
func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPostRepository {
	base := NewPostRepository(db)
	return &BunPostRepository{
		db:   db,
		repo: wrapWithCache(base, cacheService, keySerializer),
	}
}

func (r *BunPostRepository) Create(ctx context.Context, record *Post) (*Post, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "post", id.String())
	}
	return result, nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug, section string) (*Post, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.slug = ?", slug).
				Where("?TableAlias.deleted_at IS NULL")
			if section != "" {
				q = q.Where("?TableAlias.section = ?", section)
			}
			return q
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "post", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return records[0], nil
}

func (r *BunPostRepository) GetByPermalink(ctx context.Context, permalink string) (*Post, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.permalink = ?", permalink)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "post", permalink)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "post", Key: permalink}
	}
	return records[0], nil
}

func (r *BunPostRepository) List(ctx context.Context, filter ListFilter) ([]*Post, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if !filter.IncludeDeleted {
				q = q.Where("?TableAlias.deleted_at IS NULL")
			}
			if filter.Section != "" {
				q = q.Where("?TableAlias.section = ?", filter.Section)
			}
			if filter.Status != "" {
				q = q.Where("?TableAlias.status = ?", string(domain.NormalizeStatus(filter.Status)))
			}
			return q.OrderExpr("COALESCE(?TableAlias.publish_at, ?TableAlias.published_at, ?TableAlias.created_at) DESC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "post", "")
	}
	return records, nil
}

func (r *BunPostRepository) Update(ctx context.Context, record *Post) (*Post, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"layout",
			"title",
			"summary",
			"author",
			"body",
			"body_html",
			"tags",
			"permalink",
			"reviewers",
			"status",
			"publish_at",
			"unpublish_at",
			"published_at",
			"source_path",
			"checksum",
			"metadata",
			"deleted_at",
			"updated_by",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "post", record.ID.String())
	}
	return updated, nil
}

func (r *BunPostRepository) Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error {
	if r.db == nil {
		return fmt.Errorf("post repository: database not configured")
	}

	if !hardDelete {
		record, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		record.DeletedAt = &now
		record.UpdatedAt = now
		_, err = r.Update(ctx, record)
		return err
	}

	result, err := r.db.NewDelete().
		Model((*Post)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("post delete rows affected: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "post", Key: id.String()}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

package posts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/domain"
)

// MemoryPostRepository is an in-memory implementation for scaffolding
// and tests.
type MemoryPostRepository struct {
	mu             sync.RWMutex
	records        map[uuid.UUID]*Post
	slugIndex      map[string]uuid.UUID
	permalinkIndex map[string]uuid.UUID
}

// NewMemoryPostRepository creates an empty in-memory post repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		records:        make(map[uuid.UUID]*Post),
		slugIndex:      make(map[string]uuid.UUID),
		permalinkIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied post.
func (m *MemoryPostRepository) Create(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePost(record)
	m.records[copied.ID] = copied
	m.slugIndex[slugKey(copied.Section, copied.Slug)] = copied.ID
	if copied.Permalink != "" {
		m.permalinkIndex[copied.Permalink] = copied.ID
	}
	return clonePost(copied), nil
}

// GetByID retrieves a post by identifier.
func (m *MemoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(rec), nil
}

// GetBySlug retrieves a post by slug. An empty section matches any
// section; soft-deleted records are skipped.
func (m *MemoryPostRepository) GetBySlug(_ context.Context, slug, section string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if section != "" {
		id, ok := m.slugIndex[slugKey(section, slug)]
		if !ok {
			return nil, &NotFoundError{Resource: "post", Key: slug}
		}
		rec := m.records[id]
		if rec == nil || rec.DeletedAt != nil {
			return nil, &NotFoundError{Resource: "post", Key: slug}
		}
		return clonePost(rec), nil
	}

	for _, rec := range m.records {
		if rec.DeletedAt != nil {
			continue
		}
		if rec.Slug == slug {
			return clonePost(rec), nil
		}
	}
	return nil, &NotFoundError{Resource: "post", Key: slug}
}

// GetByPermalink retrieves the post that owns a permalink.
func (m *MemoryPostRepository) GetByPermalink(_ context.Context, permalink string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.permalinkIndex[permalink]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: permalink}
	}
	rec := m.records[id]
	if rec == nil || rec.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "post", Key: permalink}
	}
	return clonePost(rec), nil
}

// List returns posts matching the filter in arbitrary order.
func (m *MemoryPostRepository) List(_ context.Context, filter ListFilter) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.records))
	for _, rec := range m.records {
		if rec.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Section != "" && rec.Section != filter.Section {
			continue
		}
		if filter.Status != "" && domain.NormalizeStatus(rec.Status) != domain.NormalizeStatus(filter.Status) {
			continue
		}
		out = append(out, clonePost(rec))
	}
	return out, nil
}

// Update replaces the stored post.
func (m *MemoryPostRepository) Update(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: record.ID.String()}
	}

	delete(m.slugIndex, slugKey(prev.Section, prev.Slug))
	if prev.Permalink != "" {
		delete(m.permalinkIndex, prev.Permalink)
	}

	copied := clonePost(record)
	m.records[copied.ID] = copied
	m.slugIndex[slugKey(copied.Section, copied.Slug)] = copied.ID
	if copied.Permalink != "" {
		m.permalinkIndex[copied.Permalink] = copied.ID
	}
	return clonePost(copied), nil
}

// Delete removes a post. Soft deletes keep the record with a deletion
// stamp so hard reimports can resurrect it.
func (m *MemoryPostRepository) Delete(_ context.Context, id uuid.UUID, hardDelete bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: "post", Key: id.String()}
	}

	if hardDelete {
		delete(m.records, id)
		delete(m.slugIndex, slugKey(rec.Section, rec.Slug))
		if rec.Permalink != "" {
			delete(m.permalinkIndex, rec.Permalink)
		}
		return nil
	}

	now := time.Now().UTC()
	rec.DeletedAt = &now
	return nil
}

func slugKey(section, slug string) string {
	return strings.ToLower(section) + "\x00" + slug
}

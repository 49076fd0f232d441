package posts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/domain"
	pressscheduler "github.com/goliatone/go-press/internal/scheduler"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Service exposes the post catalogue use-cases.
type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*Post, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug, section string) (*Post, error)
	GetByPermalink(ctx context.Context, permalink string) (*Post, error)
	List(ctx context.Context, opts ListOptions) ([]*Post, error)
	ListTags(ctx context.Context) ([]TagCount, error)
	Publish(ctx context.Context, req PublishPostRequest) (*Post, error)
	Unpublish(ctx context.Context, req UnpublishPostRequest) (*Post, error)
	Archive(ctx context.Context, req ArchivePostRequest) (*Post, error)
	Delete(ctx context.Context, req DeletePostRequest) error
}

// CreatePostRequest captures the information required to create a post.
type CreatePostRequest struct {
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
	// PublishAt defers visibility until the supplied instant.
	PublishAt  *time.Time
	SourcePath string
	Checksum   string
	CreatedBy  uuid.UUID
	UpdatedBy  uuid.UUID
	Metadata   map[string]any
}

// UpdatePostRequest captures mutable fields for an existing post. Nil
// pointers leave the stored value untouched.
type UpdatePostRequest struct {
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

// PublishPostRequest publishes a post immediately or at a future time.
type PublishPostRequest struct {
	ID uuid.UUID
	// At schedules publication; nil or a past instant publishes now.
	At          *time.Time
	PublishedBy uuid.UUID
}

// UnpublishPostRequest reverts a post to draft, optionally at a future time.
type UnpublishPostRequest struct {
	ID            uuid.UUID
	At            *time.Time
	UnpublishedBy uuid.UUID
}

// ArchivePostRequest retires a post from all listings while keeping the record.
type ArchivePostRequest struct {
	ID         uuid.UUID
	ArchivedBy uuid.UUID
}

// DeletePostRequest captures the information required to remove a post.
type DeletePostRequest struct {
	ID         uuid.UUID
	DeletedBy  uuid.UUID
	HardDelete bool
}

// ListOptions filters catalogue listings. The zero value lists visible
// published posts across every section.
type ListOptions struct {
	Section string
	// Status filters on the stored lifecycle state and bypasses the
	// visibility rules below.
	Status string
	Tag    string
	Author string
	// IncludeDrafts keeps draft posts in the listing.
	IncludeDrafts bool
	// IncludeFuture keeps posts whose publish time is still ahead.
	IncludeFuture bool
	// IncludeDeleted also returns soft-deleted posts.
	IncludeDeleted bool
	Limit          int
	Offset         int
}

var (
	ErrSlugRequired             = errors.New("posts: slug is required")
	ErrSlugInvalid              = errors.New("posts: slug contains invalid characters")
	ErrSlugExists               = errors.New("posts: slug already exists in section")
	ErrTitleRequired            = errors.New("posts: title is required")
	ErrPostIDRequired           = errors.New("posts: post id required")
	ErrStatusInvalid            = errors.New("posts: unknown status")
	ErrPermalinkExists          = errors.New("posts: permalink already in use")
	ErrSchedulingDisabled       = errors.New("posts: scheduling feature disabled")
	ErrScheduleTimestampInvalid = errors.New("posts: schedule timestamp is invalid")
)

// PostRepository abstracts storage operations for post records.
type PostRepository interface {
	Create(ctx context.Context, record *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	// GetBySlug scopes the lookup to a section; an empty section
	// matches any. Soft-deleted records are not returned.
	GetBySlug(ctx context.Context, slug, section string) (*Post, error)
	GetByPermalink(ctx context.Context, permalink string) (*Post, error)
	List(ctx context.Context, filter ListFilter) ([]*Post, error)
	Update(ctx context.Context, record *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error
}

// ListFilter narrows repository listings before service-level
// visibility rules apply.
type ListFilter struct {
	Section        string
	Status         string
	IncludeDeleted bool
}

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithScheduler overrides the scheduler used to register publish and
// unpublish jobs.
func WithScheduler(scheduler interfaces.Scheduler) ServiceOption {
	return func(s *service) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// WithSchedulingEnabled toggles deferred publish workflows.
func WithSchedulingEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.schedulingEnabled = enabled
	}
}

// WithActivity wires the notifier that receives catalogue events.
func WithActivity(notifier activity.Notifier) ServiceOption {
	return func(s *service) {
		if notifier != nil {
			s.activity = notifier
		}
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) ServiceOption {
	return func(s *service) {
		if strings.TrimSpace(channel) != "" {
			s.channel = strings.TrimSpace(channel)
		}
	}
}

// WithLogger attaches a logger for catalogue diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// service implements Service.
type service struct {
	repo              PostRepository
	now               func() time.Time
	id                IDGenerator
	scheduler         interfaces.Scheduler
	schedulingEnabled bool
	activity          activity.Notifier
	channel           string
	logger            interfaces.Logger
}

// NewService constructs a post service backed by the supplied repository.
func NewService(repo PostRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:      repo,
		now:       time.Now,
		id:        uuid.New,
		scheduler: pressscheduler.NewNoOp(),
		activity:  activity.NewNoOp(),
		channel:   "press",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates and stores a new post record.
func (s *service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if !isValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrSlugInvalid, slug)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := domain.NormalizeStatus(req.Status)
	if !domain.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrStatusInvalid, req.Status)
	}

	section := chooseSection(req.Section)

	if existing, err := s.repo.GetBySlug(ctx, slug, section); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrSlugExists, section, slug)
	} else if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	permalink := strings.TrimSpace(req.Permalink)
	if permalink != "" {
		if err := s.ensurePermalinkFree(ctx, permalink, uuid.Nil); err != nil {
			return nil, err
		}
	}

	now := s.now()
	record := &Post{
		ID:         s.id(),
		Slug:       slug,
		Section:    section,
		Layout:     strings.TrimSpace(req.Layout),
		Title:      title,
		Summary:    cloneStringPtr(req.Summary),
		Author:     strings.TrimSpace(req.Author),
		Body:       req.Body,
		BodyHTML:   req.BodyHTML,
		Tags:       cloneStrings(req.Tags),
		Permalink:  permalink,
		Reviewers:  cloneStrings(req.Reviewers),
		Status:     string(status),
		PublishAt:  cloneTimePtr(req.PublishAt),
		SourcePath: strings.TrimSpace(req.SourcePath),
		Checksum:   strings.TrimSpace(req.Checksum),
		Metadata:   cloneMap(req.Metadata),
		CreatedBy:  req.CreatedBy,
		UpdatedBy:  req.UpdatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if status == domain.StatusPublished {
		publishedAt := now
		if record.PublishAt != nil && record.PublishAt.Before(now) {
			publishedAt = *record.PublishAt
		}
		record.PublishedAt = &publishedAt
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "create", created, req.CreatedBy)
	return s.decorate(created), nil
}

// Update applies the supplied mutations to an existing post.
func (s *service) Update(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		record.Title = title
	}
	if req.Summary != nil {
		record.Summary = cloneStringPtr(req.Summary)
	}
	if req.Layout != nil {
		record.Layout = strings.TrimSpace(*req.Layout)
	}
	if req.Author != nil {
		record.Author = strings.TrimSpace(*req.Author)
	}
	if req.Body != nil {
		record.Body = *req.Body
	}
	if req.BodyHTML != nil {
		record.BodyHTML = *req.BodyHTML
	}
	if req.Tags != nil {
		record.Tags = cloneStrings(req.Tags)
	}
	if req.Reviewers != nil {
		record.Reviewers = cloneStrings(req.Reviewers)
	}
	if req.Permalink != nil {
		permalink := strings.TrimSpace(*req.Permalink)
		if permalink != "" && permalink != record.Permalink {
			if err := s.ensurePermalinkFree(ctx, permalink, record.ID); err != nil {
				return nil, err
			}
		}
		record.Permalink = permalink
	}
	if req.Status != nil {
		status := domain.NormalizeStatus(*req.Status)
		if !domain.IsValidStatus(status) {
			return nil, fmt.Errorf("%w: %q", ErrStatusInvalid, *req.Status)
		}
		if status == domain.StatusPublished && record.PublishedAt == nil {
			publishedAt := s.now()
			record.PublishedAt = &publishedAt
		}
		record.Status = string(status)
	}
	if req.PublishAt != nil {
		record.PublishAt = cloneTimePtr(req.PublishAt)
	}
	if req.SourcePath != nil {
		record.SourcePath = strings.TrimSpace(*req.SourcePath)
	}
	if req.Checksum != nil {
		record.Checksum = strings.TrimSpace(*req.Checksum)
	}
	if req.Metadata != nil {
		record.Metadata = cloneMap(req.Metadata)
	}

	record.UpdatedAt = s.now()
	if req.UpdatedBy != uuid.Nil {
		record.UpdatedBy = req.UpdatedBy
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "update", updated, req.UpdatedBy)
	return s.decorate(updated), nil
}

// Get fetches a post by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(record), nil
}

// GetBySlug fetches a post by slug, optionally scoped to a section.
func (s *service) GetBySlug(ctx context.Context, slug, section string) (*Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	record, err := s.repo.GetBySlug(ctx, slug, strings.TrimSpace(section))
	if err != nil {
		return nil, err
	}
	return s.decorate(record), nil
}

// GetByPermalink fetches the post that owns the supplied permalink.
func (s *service) GetByPermalink(ctx context.Context, permalink string) (*Post, error) {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" {
		return nil, &NotFoundError{Resource: "post"}
	}
	record, err := s.repo.GetByPermalink(ctx, permalink)
	if err != nil {
		return nil, err
	}
	return s.decorate(record), nil
}

// List returns posts matching the supplied options, newest first.
func (s *service) List(ctx context.Context, opts ListOptions) ([]*Post, error) {
	records, err := s.repo.List(ctx, ListFilter{
		Section:        strings.TrimSpace(opts.Section),
		Status:         strings.TrimSpace(opts.Status),
		IncludeDeleted: opts.IncludeDeleted,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	filtered := make([]*Post, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		s.decorateAt(record, now)
		if !s.matches(record, opts) {
			continue
		}
		filtered = append(filtered, record)
	}

	sortByPublishTime(filtered)
	return paginate(filtered, opts.Offset, opts.Limit), nil
}

// ListTags aggregates tags across visible posts, most used first.
func (s *service) ListTags(ctx context.Context) ([]TagCount, error) {
	records, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, record := range records {
		for _, tag := range record.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// Publish makes a post visible now or registers a scheduler job for a
// future instant.
func (s *service) Publish(ctx context.Context, req PublishPostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	if req.At != nil && req.At.IsZero() {
		return nil, ErrScheduleTimestampInvalid
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if req.At != nil && req.At.After(now) {
		if !s.schedulingEnabled {
			return nil, ErrSchedulingDisabled
		}
		record.Status = string(domain.StatusScheduled)
		record.PublishAt = cloneTimePtr(req.At)

		payload := map[string]any{"post_id": record.ID.String()}
		if req.PublishedBy != uuid.Nil {
			payload["published_by"] = req.PublishedBy.String()
		}
		if _, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:     pressscheduler.PostPublishJobKey(record.ID),
			Type:    pressscheduler.JobTypePostPublish,
			RunAt:   *req.At,
			Payload: payload,
		}); err != nil {
			return nil, err
		}
	} else {
		publishedAt := now
		if req.At != nil {
			publishedAt = *req.At
		}
		record.Status = string(domain.StatusPublished)
		record.PublishAt = cloneTimePtr(req.At)
		record.PublishedAt = &publishedAt
		record.UnpublishAt = nil

		if cancelErr := s.scheduler.CancelByKey(ctx, pressscheduler.PostPublishJobKey(record.ID)); cancelErr != nil && !errors.Is(cancelErr, interfaces.ErrJobNotFound) {
			return nil, cancelErr
		}
	}

	record.UpdatedAt = now
	if req.PublishedBy != uuid.Nil {
		record.UpdatedBy = req.PublishedBy
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "publish", updated, req.PublishedBy)
	return s.decorate(updated), nil
}

// Unpublish reverts a post to draft now or registers a deferred
// unpublish job.
func (s *service) Unpublish(ctx context.Context, req UnpublishPostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	if req.At != nil && req.At.IsZero() {
		return nil, ErrScheduleTimestampInvalid
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if req.At != nil && req.At.After(now) {
		if !s.schedulingEnabled {
			return nil, ErrSchedulingDisabled
		}
		record.UnpublishAt = cloneTimePtr(req.At)

		payload := map[string]any{"post_id": record.ID.String()}
		if req.UnpublishedBy != uuid.Nil {
			payload["unpublished_by"] = req.UnpublishedBy.String()
		}
		if _, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:     pressscheduler.PostUnpublishJobKey(record.ID),
			Type:    pressscheduler.JobTypePostUnpublish,
			RunAt:   *req.At,
			Payload: payload,
		}); err != nil {
			return nil, err
		}
	} else {
		record.Status = string(domain.StatusDraft)
		record.PublishAt = nil
		record.UnpublishAt = nil

		for _, key := range []string{pressscheduler.PostPublishJobKey(record.ID), pressscheduler.PostUnpublishJobKey(record.ID)} {
			if cancelErr := s.scheduler.CancelByKey(ctx, key); cancelErr != nil && !errors.Is(cancelErr, interfaces.ErrJobNotFound) {
				return nil, cancelErr
			}
		}
	}

	record.UpdatedAt = now
	if req.UnpublishedBy != uuid.Nil {
		record.UpdatedBy = req.UnpublishedBy
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "unpublish", updated, req.UnpublishedBy)
	return s.decorate(updated), nil
}

// Archive retires a post from every listing while keeping the record.
func (s *service) Archive(ctx context.Context, req ArchivePostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	record.Status = string(domain.StatusArchived)
	record.PublishAt = nil
	record.UnpublishAt = nil
	record.UpdatedAt = s.now()
	if req.ArchivedBy != uuid.Nil {
		record.UpdatedBy = req.ArchivedBy
	}

	for _, key := range []string{pressscheduler.PostPublishJobKey(record.ID), pressscheduler.PostUnpublishJobKey(record.ID)} {
		if cancelErr := s.scheduler.CancelByKey(ctx, key); cancelErr != nil && !errors.Is(cancelErr, interfaces.ErrJobNotFound) {
			return nil, cancelErr
		}
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "archive", updated, req.ArchivedBy)
	return s.decorate(updated), nil
}

// Delete removes a post. Soft deletes keep the row with a deletion stamp.
func (s *service) Delete(ctx context.Context, req DeletePostRequest) error {
	if req.ID == uuid.Nil {
		return ErrPostIDRequired
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	for _, key := range []string{pressscheduler.PostPublishJobKey(record.ID), pressscheduler.PostUnpublishJobKey(record.ID)} {
		if cancelErr := s.scheduler.CancelByKey(ctx, key); cancelErr != nil && !errors.Is(cancelErr, interfaces.ErrJobNotFound) {
			return cancelErr
		}
	}

	if err := s.repo.Delete(ctx, req.ID, req.HardDelete); err != nil {
		return err
	}

	s.emit(ctx, "delete", record, req.DeletedBy)
	return nil
}

func (s *service) ensurePermalinkFree(ctx context.Context, permalink string, selfID uuid.UUID) error {
	existing, err := s.repo.GetByPermalink(ctx, permalink)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: %s", ErrPermalinkExists, permalink)
	}
	return nil
}

func (s *service) matches(record *Post, opts ListOptions) bool {
	if opts.Tag != "" && !containsFold(record.Tags, opts.Tag) {
		return false
	}
	if opts.Author != "" && !strings.EqualFold(record.Author, opts.Author) {
		return false
	}

	if opts.Status != "" {
		return domain.NormalizeStatus(record.Status) == domain.NormalizeStatus(opts.Status)
	}

	switch record.EffectiveStatus {
	case domain.StatusPublished:
		return true
	case domain.StatusDraft:
		return opts.IncludeDrafts
	case domain.StatusScheduled:
		return opts.IncludeFuture
	default:
		return false
	}
}

func (s *service) decorate(record *Post) *Post {
	return s.decorateAt(record, s.now())
}

func (s *service) decorateAt(record *Post, now time.Time) *Post {
	if record == nil {
		return nil
	}
	status := effectivePostStatus(record, now)
	record.EffectiveStatus = status
	record.IsVisible = status == domain.StatusPublished
	return record
}

func (s *service) emit(ctx context.Context, verb string, record *Post, actor uuid.UUID) {
	if s.activity == nil || record == nil {
		return
	}

	event := activity.Event{
		Verb:           verb,
		ObjectType:     "post",
		ObjectID:       record.ID.String(),
		ObjectSlug:     record.Slug,
		Channel:        s.channel,
		DefinitionCode: "post:" + verb,
		OccurredAt:     s.now(),
		Metadata: map[string]any{
			"section": record.Section,
			"status":  record.Status,
		},
	}
	if actor != uuid.Nil {
		event.ActorID = actor.String()
	}

	if err := s.activity.Notify(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("activity notify failed", "verb", verb, "slug", record.Slug, "error", err)
	}
}

// effectivePostStatus resolves the externally visible state at the
// supplied instant. Explicit draft and archived states win over dates;
// a published post with a pending publish time reports as scheduled.
func effectivePostStatus(record *Post, now time.Time) domain.Status {
	if record == nil {
		return domain.StatusDraft
	}

	status := domain.NormalizeStatus(record.Status)
	switch status {
	case domain.StatusDraft, domain.StatusArchived:
		return status
	}

	if record.UnpublishAt != nil && !record.UnpublishAt.After(now) {
		return domain.StatusArchived
	}
	if status == domain.StatusPublished && record.PublishAt != nil && record.PublishAt.After(now) {
		return domain.StatusScheduled
	}
	return domain.EffectiveStatus(status, record.PublishAt, now)
}

func sortByPublishTime(records []*Post) {
	sort.SliceStable(records, func(i, j int) bool {
		return publishSortKey(records[i]).After(publishSortKey(records[j]))
	})
}

func publishSortKey(record *Post) time.Time {
	switch {
	case record.PublishAt != nil:
		return *record.PublishAt
	case record.PublishedAt != nil:
		return *record.PublishedAt
	default:
		return record.CreatedAt
	}
}

func paginate(records []*Post, offset, limit int) []*Post {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []*Post{}
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

func chooseSection(section string) string {
	section = strings.TrimSpace(section)
	if section == "" {
		return "posts"
	}
	return strings.ToLower(section)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func isValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

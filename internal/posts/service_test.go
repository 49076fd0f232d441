package posts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/domain"
	"github.com/goliatone/go-press/internal/posts"
	pressscheduler "github.com/goliatone/go-press/internal/scheduler"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/google/uuid"
)

func newTestService(t *testing.T, now time.Time, opts ...posts.ServiceOption) (posts.Service, *posts.MemoryPostRepository) {
	t.Helper()
	repo := posts.NewMemoryPostRepository()
	all := append([]posts.ServiceOption{posts.WithClock(func() time.Time { return now })}, opts...)
	return posts.NewService(repo, all...), repo
}

func TestServiceCreateSuccess(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	authorID := uuid.New()
	summary := "Optionals without the fear."
	record, err := svc.Create(context.Background(), posts.CreatePostRequest{
		Slug:      "swift-optionals",
		Layout:    "post",
		Title:     "Swift Optionals",
		Summary:   &summary,
		Author:    "Mattt",
		Body:      "# Optionals\n\nValue or nil.",
		Tags:      []string{"swift", "language"},
		Reviewers: []string{"nate"},
		Status:    "published",
		CreatedBy: authorID,
		UpdatedBy: authorID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if record.Slug != "swift-optionals" {
		t.Fatalf("expected slug swift-optionals got %q", record.Slug)
	}
	if record.Section != "posts" {
		t.Fatalf("expected default section posts got %q", record.Section)
	}
	if record.Status != string(domain.StatusPublished) {
		t.Fatalf("expected published status got %s", record.Status)
	}
	if record.PublishedAt == nil || !record.PublishedAt.Equal(now) {
		t.Fatalf("expected published_at %v got %v", now, record.PublishedAt)
	}
	if record.EffectiveStatus != domain.StatusPublished || !record.IsVisible {
		t.Fatalf("expected visible published post, got %s visible=%v", record.EffectiveStatus, record.IsVisible)
	}
	if len(record.Tags) != 2 || record.Tags[0] != "swift" {
		t.Fatalf("unexpected tags %v", record.Tags)
	}
	if len(record.Reviewers) != 1 || record.Reviewers[0] != "nate" {
		t.Fatalf("unexpected reviewers %v", record.Reviewers)
	}
	if !record.CreatedAt.Equal(now) || !record.UpdatedAt.Equal(now) {
		t.Fatalf("expected create stamps %v, got %v/%v", now, record.CreatedAt, record.UpdatedAt)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	cases := []struct {
		name string
		req  posts.CreatePostRequest
		want error
	}{
		{
			name: "missing slug",
			req:  posts.CreatePostRequest{Title: "No Slug"},
			want: posts.ErrSlugRequired,
		},
		{
			name: "invalid slug",
			req:  posts.CreatePostRequest{Slug: "Hello World!", Title: "Bad Slug"},
			want: posts.ErrSlugInvalid,
		},
		{
			name: "missing title",
			req:  posts.CreatePostRequest{Slug: "untitled"},
			want: posts.ErrTitleRequired,
		},
		{
			name: "unknown status",
			req:  posts.CreatePostRequest{Slug: "odd-status", Title: "Odd", Status: "pending"},
			want: posts.ErrStatusInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}

func TestServiceCreateAcceptsDottedSlug(t *testing.T) {
	now := time.Date(2014, 9, 15, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	record, err := svc.Create(context.Background(), posts.CreatePostRequest{
		Slug:  "swift-1.0",
		Title: "Swift 1.0",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.Slug != "swift-1.0" {
		t.Fatalf("expected slug swift-1.0 got %q", record.Slug)
	}
}

func TestServiceCreateDuplicateSlug(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "about", Title: "About"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "about", Title: "About again"})
	if !errors.Is(err, posts.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists got %v", err)
	}

	// The same slug is fine in another section.
	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "about", Section: "pages", Title: "About page"}); err != nil {
		t.Fatalf("create in other section: %v", err)
	}
}

func TestServiceCreateDuplicatePermalink(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	if _, err := svc.Create(ctx, posts.CreatePostRequest{
		Slug:      "first",
		Title:     "First",
		Permalink: "/2014/04/first/",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, posts.CreatePostRequest{
		Slug:      "second",
		Title:     "Second",
		Permalink: "/2014/04/first/",
	})
	if !errors.Is(err, posts.ErrPermalinkExists) {
		t.Fatalf("expected ErrPermalinkExists got %v", err)
	}
}

func TestServiceUpdateLeavesUnsetFieldsAlone(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	summary := "Original summary"
	record, err := svc.Create(ctx, posts.CreatePostRequest{
		Slug:    "mutable",
		Title:   "Original",
		Summary: &summary,
		Author:  "Mattt",
		Body:    "original body",
		Tags:    []string{"swift"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	editorID := uuid.New()
	title := "Renamed"
	updated, err := svc.Update(ctx, posts.UpdatePostRequest{
		ID:        record.ID,
		Title:     &title,
		UpdatedBy: editorID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "Renamed" {
		t.Fatalf("expected renamed title got %q", updated.Title)
	}
	if updated.Summary == nil || *updated.Summary != "Original summary" {
		t.Fatalf("expected summary untouched got %v", updated.Summary)
	}
	if updated.Author != "Mattt" {
		t.Fatalf("expected author untouched got %q", updated.Author)
	}
	if updated.Body != "original body" {
		t.Fatalf("expected body untouched got %q", updated.Body)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "swift" {
		t.Fatalf("expected tags untouched got %v", updated.Tags)
	}
	if updated.UpdatedBy != editorID {
		t.Fatalf("expected updated_by %s got %s", editorID, updated.UpdatedBy)
	}
}

func TestServiceUpdateStatusBackfillsPublishedAt(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "late-publish", Title: "Late", Status: "draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.PublishedAt != nil {
		t.Fatalf("draft should not carry published_at")
	}

	status := "published"
	updated, err := svc.Update(ctx, posts.UpdatePostRequest{ID: record.ID, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(now) {
		t.Fatalf("expected published_at backfilled to %v got %v", now, updated.PublishedAt)
	}
}

func TestServiceGetBySlugSectionScoped(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "about", Section: "pages", Title: "About page"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err := svc.GetBySlug(ctx, "about", "pages")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if record.Section != "pages" {
		t.Fatalf("expected pages section got %q", record.Section)
	}

	// Unscoped lookup also resolves.
	if _, err := svc.GetBySlug(ctx, "about", ""); err != nil {
		t.Fatalf("unscoped get by slug: %v", err)
	}

	_, err = svc.GetBySlug(ctx, "about", "posts")
	var notFound *posts.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found in posts section got %v", err)
	}
}

func TestServiceGetByPermalink(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	created, err := svc.Create(ctx, posts.CreatePostRequest{
		Slug:      "linked",
		Title:     "Linked",
		Permalink: "/2014/04/linked/",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err := svc.GetByPermalink(ctx, "/2014/04/linked/")
	if err != nil {
		t.Fatalf("get by permalink: %v", err)
	}
	if record.ID != created.ID {
		t.Fatalf("expected %s got %s", created.ID, record.ID)
	}

	_, err = svc.GetByPermalink(ctx, "/2014/04/unknown/")
	var notFound *posts.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestServiceListVisibilityRules(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "live", Title: "Live", Status: "published"}); err != nil {
		t.Fatalf("create live: %v", err)
	}
	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "wip", Title: "WIP", Status: "draft"}); err != nil {
		t.Fatalf("create wip: %v", err)
	}
	future := now.Add(48 * time.Hour)
	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "upcoming", Title: "Upcoming", Status: "published", PublishAt: &future}); err != nil {
		t.Fatalf("create upcoming: %v", err)
	}
	if _, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "retired", Title: "Retired", Status: "archived"}); err != nil {
		t.Fatalf("create retired: %v", err)
	}

	visible, err := svc.List(ctx, posts.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].Slug != "live" {
		t.Fatalf("expected only live post, got %v", slugsOf(visible))
	}

	withDrafts, err := svc.List(ctx, posts.ListOptions{IncludeDrafts: true})
	if err != nil {
		t.Fatalf("list with drafts: %v", err)
	}
	if len(withDrafts) != 2 {
		t.Fatalf("expected live+wip, got %v", slugsOf(withDrafts))
	}

	withFuture, err := svc.List(ctx, posts.ListOptions{IncludeFuture: true})
	if err != nil {
		t.Fatalf("list with future: %v", err)
	}
	if len(withFuture) != 2 {
		t.Fatalf("expected live+upcoming, got %v", slugsOf(withFuture))
	}
	if withFuture[0].Slug != "upcoming" {
		t.Fatalf("expected future post sorted first, got %v", slugsOf(withFuture))
	}

	archivedOnly, err := svc.List(ctx, posts.ListOptions{Status: "archived"})
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(archivedOnly) != 1 || archivedOnly[0].Slug != "retired" {
		t.Fatalf("expected retired post, got %v", slugsOf(archivedOnly))
	}
}

func TestServiceListFilters(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	seed := []posts.CreatePostRequest{
		{Slug: "swift-one", Title: "Swift One", Status: "published", Author: "Mattt", Tags: []string{"swift"}},
		{Slug: "swift-two", Title: "Swift Two", Status: "published", Author: "Nate", Tags: []string{"Swift", "testing"}},
		{Slug: "objc-one", Title: "ObjC One", Status: "published", Author: "Mattt", Tags: []string{"objective-c"}},
		{Slug: "colophon", Title: "Colophon", Section: "pages", Status: "published"},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("seed %s: %v", req.Slug, err)
		}
	}

	bySection, err := svc.List(ctx, posts.ListOptions{Section: "pages"})
	if err != nil {
		t.Fatalf("list by section: %v", err)
	}
	if len(bySection) != 1 || bySection[0].Slug != "colophon" {
		t.Fatalf("expected colophon, got %v", slugsOf(bySection))
	}

	byTag, err := svc.List(ctx, posts.ListOptions{Tag: "swift"})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(byTag) != 2 {
		t.Fatalf("expected 2 swift posts, got %v", slugsOf(byTag))
	}

	byAuthor, err := svc.List(ctx, posts.ListOptions{Author: "mattt"})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(byAuthor) != 2 {
		t.Fatalf("expected 2 posts by Mattt, got %v", slugsOf(byAuthor))
	}

	paged, err := svc.List(ctx, posts.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if len(paged) != 2 {
		t.Fatalf("expected 2 paged posts, got %v", slugsOf(paged))
	}
}

func TestServiceListTags(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	seed := []posts.CreatePostRequest{
		{Slug: "one", Title: "One", Status: "published", Tags: []string{"swift", "ios"}},
		{Slug: "two", Title: "Two", Status: "published", Tags: []string{"swift"}},
		{Slug: "three", Title: "Three", Status: "draft", Tags: []string{"hidden"}},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("seed %s: %v", req.Slug, err)
		}
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}
	if tags[0].Tag != "swift" || tags[0].Count != 2 {
		t.Fatalf("expected swift x2 first, got %+v", tags[0])
	}
	if tags[1].Tag != "ios" || tags[1].Count != 1 {
		t.Fatalf("expected ios x1 second, got %+v", tags[1])
	}
}

func TestServicePublishImmediate(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "go-live", Title: "Go Live", Status: "draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	publisherID := uuid.New()
	published, err := svc.Publish(ctx, posts.PublishPostRequest{ID: record.ID, PublishedBy: publisherID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != string(domain.StatusPublished) {
		t.Fatalf("expected published got %s", published.Status)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(now) {
		t.Fatalf("expected published_at %v got %v", now, published.PublishedAt)
	}
	if published.UpdatedBy != publisherID {
		t.Fatalf("expected updated_by %s got %s", publisherID, published.UpdatedBy)
	}
	if !published.IsVisible {
		t.Fatalf("expected post visible after publish")
	}
}

func TestServicePublishScheduled(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	scheduler := pressscheduler.NewInMemory(pressscheduler.WithClock(func() time.Time { return now }))
	svc, _ := newTestService(t, now,
		posts.WithScheduler(scheduler),
		posts.WithSchedulingEnabled(true),
	)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "later", Title: "Later", Status: "draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	publishAt := now.Add(24 * time.Hour)
	publisherID := uuid.New()
	scheduled, err := svc.Publish(ctx, posts.PublishPostRequest{ID: record.ID, At: &publishAt, PublishedBy: publisherID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if scheduled.Status != string(domain.StatusScheduled) {
		t.Fatalf("expected scheduled got %s", scheduled.Status)
	}
	if scheduled.PublishAt == nil || !scheduled.PublishAt.Equal(publishAt) {
		t.Fatalf("expected publish_at %v got %v", publishAt, scheduled.PublishAt)
	}
	if scheduled.EffectiveStatus != domain.StatusScheduled || scheduled.IsVisible {
		t.Fatalf("scheduled post should not be visible yet")
	}

	job, err := scheduler.GetByKey(ctx, pressscheduler.PostPublishJobKey(record.ID))
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Type != pressscheduler.JobTypePostPublish {
		t.Fatalf("expected publish job type got %s", job.Type)
	}
	if !job.RunAt.Equal(publishAt) {
		t.Fatalf("expected run_at %v got %v", publishAt, job.RunAt)
	}
	if job.Payload["post_id"] != record.ID.String() {
		t.Fatalf("expected post_id payload got %v", job.Payload["post_id"])
	}
	if job.Payload["published_by"] != publisherID.String() {
		t.Fatalf("expected published_by payload got %v", job.Payload["published_by"])
	}
}

func TestServicePublishScheduledRequiresFeature(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "blocked", Title: "Blocked", Status: "draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	publishAt := now.Add(time.Hour)
	_, err = svc.Publish(ctx, posts.PublishPostRequest{ID: record.ID, At: &publishAt})
	if !errors.Is(err, posts.ErrSchedulingDisabled) {
		t.Fatalf("expected ErrSchedulingDisabled got %v", err)
	}
}

func TestServiceUnpublishImmediate(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "pull-back", Title: "Pull Back", Status: "published"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reverted, err := svc.Unpublish(ctx, posts.UnpublishPostRequest{ID: record.ID})
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if reverted.Status != string(domain.StatusDraft) {
		t.Fatalf("expected draft got %s", reverted.Status)
	}
	if reverted.PublishAt != nil || reverted.UnpublishAt != nil {
		t.Fatalf("expected schedule stamps cleared")
	}
	if reverted.IsVisible {
		t.Fatalf("unpublished post should not be visible")
	}
}

func TestServiceUnpublishDeferred(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	scheduler := pressscheduler.NewInMemory(pressscheduler.WithClock(func() time.Time { return now }))
	svc, _ := newTestService(t, now,
		posts.WithScheduler(scheduler),
		posts.WithSchedulingEnabled(true),
	)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "sunset", Title: "Sunset", Status: "published"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	unpublishAt := now.Add(72 * time.Hour)
	updated, err := svc.Unpublish(ctx, posts.UnpublishPostRequest{ID: record.ID, At: &unpublishAt})
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if updated.Status != string(domain.StatusPublished) {
		t.Fatalf("deferred unpublish should keep post published, got %s", updated.Status)
	}
	if updated.UnpublishAt == nil || !updated.UnpublishAt.Equal(unpublishAt) {
		t.Fatalf("expected unpublish_at %v got %v", unpublishAt, updated.UnpublishAt)
	}
	if !updated.IsVisible {
		t.Fatalf("post should stay visible until the unpublish instant")
	}

	job, err := scheduler.GetByKey(ctx, pressscheduler.PostUnpublishJobKey(record.ID))
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Type != pressscheduler.JobTypePostUnpublish {
		t.Fatalf("expected unpublish job type got %s", job.Type)
	}
}

func TestServiceArchiveCancelsJobs(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	scheduler := pressscheduler.NewInMemory(pressscheduler.WithClock(func() time.Time { return now }))
	svc, _ := newTestService(t, now,
		posts.WithScheduler(scheduler),
		posts.WithSchedulingEnabled(true),
	)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "shelve", Title: "Shelve", Status: "draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	publishAt := now.Add(time.Hour)
	if _, err := svc.Publish(ctx, posts.PublishPostRequest{ID: record.ID, At: &publishAt}); err != nil {
		t.Fatalf("schedule publish: %v", err)
	}

	archived, err := svc.Archive(ctx, posts.ArchivePostRequest{ID: record.ID})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != string(domain.StatusArchived) {
		t.Fatalf("expected archived got %s", archived.Status)
	}
	if archived.PublishAt != nil {
		t.Fatalf("expected publish_at cleared")
	}

	if _, err := scheduler.GetByKey(ctx, pressscheduler.PostPublishJobKey(record.ID)); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected publish job removed, got %v", err)
	}
}

func TestServiceDeleteSoftHidesRecord(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	svc, repo := newTestService(t, now)
	ctx := context.Background()

	record, err := svc.Create(ctx, posts.CreatePostRequest{Slug: "gone", Title: "Gone", Status: "published"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, posts.DeletePostRequest{ID: record.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.GetBySlug(ctx, "gone", "posts")
	var notFound *posts.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found after soft delete got %v", err)
	}

	listed, err := svc.List(ctx, posts.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no visible posts, got %v", slugsOf(listed))
	}

	// The row survives a soft delete.
	stored, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.DeletedAt == nil {
		t.Fatalf("expected deleted_at stamp")
	}

	if err := svc.Delete(ctx, posts.DeletePostRequest{ID: record.ID, HardDelete: true}); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, record.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected row removed after hard delete got %v", err)
	}
}

func TestServiceEmitsActivityEvents(t *testing.T) {
	now := time.Date(2014, 4, 3, 9, 0, 0, 0, time.UTC)
	recorder := activity.NewRecorder()
	svc, _ := newTestService(t, now, posts.WithActivity(recorder))
	ctx := context.Background()

	actorID := uuid.New()
	record, err := svc.Create(ctx, posts.CreatePostRequest{
		Slug:      "observed",
		Title:     "Observed",
		Status:    "draft",
		CreatedBy: actorID,
		UpdatedBy: actorID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Publish(ctx, posts.PublishPostRequest{ID: record.ID, PublishedBy: actorID}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	events := recorder.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 activity events, got %d", len(events))
	}
	if events[0].Verb != "create" || events[1].Verb != "publish" {
		t.Fatalf("unexpected verbs %q %q", events[0].Verb, events[1].Verb)
	}
	if events[0].ActorID != actorID.String() {
		t.Fatalf("expected actor %s got %s", actorID, events[0].ActorID)
	}
	if events[0].ObjectType != "post" || events[0].ObjectID != record.ID.String() {
		t.Fatalf("unexpected object fields: %s %s", events[0].ObjectType, events[0].ObjectID)
	}
	if events[0].Channel != "press" {
		t.Fatalf("expected channel press got %q", events[0].Channel)
	}
	if events[1].DefinitionCode != "post:publish" {
		t.Fatalf("expected post:publish definition got %q", events[1].DefinitionCode)
	}
	if section, ok := events[0].Metadata["section"].(string); !ok || section != "posts" {
		t.Fatalf("expected section metadata got %v", events[0].Metadata["section"])
	}
}

func slugsOf(records []*posts.Post) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Slug)
	}
	return out
}

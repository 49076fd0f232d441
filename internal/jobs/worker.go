package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/domain"
	"github.com/goliatone/go-press/internal/posts"
	pressscheduler "github.com/goliatone/go-press/internal/scheduler"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// PostRepository is the slice of the post store the worker needs to
// flip lifecycle states.
type PostRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*posts.Post, error)
	Update(ctx context.Context, record *posts.Post) (*posts.Post, error)
}

// Worker drains due scheduler jobs and applies publish and unpublish
// transitions to post records.
type Worker struct {
	scheduler interfaces.Scheduler
	posts     PostRepository
	audit     AuditRecorder
	activity  activity.Notifier
	channel   string
	now       func() time.Time
	batchSize int
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithActivity(notifier activity.Notifier) Option {
	return func(w *Worker) {
		if notifier != nil {
			w.activity = notifier
		}
	}
}

func WithActivityChannel(channel string) Option {
	return func(w *Worker) {
		if channel != "" {
			w.channel = channel
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func NewWorker(scheduler interfaces.Scheduler, postsRepo PostRepository, opts ...Option) *Worker {
	w := &Worker{
		scheduler: scheduler,
		posts:     postsRepo,
		now:       time.Now,
		batchSize: 50,
		channel:   "press",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process drains one batch of due jobs. Failed jobs are marked for
// retry; unknown job types complete without effect.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	deadline := w.now()
	due, err := w.scheduler.ListDue(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range due {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job, deadline); err != nil {
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job, now time.Time) error {
	switch job.Type {
	case pressscheduler.JobTypePostPublish:
		return w.processPublish(ctx, job, now)
	case pressscheduler.JobTypePostUnpublish:
		return w.processUnpublish(ctx, job, now)
	default:
		return nil
	}
}

func (w *Worker) processPublish(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.posts == nil {
		return errors.New("jobs: post repository is nil")
	}
	id, triggeredBy, err := parseJobIdentifiers(job.Payload, "post_id")
	if err != nil {
		return err
	}
	record, err := w.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	originalStatus := determinePostStatus(record, now)
	statusChanged := originalStatus != domain.StatusPublished
	if record.PublishAt != nil {
		record.PublishAt = nil
		statusChanged = true
	}
	if statusChanged {
		record.Status = string(domain.StatusPublished)
		publishedAt := job.RunAt
		if publishedAt.IsZero() {
			publishedAt = now
		}
		record.PublishedAt = &publishedAt
		record.UpdatedAt = now
		if triggeredBy != nil {
			record.UpdatedBy = *triggeredBy
		}
		if _, err := w.posts.Update(ctx, record); err != nil {
			return err
		}
		w.recordAudit(ctx, AuditEvent{
			EntityType: "post",
			EntityID:   id.String(),
			Action:     "publish",
			OccurredAt: now,
			Metadata:   buildAuditMetadata(job, triggeredBy),
		})
	}
	w.emitActivity(ctx, triggeredBy, "publish", record, map[string]any{
		"job_id":       job.ID,
		"job_type":     job.Type,
		"status":       record.Status,
		"published_at": record.PublishedAt,
	})
	return nil
}

func (w *Worker) processUnpublish(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.posts == nil {
		return errors.New("jobs: post repository is nil")
	}
	id, triggeredBy, err := parseJobIdentifiers(job.Payload, "post_id")
	if err != nil {
		return err
	}
	record, err := w.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	originalStatus := determinePostStatus(record, now)
	statusChanged := originalStatus == domain.StatusPublished
	if record.UnpublishAt != nil {
		record.UnpublishAt = nil
		statusChanged = true
	}
	if statusChanged {
		record.Status = string(domain.StatusArchived)
		record.UpdatedAt = now
		if triggeredBy != nil {
			record.UpdatedBy = *triggeredBy
		}
		if _, err := w.posts.Update(ctx, record); err != nil {
			return err
		}
		w.recordAudit(ctx, AuditEvent{
			EntityType: "post",
			EntityID:   id.String(),
			Action:     "unpublish",
			OccurredAt: now,
			Metadata:   buildAuditMetadata(job, triggeredBy),
		})
	}
	w.emitActivity(ctx, triggeredBy, "unpublish", record, map[string]any{
		"job_id":   job.ID,
		"job_type": job.Type,
		"status":   record.Status,
	})
	return nil
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}

func (w *Worker) emitActivity(ctx context.Context, actor *uuid.UUID, verb string, record *posts.Post, meta map[string]any) {
	if w.activity == nil || record == nil || record.ID == uuid.Nil {
		return
	}
	event := activity.Event{
		Verb:           verb,
		ObjectType:     "post",
		ObjectID:       record.ID.String(),
		ObjectSlug:     record.Slug,
		Channel:        w.channel,
		DefinitionCode: "post:" + verb,
		OccurredAt:     w.now(),
		Metadata:       meta,
	}
	if actor != nil {
		event.ActorID = actor.String()
	}
	_ = w.activity.Notify(ctx, event)
}

func parseJobIdentifiers(payload map[string]any, key string) (uuid.UUID, *uuid.UUID, error) {
	if payload == nil {
		return uuid.Nil, nil, fmt.Errorf("jobs: missing payload")
	}
	rawID, ok := payload[key]
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("jobs: payload missing %s", key)
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("jobs: invalid %s payload", key)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, nil, err
	}
	var triggeredBy *uuid.UUID
	for _, actorKey := range []string{"published_by", "unpublished_by", "scheduled_by"} {
		raw, ok := payload[actorKey]
		if !ok {
			continue
		}
		if str, ok := raw.(string); ok {
			if parsed, err := uuid.Parse(str); err == nil {
				triggeredBy = &parsed
				break
			}
		}
	}
	return id, triggeredBy, nil
}

func buildAuditMetadata(job *interfaces.Job, triggeredBy *uuid.UUID) map[string]any {
	meta := map[string]any{
		"job_id":   job.ID,
		"job_type": job.Type,
		"run_at":   job.RunAt,
		"attempt":  job.Attempt,
	}
	if triggeredBy != nil {
		meta["scheduled_by"] = triggeredBy.String()
	}
	return meta
}

func determinePostStatus(record *posts.Post, now time.Time) domain.Status {
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
	if record.PublishAt != nil {
		if record.PublishAt.After(now) {
			return domain.StatusScheduled
		}
		return domain.StatusPublished
	}
	if record.PublishedAt != nil && !record.PublishedAt.After(now) {
		return domain.StatusPublished
	}
	return status
}

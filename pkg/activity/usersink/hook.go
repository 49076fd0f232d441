// Package usersink adapts go-press activity events to the go-users
// ActivitySink contract so hosts already running go-users capture the
// publishing audit trail alongside user activity.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-press/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards activity events into a go-users ActivitySink. Events without
// a verb are ignored so partially populated emissions never pollute the sink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify implements activity.Notifier.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	verb := strings.TrimSpace(event.Verb)
	if verb == "" {
		return nil
	}

	record := usertypes.ActivityRecord{
		Verb:       verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}

	if id, err := uuid.Parse(event.ActorID); err == nil {
		record.ActorID = id
	}
	if id, err := uuid.Parse(event.UserID); err == nil {
		record.UserID = id
	}
	if id, err := uuid.Parse(event.TenantID); err == nil {
		record.TenantID = id
	}

	data := make(map[string]any, len(event.Metadata)+3)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if event.ObjectSlug != "" {
		data["object_slug"] = event.ObjectSlug
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}
	if len(data) > 0 {
		record.Data = data
	}

	return h.Sink.Log(ctx, record)
}

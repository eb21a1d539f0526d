package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-countries/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards repository activity to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// ActorID is used when the event carries no actor of its own.
	ActorID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	actorID := parseUUID(normalized.ActorID)
	if actorID == uuid.Nil {
		actorID = h.ActorID
	}

	data := make(map[string]any, len(normalized.Metadata)+1)
	for key, value := range normalized.Metadata {
		data[key] = value
	}
	if normalized.Dataset != "" {
		data["dataset"] = normalized.Dataset
	}

	return h.Sink.Log(ctx, usertypes.ActivityRecord{
		ActorID:    actorID,
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       data,
		OccurredAt: normalized.OccurredAt,
	})
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}

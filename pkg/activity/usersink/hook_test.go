package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-countries/pkg/activity"
	"github.com/goliatone/go-countries/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsDatasetEvent(t *testing.T) {
	sink := &recordingSink{}
	fallbackActor := uuid.New()
	hook := usersink.Hook{Sink: sink, ActorID: fallbackActor}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tenantID := uuid.New()
	event := activity.BuildDatasetLoadedEvent(activity.DatasetEventInput{
		LoadID:     "load-7",
		Dataset:    "countries",
		Source:     "countries/default/_all_countries.json",
		Entries:    250,
		OccurredAt: now,
	})
	event.TenantID = tenantID.String()
	event.Channel = "countries"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != fallbackActor {
		t.Fatalf("expected fallback actor %s got %s", fallbackActor, record.ActorID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != activity.VerbDatasetLoaded || record.ObjectType != "dataset" || record.ObjectID != "load-7" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["dataset"] != "countries" || record.Data["entries"] != 250 {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
}

func TestHookNotifyPrefersEventActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, ActorID: uuid.New()}
	actor := uuid.New()

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbOperationComputed,
		ActorID:    actor.String(),
		ObjectType: "operation",
		ObjectID:   "all",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != actor {
		t.Fatalf("expected event actor %s got %s", actor, sink.records[0].ActorID)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{Verb: "dataset.loaded"})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for incomplete event, got %d", len(sink.records))
	}
}

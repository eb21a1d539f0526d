package activity

import "time"

const (
	VerbDatasetLoaded     = "dataset.loaded"
	VerbDatasetOverloaded = "dataset.overloaded"
	VerbOperationComputed = "operation.computed"
)

// DatasetEventInput describes a dataset load or merge.
type DatasetEventInput struct {
	LoadID     string
	Dataset    string
	Source     string
	Entries    int
	Overloads  int
	OccurredAt time.Time
}

// BuildDatasetLoadedEvent reports that the default dataset was read.
func BuildDatasetLoadedEvent(input DatasetEventInput) Event {
	metadata := map[string]any{"entries": input.Entries}
	if input.Source != "" {
		metadata["source"] = input.Source
	}
	return Event{
		Verb:       VerbDatasetLoaded,
		ObjectType: "dataset",
		ObjectID:   objectID(input.LoadID, input.Dataset),
		Dataset:    input.Dataset,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildDatasetOverloadedEvent reports that overload files were merged on top
// of the default dataset. Callers skip it when there was nothing to merge.
func BuildDatasetOverloadedEvent(input DatasetEventInput) Event {
	metadata := map[string]any{
		"entries":   input.Entries,
		"overloads": input.Overloads,
	}
	if input.Source != "" {
		metadata["source"] = input.Source
	}
	return Event{
		Verb:       VerbDatasetOverloaded,
		ObjectType: "dataset",
		ObjectID:   objectID(input.LoadID, input.Dataset),
		Dataset:    input.Dataset,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// OperationEventInput describes a memoized repository call.
type OperationEventInput struct {
	Operation  string
	Args       []any
	Hydrated   bool
	OccurredAt time.Time
}

// BuildOperationComputedEvent reports a cache miss that ran the operation.
func BuildOperationComputedEvent(input OperationEventInput) Event {
	metadata := map[string]any{"hydrated": input.Hydrated}
	if len(input.Args) > 0 {
		metadata["args"] = append([]any{}, input.Args...)
	}
	return Event{
		Verb:       VerbOperationComputed,
		ObjectType: "operation",
		ObjectID:   input.Operation,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func objectID(id, fallback string) string {
	if id != "" {
		return id
	}
	return fallback
}

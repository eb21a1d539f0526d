package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the dataset entry being hydrated.
type Context struct {
	Code    string
	Dataset string
}

// PreHook lets callers normalise the raw record before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers enrich or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts raw dataset records into typed values.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts record into T applying configured hooks. The record is
// cloned first so hooks never mutate the cached dataset.
func (d *Decoder[T]) Decode(ctx Context, record map[string]any) (T, error) {
	var zero T

	if record == nil {
		return zero, fmt.Errorf("hydrate: record is nil for code %q", ctx.Code)
	}

	current, err := cloneRecord(record)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone record %q: %w", ctx.Code, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for code %q failed: %w", ctx.Code, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		result, err = d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for code %q failed: %w", ctx.Code, err)
		}
	} else {
		buffer, err := json.Marshal(current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: marshal record %q: %w", ctx.Code, err)
		}
		decoder := json.NewDecoder(bytes.NewReader(buffer))
		for _, configure := range d.configureDec {
			if configure != nil {
				configure(decoder)
			}
		}
		if err := decoder.Decode(&result); err != nil {
			return zero, fmt.Errorf("hydrate: decode %s %q: %w", datasetLabel(ctx), ctx.Code, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for code %q failed: %w", ctx.Code, err)
		}
	}

	return result, nil
}

func datasetLabel(ctx Context) string {
	if ctx.Dataset == "" {
		return "record"
	}
	return ctx.Dataset
}

func cloneRecord(record map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}

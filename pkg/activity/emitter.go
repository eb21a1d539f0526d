package activity

import (
	"context"
	"strings"
	"sync"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "countries"

// Emitter fans out events to hooks, filling in the channel when missing.
type Emitter struct {
	hooks   Hooks
	channel string
}

// NewEmitter constructs an emitter. An empty channel falls back to
// DefaultChannel.
func NewEmitter(hooks Hooks, channel string) *Emitter {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks.Compact(),
		channel: channel,
	}
}

// Enabled reports whether any hook is attached.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emit forwards event to every hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

// CaptureHook records events for assertions in tests.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event and returns any configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Verbs returns the recorded verbs in order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.Events))
	for i, event := range h.Events {
		out[i] = event.Verb
	}
	return out
}

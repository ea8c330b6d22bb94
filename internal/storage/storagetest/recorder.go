// Package storagetest provides an in-memory audit log for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
)

var (
	_ storage.EventWriter = (*Recorder)(nil)
	_ storage.EventReader = (*Recorder)(nil)
)

// Recorder is an in-memory storage.EventWriter and storage.EventReader that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []*storage.ToolEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Write(event *storage.ToolEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Close() {}

// Events returns a copy of the recorded events in write order.
func (r *Recorder) Events() []*storage.ToolEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*storage.ToolEvent, len(r.events))
	copy(out, r.events)
	return out
}

// ListEvents filters and pages the recorded events, newest first.
func (r *Recorder) ListEvents(_ context.Context, params storage.ListEventsParams) ([]storage.ToolEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []storage.ToolEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if e.ScanID != params.ScanID {
			continue
		}
		if params.ToolName != nil && e.ToolName != *params.ToolName {
			continue
		}
		if params.Status != nil && e.Status != *params.Status {
			continue
		}
		matched = append(matched, *e)
	}

	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return nil, len(matched), nil
	}
	end := min(start+params.PageSize, len(matched))
	return matched[start:end], len(matched), nil
}

// GetEvent returns the recorded event with the given request ID, or nil.
func (r *Recorder) GetEvent(_ context.Context, requestID string) (*storage.ToolEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.RequestID == requestID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

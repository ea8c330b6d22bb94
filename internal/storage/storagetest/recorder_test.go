package storagetest

import (
	"context"
	"testing"

	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
)

func TestRecorderListEvents(t *testing.T) {
	r := NewRecorder()
	for i, tool := range []string{"searchWeb", "checkBreach", "searchWeb"} {
		status := storage.StatusOK
		if i == 1 {
			status = storage.StatusError
		}
		r.Write(&storage.ToolEvent{RequestID: tool + string(rune('a'+i)), ScanID: "s1", ToolName: tool, Status: status})
	}
	r.Write(&storage.ToolEvent{RequestID: "other", ScanID: "s2", ToolName: "searchWeb", Status: storage.StatusOK})

	ctx := context.Background()
	events, total, err := r.ListEvents(ctx, storage.ListEventsParams{ScanID: "s1", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(events) != 2 {
		t.Fatalf("total=%d len=%d, want 3 and 2", total, len(events))
	}
	if events[0].RequestID != "searchWebc" {
		t.Fatalf("first event = %q, want newest first", events[0].RequestID)
	}

	events, total, _ = r.ListEvents(ctx, storage.ListEventsParams{ScanID: "s1", Page: 2, PageSize: 2})
	if total != 3 || len(events) != 1 {
		t.Fatalf("page 2: total=%d len=%d", total, len(events))
	}

	status := storage.StatusError
	events, total, _ = r.ListEvents(ctx, storage.ListEventsParams{ScanID: "s1", Status: &status, Page: 1, PageSize: 10})
	if total != 1 || events[0].ToolName != "checkBreach" {
		t.Fatalf("status filter: total=%d events=%+v", total, events)
	}

	e, err := r.GetEvent(ctx, "other")
	if err != nil || e == nil || e.ScanID != "s2" {
		t.Fatalf("GetEvent(other) = %+v, %v", e, err)
	}
	if e, _ := r.GetEvent(ctx, "missing"); e != nil {
		t.Fatalf("GetEvent(missing) = %+v, want nil", e)
	}
}

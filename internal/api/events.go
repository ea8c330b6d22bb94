package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxEventPageSize = 200

type ToolEventResp struct {
	RequestID   string    `json:"request_id"`
	ScanID      string    `json:"scan_id"`
	Timestamp   time.Time `json:"timestamp"`
	Origin      string    `json:"origin"`
	ToolName    string    `json:"tool_name"`
	ArgsPreview string    `json:"args_preview"`
	ArgsHash    string    `json:"args_hash"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ResultCount uint32    `json:"result_count"`
	MockMode    bool      `json:"mock_mode"`
	LatencyMs   float32   `json:"latency_ms"`
}

type EventListResp struct {
	Events   []ToolEventResp `json:"events"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func eventToResp(e storage.ToolEvent) ToolEventResp {
	return ToolEventResp{
		RequestID:   e.RequestID,
		ScanID:      e.ScanID,
		Timestamp:   e.Timestamp,
		Origin:      e.Origin,
		ToolName:    e.ToolName,
		ArgsPreview: e.ArgsPreview,
		ArgsHash:    e.ArgsHash,
		Status:      e.Status,
		Error:       e.Error,
		ResultCount: e.ResultCount,
		MockMode:    e.MockMode,
		LatencyMs:   e.LatencyMs,
	}
}

func (d *Dependencies) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if d.Events == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Audit log not configured"})
		return
	}

	q := r.URL.Query()
	params := storage.ListEventsParams{
		ScanID:   chi.URLParam(r, "scan_id"),
		Page:     max(queryInt(q, "page", 1), 1),
		PageSize: min(queryInt(q, "page_size", 50), maxEventPageSize),
	}
	if params.PageSize < 1 {
		params.PageSize = 1
	}
	if v := q.Get("tool"); v != "" {
		params.ToolName = &v
	}
	if v := q.Get("status"); v != "" {
		params.Status = &v
	}

	events, total, err := d.Events.ListEvents(r.Context(), params)
	if err != nil {
		d.Logger.Error("failed to list events", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list events"})
		return
	}

	resp := EventListResp{
		Events:   make([]ToolEventResp, 0, len(events)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	for _, e := range events {
		resp.Events = append(resp.Events, eventToResp(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dependencies) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	if d.Events == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Audit log not configured"})
		return
	}

	event, err := d.Events.GetEvent(r.Context(), chi.URLParam(r, "request_id"))
	if err != nil {
		d.Logger.Error("failed to get event", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to get event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Event not found"})
		return
	}
	writeJSON(w, http.StatusOK, eventToResp(*event))
}

func queryInt(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

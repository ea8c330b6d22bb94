package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/scanner"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// handleReady reports 503 until the database answers.
func (d *Dependencies) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := d.Store.Ping(r.Context()); err != nil {
		d.Logger.Warn("readiness check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (d *Dependencies) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req CreateScanReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid seeds: " + err.Error()})
		return
	}
	if req.Seeds == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "seeds is required"})
		return
	}
	req.Seeds.Name = strings.TrimSpace(req.Seeds.Name)
	req.Seeds.Email = strings.TrimSpace(req.Seeds.Email)

	seeds, err := json.Marshal(req.Seeds)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid seeds"})
		return
	}

	scan, err := d.Store.CreateScan(r.Context(), d.optionalUser(r), string(seeds))
	if err != nil {
		d.Logger.Error("failed to create scan", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to create scan"})
		return
	}
	writeJSON(w, http.StatusOK, CreateScanResp{ScanID: scan.ID})
}

func (d *Dependencies) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := d.Store.ListScansByUser(r.Context(), userFromContext(r.Context()))
	if err != nil {
		d.Logger.Error("failed to list scans", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list scans"})
		return
	}
	resp := make([]ScanResp, 0, len(scans))
	for _, s := range scans {
		resp = append(resp, scanToResp(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dependencies) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := d.Store.GetScan(r.Context(), chi.URLParam(r, "scan_id"))
	if err != nil {
		d.Logger.Error("failed to get scan", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to get scan"})
		return
	}
	if scan == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Scan not found"})
		return
	}
	writeJSON(w, http.StatusOK, scanToResp(scan))
}

func (d *Dependencies) handleRunScan(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scan_id")
	out, err := d.Runner.RunOnce(r.Context(), scanID)
	if err != nil {
		if errors.Is(err, scanner.ErrScanNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Scan not found"})
			return
		}
		status, detail := toolErrorStatus(err)
		if status == http.StatusInternalServerError {
			d.Logger.Error("scan run failed", zap.String("scan_id", scanID), zap.Error(err))
			detail = "Scan run failed"
		}
		writeJSON(w, status, ErrorResp{Detail: detail})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (d *Dependencies) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := d.Store.ListItems(r.Context(), chi.URLParam(r, "scan_id"))
	if err != nil {
		d.Logger.Error("failed to list items", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list items"})
		return
	}
	resp := make([]ItemSummaryResp, 0, len(items))
	for _, it := range items {
		resp = append(resp, itemToSummary(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dependencies) handleListToolCalls(w http.ResponseWriter, r *http.Request) {
	calls, err := d.Store.ListToolCalls(r.Context(), chi.URLParam(r, "scan_id"))
	if err != nil {
		d.Logger.Error("failed to list tool calls", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list tool calls"})
		return
	}
	resp := make([]ToolCallResp, 0, len(calls))
	for _, c := range calls {
		resp = append(resp, ToolCallResp{
			ID:         c.ID,
			ToolName:   c.ToolName,
			Args:       rawOrNull(c.ArgsJSON),
			Response:   rawOrNull(c.ResponseJSON),
			DurationMs: c.DurationMs,
			CreatedAt:  c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func rawOrNull(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

// toolErrorStatus maps registry and connector failures to an HTTP status
// and client-facing message.
func toolErrorStatus(err error) (int, string) {
	var ce *registry.ConnectorError
	switch {
	case errors.Is(err, registry.ErrUnknownTool), errors.Is(err, registry.ErrInvalidArguments):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, registry.ErrInvalidResult):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, connectors.ErrNotImplemented):
		return http.StatusNotImplemented, err.Error()
	case errors.As(err, &ce):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, "Internal error"
}

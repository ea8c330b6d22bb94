package api

import (
	"encoding/json"
	"net/http"

	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// actionDraftEmail is the only supported item action.
const actionDraftEmail = "draft_email"

func (d *Dependencies) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := d.Store.GetItem(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		d.Logger.Error("failed to get item", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Item not found"})
		return
	}
	writeJSON(w, http.StatusOK, ItemResp{
		ItemSummaryResp: itemToSummary(item),
		ScanID:          item.ScanID,
		MetadataJSON:    item.MetadataJSON,
		CreatedAt:       item.CreatedAt,
	})
}

func (d *Dependencies) handleItemAction(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req ItemActionReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	item, err := d.Store.GetItem(r.Context(), itemID)
	if err != nil {
		d.Logger.Error("failed to get item", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Item not found"})
		return
	}
	if req.Action != actionDraftEmail {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Unsupported action"})
		return
	}
	if req.Tone == "" {
		req.Tone = connectors.DefaultTone
	}

	args, err := json.Marshal(connectors.RemediationArgs{ItemID: item.ID, Tone: req.Tone})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to encode action"})
		return
	}
	res, err := d.Tools.Invoke(r.Context(), registry.Call{
		Origin: storage.OriginDirect,
		ScanID: item.ScanID,
		Tool:   registry.GenerateRemediation.String(),
		Args:   args,
	})
	if err != nil {
		status, detail := toolErrorStatus(err)
		writeJSON(w, status, ErrorResp{Detail: detail})
		return
	}
	writeJSON(w, http.StatusOK, res.JSON)
}

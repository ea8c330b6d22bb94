package api

import (
	"net/http"

	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"go.uber.org/zap"
)

func (d *Dependencies) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Tools.Registry().List())
}

func (d *Dependencies) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var req ToolCallReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Tool == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "tool is required"})
		return
	}

	res, err := d.Tools.Invoke(r.Context(), registry.Call{
		Origin: storage.OriginDirect,
		Tool:   req.Tool,
		Args:   req.Args,
	})
	if err != nil {
		status, detail := toolErrorStatus(err)
		if status >= http.StatusInternalServerError {
			d.Logger.Warn("tool call failed", zap.String("tool", req.Tool), zap.Error(err))
		}
		writeJSON(w, status, ErrorResp{Detail: detail})
		return
	}
	writeJSON(w, http.StatusOK, ToolCallResult{Result: res.JSON})
}

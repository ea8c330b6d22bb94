package api

import (
	"net/http"
	"strconv"
)

func (d *Dependencies) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.State == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "state is required"})
		return
	}

	res := d.Planner.Plan(r.Context(), req.State, req.Goal)
	w.Header().Set("X-Plan-Source", string(res.Source))
	w.Header().Set("X-Plan-Degraded", strconv.FormatBool(res.Degraded))
	writeJSON(w, http.StatusOK, res.Plan)
}

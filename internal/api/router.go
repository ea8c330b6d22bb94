// Package api serves the HTTP surface: accounts, consent, scans, items,
// direct tool calls and the planner debug endpoint.
package api

import (
	"net/http"

	"github.com/Kedareswar13/Privacy-Protector/internal/auth"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/scanner"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Store       *store.Store
	Auth        *auth.Authority
	Tools       *registry.Auditor
	Runner      *scanner.Runner
	Planner     scanner.Planner
	Events      storage.EventReader // nil answers the audit routes with 503
	MCP         http.Handler        // nil disables /mcp/stream
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the chi router with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(deps.corsMiddleware)
	r.Use(deps.requestLogging)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/ready", deps.handleReady)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.handleRegister)
		r.Post("/login", deps.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.requireUser)
		r.Post("/consent", deps.handleCreateConsent)
		r.Get("/consent", deps.handleListConsents)
		r.Get("/scans", deps.handleListScans)
	})

	// Bearer token optional: a valid token attaches the scan to its user.
	r.Post("/scans", deps.handleCreateScan)
	r.Get("/scans/{scan_id}", deps.handleGetScan)
	r.Post("/scans/{scan_id}/run", deps.handleRunScan)
	r.Get("/scans/{scan_id}/items", deps.handleListItems)
	r.Get("/scans/{scan_id}/tool-calls", deps.handleListToolCalls)
	r.Get("/scans/{scan_id}/events", deps.handleListEvents)
	r.Get("/events/{request_id}", deps.handleGetEvent)
	r.Get("/scans/items/{item_id}", deps.handleGetItem)

	r.Get("/items/{item_id}", deps.handleGetItem)
	r.Post("/items/{item_id}/action", deps.handleItemAction)

	r.Get("/mcp/tools", deps.handleListTools)
	r.Post("/mcp/call", deps.handleCallTool)
	if deps.MCP != nil {
		r.Handle("/mcp/stream", deps.MCP)
	}

	r.Post("/planner/plan", deps.handlePlan)

	return r
}

package storage

import (
	"context"
	"time"
)

// EventWriter is the interface for writing tool audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *ToolEvent)
	Close()
}

// EventReader is the query side of the audit log.
type EventReader interface {
	ListEvents(ctx context.Context, params ListEventsParams) ([]ToolEvent, int, error)
	GetEvent(ctx context.Context, requestID string) (*ToolEvent, error)
}

// Tool event outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Tool event origins.
const (
	OriginScan   = "scan"   // dispatched by the scan orchestrator
	OriginDirect = "direct" // POST /mcp/call or an item action
	OriginMCP    = "mcp"    // the MCP server
)

// ToolEvent represents a single connector invocation to be persisted.
type ToolEvent struct {
	RequestID   string
	ScanID      string
	Timestamp   time.Time
	Origin      string
	ToolName    string
	ArgsPreview string // pseudonymized, first ArgsPreviewLength chars
	ArgsHash    string // SHA256 of the raw arguments
	Status      string
	Error       string
	ResultCount uint32
	MockMode    bool
	LatencyMs   float32
}

// ArgsPreviewLength is the max chars stored in args_preview.
const ArgsPreviewLength = 500

// TruncatePreview returns the first N characters (runes) of s for preview
// storage. It never splits a multi-byte UTF-8 character.
func TruncatePreview(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

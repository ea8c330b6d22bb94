package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/Kedareswar13/Privacy-Protector/internal/pseudonymize"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sensitiveArgs are argument keys whose values identify the person scanned.
var sensitiveArgs = map[string]bool{
	"email":      true,
	"query":      true,
	"image_hash": true,
}

// Call is one audited tool invocation.
type Call struct {
	Origin string // storage.Origin*
	ScanID string // empty outside a scan
	Tool   string
	Args   json.RawMessage
}

// Auditor invokes registry tools and records a ToolEvent for every call.
type Auditor struct {
	reg    *Registry
	events storage.EventWriter
	pseudo *pseudonymize.Pseudonymizer
	mock   bool
	logger *zap.Logger
}

func NewAuditor(reg *Registry, events storage.EventWriter, pseudo *pseudonymize.Pseudonymizer, mockMode bool, logger *zap.Logger) *Auditor {
	return &Auditor{reg: reg, events: events, pseudo: pseudo, mock: mockMode, logger: logger}
}

// Registry returns the wrapped registry.
func (a *Auditor) Registry() *Registry { return a.reg }

// Invoke runs c through the registry and writes its audit event.
func (a *Auditor) Invoke(ctx context.Context, c Call) (*Result, error) {
	start := time.Now()
	res, err := a.reg.Invoke(ctx, c.Tool, c.Args)
	elapsed := time.Since(start)

	ev := &storage.ToolEvent{
		RequestID:   uuid.NewString(),
		ScanID:      c.ScanID,
		Timestamp:   start.UTC(),
		Origin:      c.Origin,
		ToolName:    c.Tool,
		ArgsPreview: storage.TruncatePreview(a.redactArgs(c.Args), storage.ArgsPreviewLength),
		ArgsHash:    hashArgs(c.Args),
		Status:      storage.StatusOK,
		MockMode:    a.mock,
		LatencyMs:   float32(elapsed.Microseconds()) / 1000,
	}
	if err != nil {
		ev.Status = storage.StatusError
		ev.Error = a.pseudo.Text(err.Error())

		var te *ToolError
		if errors.As(err, &te) {
			a.logger.Warn("tool call rejected",
				zap.String("tool", c.Tool),
				zap.String("origin", c.Origin),
				zap.Error(err),
			)
		} else {
			a.logger.Error("connector failed",
				zap.String("tool", c.Tool),
				zap.String("origin", c.Origin),
				zap.String("scan_id", c.ScanID),
				zap.Error(err),
			)
		}
	} else {
		ev.ResultCount = resultCount(res.JSON)
		a.logger.Debug("tool call",
			zap.String("tool", c.Tool),
			zap.String("origin", c.Origin),
			zap.Strings("pii_kinds", pseudonymize.Kinds(string(c.Args))),
			zap.Uint32("result_count", ev.ResultCount),
		)
	}
	a.events.Write(ev)
	return res, err
}

// redactArgs returns args with identifying values replaced by pseudonyms.
func (a *Auditor) redactArgs(args json.RawMessage) string {
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return a.pseudo.Text(string(args))
	}
	out, err := json.Marshal(a.redactValue("", v))
	if err != nil {
		return ""
	}
	return string(out)
}

func (a *Auditor) redactValue(key string, v any) any {
	switch t := v.(type) {
	case string:
		if sensitiveArgs[key] {
			return a.pseudo.Identifier(t)
		}
		return a.pseudo.Text(t)
	case map[string]any:
		for k, val := range t {
			t[k] = a.redactValue(k, val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = a.redactValue(key, val)
		}
		return t
	}
	return v
}

func hashArgs(args json.RawMessage) string {
	sum := sha256.Sum256(args)
	return hex.EncodeToString(sum[:])
}

func resultCount(raw json.RawMessage) uint32 {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return uint32(len(arr))
	}
	return 1
}

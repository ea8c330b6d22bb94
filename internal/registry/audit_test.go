package registry

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/pseudonymize"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditorRecordsRedactedEvent(t *testing.T) {
	rec := storagetest.NewRecorder()
	pseudo := pseudonymize.New("salt")
	a := NewAuditor(newMockRegistry(t), rec, pseudo, true, zap.NewNop())

	res, err := a.Invoke(context.Background(), Call{
		Origin: storage.OriginScan,
		ScanID: "scan-1",
		Tool:   "checkBreach",
		Args:   json.RawMessage(`{"email":"jane@example.com"}`),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	events := rec.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "scan-1", ev.ScanID)
	assert.Equal(t, storage.OriginScan, ev.Origin)
	assert.Equal(t, "checkBreach", ev.ToolName)
	assert.Equal(t, storage.StatusOK, ev.Status)
	assert.True(t, ev.MockMode)
	assert.Equal(t, uint32(1), ev.ResultCount)
	assert.Len(t, ev.ArgsHash, 64)
	assert.NotContains(t, ev.ArgsPreview, "jane@example.com")
	assert.Contains(t, ev.ArgsPreview, pseudo.Identifier("jane@example.com"))
}

func TestAuditorRecordsFailures(t *testing.T) {
	rec := storagetest.NewRecorder()
	a := NewAuditor(newMockRegistry(t), rec, pseudonymize.New("salt"), true, zap.NewNop())

	_, err := a.Invoke(context.Background(), Call{Origin: storage.OriginDirect, Tool: "notATool", Args: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownTool)

	r, err := New(brokenConnectors{err: connectors.ErrNotImplemented})
	require.NoError(t, err)
	b := NewAuditor(r, rec, pseudonymize.New("salt"), false, zap.NewNop())
	_, err = b.Invoke(context.Background(), Call{
		Origin: storage.OriginDirect,
		Tool:   "searchSocial",
		Args:   json.RawMessage(`{"service":"github","query":"jane@example.com"}`),
	})
	assert.ErrorIs(t, err, connectors.ErrNotImplemented)

	events := rec.Events()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, storage.StatusError, ev.Status)
		assert.NotEmpty(t, ev.Error)
	}
	assert.False(t, strings.Contains(events[1].Error, "jane@example.com"))
}

func TestResultCount(t *testing.T) {
	assert.Equal(t, uint32(3), resultCount(json.RawMessage(`[1,2,3]`)))
	assert.Equal(t, uint32(0), resultCount(json.RawMessage(`[]`)))
	assert.Equal(t, uint32(1), resultCount(json.RawMessage(`{"pwned":true}`)))
}

func TestAuditorLogsPIIKinds(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewAuditor(newMockRegistry(t), storagetest.NewRecorder(), pseudonymize.New("salt"), true, zap.New(core))

	_, err := a.Invoke(context.Background(), Call{
		Origin: storage.OriginDirect,
		Tool:   "checkBreach",
		Args:   json.RawMessage(`{"email":"jane@example.com"}`),
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("tool call").All()
	require.Len(t, entries, 1)
	assert.Equal(t, []any{"email"}, entries[0].ContextMap()["pii_kinds"])
	assert.NotContains(t, entries[0].ContextMap(), "args")
}

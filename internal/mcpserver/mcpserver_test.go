package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Kedareswar13/Privacy-Protector/internal/config"
	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/pseudonymize"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage/storagetest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testImpl = &mcp.Implementation{Name: "datasteward-test", Version: "0.1.0"}

func session(t *testing.T) (*mcp.ClientSession, *storagetest.Recorder) {
	t.Helper()
	reg, err := registry.New(connectors.New(&config.Config{MockConnectors: true}, zap.NewNop()))
	require.NoError(t, err)
	rec := storagetest.NewRecorder()
	srv := New(registry.NewAuditor(reg, rec, pseudonymize.New("salt"), true, zap.NewNop()))

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	sess, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess, rec
}

func TestListTools(t *testing.T) {
	sess, _ := session(t)
	res, err := sess.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"searchWeb", "searchSocial", "checkBreach",
		"reverseImageSearch", "scoreRisk", "generateRemediation",
	}, names)
}

func TestCallCheckBreach(t *testing.T) {
	sess, rec := session(t)
	res, err := sess.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "checkBreach",
		Arguments: map[string]any{"email": "x@example.com"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var report connectors.BreachReport
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &report))
	assert.True(t, report.Pwned)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, storage.OriginMCP, events[0].Origin)
}

func TestCallInvalidArgsIsToolError(t *testing.T) {
	sess, _ := session(t)
	res, err := sess.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "searchWeb",
		Arguments: map[string]any{"limit": 3},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "Invalid args for searchWeb")
}

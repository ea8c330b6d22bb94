// Package mcpserver exposes the tool registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Implementation identifies this server to MCP clients.
var Implementation = &mcp.Implementation{Name: "datasteward", Version: "0.1.0"}

// New returns an MCP server with every registry tool registered.
func New(tools *registry.Auditor) *mcp.Server {
	srv := mcp.NewServer(Implementation, nil)
	Register(srv, tools)
	return srv
}

// Register adds every registry tool to srv. Calls go through the auditor so
// they are validated and recorded like any other tool call.
func Register(srv *mcp.Server, tools *registry.Auditor) {
	for _, t := range tools.Registry().List() {
		name := t.Name
		srv.AddTool(&mcp.Tool{
			Name:        name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := tools.Invoke(ctx, registry.Call{
				Origin: storage.OriginMCP,
				Tool:   name,
				Args:   req.Params.Arguments,
			})
			if err != nil {
				var out mcp.CallToolResult
				out.SetError(errors.New(err.Error()))
				return &out, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: string(res.JSON)}},
			}, nil
		})
	}
}

// Handler serves srv over streamable HTTP.
func Handler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
}

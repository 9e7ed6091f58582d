// Package mcp exposes the catalog search and content tools over the Model
// Context Protocol.
package mcp

import (
	"github.com/gitrules/gitrules/internal/mcp/mcpctx"
	"github.com/gitrules/gitrules/internal/mcp/tools"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "gitrules"

// NewServer creates an MCP server with every catalog tool registered.
func NewServer(toolCtx *mcpctx.ToolContext, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)

	tools.RegisterSearchTools(server, toolCtx)
	tools.RegisterContentTools(server, toolCtx)

	return server
}

package mcp

import (
	"net/http"

	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/mcp/mcpctx"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler serves MCP over streamable HTTP. The catalog is read-only and the
// tools hold no per-client state, so every request gets a fresh server in
// stateless mode.
type Handler struct {
	catalog     mcpctx.CatalogSource
	version     string
	httpHandler http.Handler
}

// NewHandler creates a new MCP handler over the catalog.
func NewHandler(src mcpctx.CatalogSource, version string) *Handler {
	h := &Handler{catalog: src, version: version}
	h.httpHandler = mcp.NewStreamableHTTPHandler(
		h.getServerForRequest,
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
	return h
}

func (h *Handler) getServerForRequest(r *http.Request) *mcp.Server {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logging.Debugf("[MCP] %s %s request=%s", r.Method, r.URL.Path, requestID)

	toolCtx := mcpctx.NewToolContext(h.catalog, requestID, r.UserAgent())
	return NewServer(toolCtx, h.version)
}

// ServeHTTP handles all MCP HTTP requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.httpHandler.ServeHTTP(w, r)
}

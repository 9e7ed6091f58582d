package mcpctx

import (
	"context"

	"github.com/gitrules/gitrules/internal/catalog"
)

// CatalogSource provides the current catalog snapshot.
type CatalogSource interface {
	Snapshot() *catalog.Snapshot
}

// ToolContext carries context for all MCP tools.
type ToolContext struct {
	catalog   CatalogSource
	requestID string
	userAgent string
}

// NewToolContext creates a tool context over the catalog.
func NewToolContext(src CatalogSource, requestID, userAgent string) *ToolContext {
	return &ToolContext{
		catalog:   src,
		requestID: requestID,
		userAgent: userAgent,
	}
}

// Snapshot returns the catalog snapshot current at call time.
func (t *ToolContext) Snapshot() *catalog.Snapshot {
	return t.catalog.Snapshot()
}

// RequestID returns the request ID for tracing.
func (t *ToolContext) RequestID() string {
	return t.requestID
}

// UserAgent returns the client's user agent string.
func (t *ToolContext) UserAgent() string {
	return t.userAgent
}

// ToolError represents a structured error for MCP tool responses.
type ToolError struct {
	Code    string `json:"code"`    // "not_found", "validation"
	Message string `json:"message"` // Human-readable description
	Field   string `json:"field"`   // For validation errors
}

func (e *ToolError) Error() string {
	if e.Field != "" {
		return e.Code + ": " + e.Message + " (field: " + e.Field + ")"
	}
	return e.Code + ": " + e.Message
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(message, field string) *ToolError {
	return &ToolError{Code: "validation", Message: message, Field: field}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *ToolError {
	return &ToolError{Code: "not_found", Message: message}
}

// toolContextKey is used to store ToolContext in context.Context
type toolContextKey struct{}

// WithToolContext adds ToolContext to a context.
func WithToolContext(ctx context.Context, tc *ToolContext) context.Context {
	return context.WithValue(ctx, toolContextKey{}, tc)
}

// ToolContextFromContext retrieves ToolContext from a context.
func ToolContextFromContext(ctx context.Context) *ToolContext {
	if tc, ok := ctx.Value(toolContextKey{}).(*ToolContext); ok {
		return tc
	}
	return nil
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/emit"
	"github.com/gitrules/gitrules/internal/mcp/mcpctx"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxIDs caps how many ids one content call may fetch.
const maxIDs = 50

// IDsInput defines input for the content tools.
type IDsInput struct {
	IDs []string `json:"ids" jsonschema:"Action ids (slugs) as returned by the search tools."`
}

// ContentItem is one fetched agent or rule. Error is set instead of the
// other fields when the id could not be served.
type ContentItem struct {
	ID          string             `json:"id"`
	Type        catalog.ActionType `json:"action_type,omitempty"`
	DisplayName string             `json:"display_name,omitempty"`
	Filename    string             `json:"filename,omitempty"`
	Content     string             `json:"content,omitempty"`
	Children    []string           `json:"children,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// ContentOutput defines output for get_agents_content and get_rules_content.
type ContentOutput struct {
	Items []ContentItem `json:"items"`
}

// ConfigItem is one fetched MCP config.
type ConfigItem struct {
	ID      string         `json:"id"`
	Config  map[string]any `json:"config,omitempty"`
	EnvVars []string       `json:"env_vars,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ConfigOutput defines output for get_mcps_config. MCPJSON merges every
// found config into one .mcp.json document.
type ConfigOutput struct {
	Items   []ConfigItem `json:"items"`
	MCPJSON string       `json:"mcp_json,omitempty"`
	EnvVars []string     `json:"env_vars"`
}

// RegisterContentTools registers get_rules_content, get_agents_content and get_mcps_config.
func RegisterContentTools(server *mcp.Server, toolCtx *mcpctx.ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:  "get_rules_content",
		Title: "Get Rules Content",
		Description: `Fetch the full content of rules and rulesets by id.
Each id is reported separately; unknown ids and ids of other types carry an error instead of content.`,
	}, contentHandler(toolCtx, catalog.KindRule))

	mcp.AddTool(server, &mcp.Tool{
		Name:  "get_agents_content",
		Title: "Get Agents Content",
		Description: `Fetch the full definition of agents by id, including the file name under .claude/agents/.
Each id is reported separately; unknown ids carry an error instead of content.`,
	}, contentHandler(toolCtx, catalog.KindAgent))

	mcp.AddTool(server, &mcp.Tool{
		Name:  "get_mcps_config",
		Title: "Get MCP Configs",
		Description: `Fetch MCP server configs by id, plus the merged .mcp.json and the ${VAR} environment variables it needs.
Each id is reported separately; unknown ids carry an error instead of a config.`,
	}, configHandler(toolCtx))
}

func contentHandler(toolCtx *mcpctx.ToolContext, kind catalog.Kind) func(context.Context, *mcp.CallToolRequest, IDsInput) (*mcp.CallToolResult, ContentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IDsInput) (*mcp.CallToolResult, ContentOutput, error) {
		ids, err := normalizeIDs(input.IDs)
		if err != nil {
			return nil, ContentOutput{}, err
		}
		snap := toolCtx.Snapshot()
		out := ContentOutput{Items: make([]ContentItem, 0, len(ids))}
		for _, id := range ids {
			a, err := lookup(snap, id, kind)
			if err != nil {
				out.Items = append(out.Items, ContentItem{ID: id, Error: err.Error()})
				continue
			}
			out.Items = append(out.Items, ContentItem{
				ID:          a.ID,
				Type:        a.Type,
				DisplayName: a.Title(),
				Filename:    a.Filename,
				Content:     a.Content,
				Children:    a.Children,
			})
		}
		return nil, out, nil
	}
}

func configHandler(toolCtx *mcpctx.ToolContext) func(context.Context, *mcp.CallToolRequest, IDsInput) (*mcp.CallToolResult, ConfigOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IDsInput) (*mcp.CallToolResult, ConfigOutput, error) {
		ids, err := normalizeIDs(input.IDs)
		if err != nil {
			return nil, ConfigOutput{}, err
		}
		snap := toolCtx.Snapshot()
		out := ConfigOutput{Items: make([]ConfigItem, 0, len(ids))}

		var found []string
		for _, id := range ids {
			a, err := lookup(snap, id, catalog.KindMCP)
			if err != nil {
				out.Items = append(out.Items, ConfigItem{ID: id, Error: err.Error()})
				continue
			}
			found = append(found, a.ID)
			out.Items = append(out.Items, ConfigItem{ID: a.ID, Config: a.Config, EnvVars: emit.EnvVars(a.Config)})
		}

		files := emit.Emit(emit.Resolve(snap, found), nil, emit.Source{}).Files
		for _, f := range files {
			if f.Path == emit.MCPConfigFile {
				out.MCPJSON = f.Content
			}
		}
		out.EnvVars = emit.EnvVarsInFiles(files)
		return nil, out, nil
	}
}

func lookup(snap *catalog.Snapshot, id string, kind catalog.Kind) (*catalog.Action, error) {
	a, err := snap.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, mcpctx.NewNotFoundError(fmt.Sprintf("%s not found", id))
		}
		return nil, err
	}
	if a.Kind() != kind {
		return nil, mcpctx.NewValidationError(fmt.Sprintf("%s is a %s, not a %s", id, a.Type, kind), "ids")
	}
	return a, nil
}

func normalizeIDs(raw []string) ([]string, error) {
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, mcpctx.NewValidationError("at least one id is required", "ids")
	}
	if len(ids) > maxIDs {
		return nil, mcpctx.NewValidationError(fmt.Sprintf("at most %d ids per call", maxIDs), "ids")
	}
	return ids, nil
}

package tools

import (
	"context"
	"strings"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/mcp/mcpctx"
	"github.com/gitrules/gitrules/internal/ranking"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxSearchLimit caps the limit a client may ask for.
const maxSearchLimit = 50

// SearchInput defines input for the search tools.
type SearchInput struct {
	Query string `json:"query" jsonschema:"Search text. Use * and ? for wildcard matching, e.g. 'go-*'."`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results per category (default 10, max 50)."`
}

// SearchOutput defines output for the single-category search tools.
type SearchOutput struct {
	Query   string           `json:"query"`
	Results []ranking.Result `json:"results"`
}

// SearchAllOutput defines output for search_all.
type SearchAllOutput struct {
	Query  string           `json:"query"`
	Agents []ranking.Result `json:"agents"`
	Rules  []ranking.Result `json:"rules"`
	MCPs   []ranking.Result `json:"mcps"`
}

type searchFunc func(snap *catalog.Snapshot, query string, limit int) []ranking.Result

// RegisterSearchTools registers search_agents, search_rules, search_mcps and search_all.
func RegisterSearchTools(server *mcp.Server, toolCtx *mcpctx.ToolContext) {
	categories := []struct {
		name, title, what string
		search            searchFunc
	}{
		{"search_agents", "Search Agents", "agent definitions (matched on name, display name, tags and content)", ranking.SearchAgents},
		{"search_rules", "Search Rules", "rules and rulesets (matched on name, display name, content, author and tags)", ranking.SearchRules},
		{"search_mcps", "Search MCPs", "MCP server configs (matched on name, display name, tags, description and config)", ranking.SearchMCPs},
	}
	for _, c := range categories {
		mcp.AddTool(server, &mcp.Tool{
			Name:  c.name,
			Title: c.title,
			Description: "Search the catalog for " + c.what + `.
Results are ranked by relevance (100 exact, 95 wildcard, 90 substring, otherwise fuzzy) and never include content.
Fetch content with get_agents_content, get_rules_content or get_mcps_config.`,
		}, searchHandler(toolCtx, c.name, c.search))
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_all",
		Title:       "Search Everything",
		Description: "Search agents, rules and MCPs at once. Returns one ranked list per category.",
	}, searchAllHandler(toolCtx))
}

func searchHandler(toolCtx *mcpctx.ToolContext, name string, search searchFunc) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		query, limit, err := normalizeSearch(input)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		logging.Debugf("[MCP %s] query=%q limit=%d", name, query, limit)
		return nil, SearchOutput{Query: query, Results: search(toolCtx.Snapshot(), query, limit)}, nil
	}
}

func searchAllHandler(toolCtx *mcpctx.ToolContext) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchAllOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchAllOutput, error) {
		query, limit, err := normalizeSearch(input)
		if err != nil {
			return nil, SearchAllOutput{}, err
		}
		all := ranking.SearchAll(toolCtx.Snapshot(), query, limit)
		return nil, SearchAllOutput{Query: query, Agents: all.Agents, Rules: all.Rules, MCPs: all.MCPs}, nil
	}
}

func normalizeSearch(input SearchInput) (string, int, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return "", 0, mcpctx.NewValidationError("query is required", "query")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = ranking.DefaultLimit
	}
	return query, min(limit, maxSearchLimit), nil
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/mcp/mcpctx"
	"github.com/gitrules/gitrules/internal/mcp/tools"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	logging.Disable()
	store, err := catalog.NewStore(fstest.MapFS{
		catalog.AgentsFile: {Data: []byte(`
agents:
  - slug: code-reviewer
    display_name: Code Reviewer
    tags: [review]
    content: "Review diffs."
`)},
		catalog.RulesFile: {Data: []byte(`
go-errors:
  display_name: Go errors
  tags: [go]
  content: "Wrap errors."
`)},
		catalog.MCPsFile: {Data: []byte(`
mcps:
  - slug: github
    tags: [git]
    config:
      command: npx
      env:
        GITHUB_TOKEN: ${GITHUB_TOKEN}
`)},
	})
	require.NoError(t, err)
	return store
}

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(mcpctx.NewToolContext(testStore(t), "test", "go-test"), "test")
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}

func TestListTools(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"search_agents", "search_rules", "search_mcps", "search_all",
		"get_rules_content", "get_agents_content", "get_mcps_config",
	}, names)
}

func TestSearchAgentsTool(t *testing.T) {
	cs := connect(t)

	var out tools.SearchOutput
	res := call(t, cs, "search_agents", map[string]any{"query": "code-reviewer"}, &out)
	require.False(t, res.IsError)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "code-reviewer", out.Results[0].Name)
	assert.Equal(t, 100, out.Results[0].Relevance)
}

func TestSearchRequiresQuery(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "search_rules", map[string]any{"query": "  "}, nil)
	assert.True(t, res.IsError)
}

func TestSearchAllTool(t *testing.T) {
	cs := connect(t)

	var out tools.SearchAllOutput
	call(t, cs, "search_all", map[string]any{"query": "git*"}, &out)
	assert.Empty(t, out.Agents)
	require.Len(t, out.MCPs, 1)
	assert.Equal(t, "github", out.MCPs[0].Name)
}

func TestGetRulesContentPerID(t *testing.T) {
	cs := connect(t)

	var out tools.ContentOutput
	call(t, cs, "get_rules_content", map[string]any{"ids": []string{"go-errors", "ghost", "code-reviewer"}}, &out)
	require.Len(t, out.Items, 3)

	assert.Equal(t, "Wrap errors.", out.Items[0].Content)
	assert.Empty(t, out.Items[0].Error)
	assert.Contains(t, out.Items[1].Error, "not_found")
	assert.Contains(t, out.Items[2].Error, "validation")
	assert.Empty(t, out.Items[2].Content)
}

func TestGetMCPsConfig(t *testing.T) {
	cs := connect(t)

	var out tools.ConfigOutput
	call(t, cs, "get_mcps_config", map[string]any{"ids": []string{"github"}}, &out)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "npx", out.Items[0].Config["command"])
	assert.Equal(t, []string{"GITHUB_TOKEN"}, out.EnvVars)
	assert.Contains(t, out.MCPJSON, `"mcpServers"`)
	assert.Contains(t, out.MCPJSON, `"github"`)
}

func TestHandlerStateless(t *testing.T) {
	srv := httptest.NewServer(NewHandler(testStore(t), "test"))
	defer srv.Close()

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "http-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: srv.URL}, nil)
	require.NoError(t, err)
	defer cs.Close()

	var out tools.ContentOutput
	res := call(t, cs, "get_agents_content", map[string]any{"ids": []string{"code-reviewer"}}, &out)
	require.False(t, res.IsError)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "code-reviewer.md", out.Items[0].Filename)
}

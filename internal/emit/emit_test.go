package emit

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrules/gitrules/internal/catalog"
)

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Load(fstest.MapFS{
		catalog.AgentsFile: {Data: []byte(`
agents:
  - slug: reviewer
    content: "---\nname: reviewer\n---\nReview.\n"
  - slug: empty-agent
`)},
		catalog.RulesFile: {Data: []byte(`
r1:
  content: "Do X.\n\n"
r2:
  content: "   "
r3:
  content: "Line one\nLine two  \n"
set:
  type: ruleset
  content: "Set body."
  children: [r1]
`)},
		catalog.MCPsFile: {Data: []byte(`
mcps:
  - slug: github
    config:
      command: npx
      env:
        TOKEN: ${GITHUB_TOKEN}
  - slug: noconfig
`)},
		catalog.PacksFile: {Data: []byte(`
packs:
  - id: starter
    actions: [r1, reviewer, github, ghost, inner]
  - id: inner
    actions: [r3]
`)},
	})
	require.NoError(t, err)
	return snap
}

func pathsOf(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func idsOf(actions []*catalog.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.ID)
	}
	return out
}

func TestResolve(t *testing.T) {
	snap := testSnapshot(t)

	sel := Resolve(snap, []string{"github", "r3", "missing", "reviewer", "r3", "set"})
	assert.Equal(t, []string{"reviewer"}, idsOf(sel.Agents))
	assert.Equal(t, []string{"r3", "set"}, idsOf(sel.Rules))
	assert.Equal(t, []string{"github"}, idsOf(sel.MCPs))
	assert.Equal(t, 4, sel.Len())
}

func TestResolveExpandsPacks(t *testing.T) {
	snap := testSnapshot(t)

	sel := Resolve(snap, []string{"r1", "starter"})
	assert.Equal(t, []string{"r1"}, idsOf(sel.Rules), "nested pack and duplicate skipped")
	assert.Equal(t, []string{"reviewer"}, idsOf(sel.Agents))
	assert.Equal(t, []string{"github"}, idsOf(sel.MCPs))
}

func TestEmitSingleRule(t *testing.T) {
	snap := testSnapshot(t)

	out := Emit(Resolve(snap, []string{"r1"}), []Format{FormatClaude}, Source{Kind: SourceScratch})
	require.Len(t, out.Files, 1)
	assert.Equal(t, File{Path: "CLAUDE.md", Content: "Do X."}, out.Files[0])

	want := "# Gitrules configuration patch generated from scratch\n" +
		"# Apply with: patch -p0 < <this-patch>\n" +
		"\n" +
		"--- /dev/null\n" +
		"+++ CLAUDE.md\n" +
		"@@ -0,0 +1,1 @@\n" +
		"+Do X.\n"
	assert.Equal(t, want, out.Patch)
}

func TestEmitFormatsAgentsAndMCPs(t *testing.T) {
	snap := testSnapshot(t)
	sel := Resolve(snap, []string{"github", "r1", "r2", "r3", "reviewer", "empty-agent", "noconfig"})

	out := Emit(sel, []Format{FormatCursor, "vim", FormatAgents, FormatCursor}, Source{Kind: SourceRepo, RepoURL: "https://github.com/acme/app"})

	assert.Equal(t, []string{".cursorrules", "AGENTS.md", ".claude/agents/reviewer.md", ".mcp.json"}, pathsOf(out.Files))

	files := out.Map()
	assert.Equal(t, "Do X.\n\nLine one\nLine two", files[".cursorrules"])
	assert.Equal(t, files[".cursorrules"], files["AGENTS.md"])
	assert.Equal(t, "---\nname: reviewer\n---\nReview.\n", files[".claude/agents/reviewer.md"])

	wantJSON := `{
  "mcpServers": {
    "github": {
      "command": "npx",
      "env": {
        "TOKEN": "${GITHUB_TOKEN}"
      }
    }
  }
}`
	assert.Equal(t, wantJSON, files[".mcp.json"])

	assert.True(t, strings.HasPrefix(out.Patch, "# Gitrules configuration patch generated from repository: https://github.com/acme/app\n"))
	assert.Contains(t, out.Patch, "+++ .claude/agents/reviewer.md\n@@ -0,0 +1,4 @@\n")
	assert.Contains(t, out.Patch, "+++ .cursorrules\n@@ -0,0 +1,4 @@\n+Do X.\n+\n+Line one\n+Line two\n\n")
}

func TestEmitNoRulesNoFile(t *testing.T) {
	snap := testSnapshot(t)

	out := Emit(Resolve(snap, []string{"r2", "reviewer"}), []Format{FormatClaude}, Source{})
	assert.Equal(t, []string{".claude/agents/reviewer.md"}, pathsOf(out.Files), "agents ignore formats")

	out = Emit(Resolve(snap, nil), DefaultFormats, Source{})
	assert.Empty(t, out.Files)
	assert.Equal(t, "# Gitrules configuration patch generated from scratch\n# Apply with: patch -p0 < <this-patch>\n", out.Patch)
}

func TestPatchHeaders(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{ParseSource("scratch", ""), "# Gitrules configuration patch generated from scratch"},
		{ParseSource("template", "ignored"), "# Gitrules configuration patch generated from template"},
		{ParseSource("repo", "https://x/y"), "# Gitrules configuration patch generated from repository: https://x/y"},
		{ParseSource("repo", ""), "# Gitrules configuration patch generated from repository"},
		{ParseSource("bogus", ""), "# Gitrules configuration patch generated from scratch"},
	}
	for _, tt := range tests {
		first, _, _ := strings.Cut(Patch(nil, tt.src), "\n")
		assert.Equal(t, tt.want, first)
	}
}

func TestToggleMCP(t *testing.T) {
	cfg := map[string]any{"command": "npx"}

	on := ToggleMCP(nil, "github", cfg)
	assert.False(t, on.Removed)
	assert.Equal(t, map[string]any{"mcpServers": map[string]any{"github": cfg}}, on.Config)

	off := ToggleMCP(on.Config, "github", cfg)
	assert.True(t, off.Removed)
	assert.Equal(t, map[string]any{"mcpServers": map[string]any{}}, off.Config)
	assert.Equal(t, "{\n  \"mcpServers\": {}\n}", off.Content)

	// The caller's value is untouched.
	assert.Contains(t, on.Config["mcpServers"], "github")
}

func TestToggleMCPKeepsOthers(t *testing.T) {
	existing := map[string]any{
		"$schema":    "x",
		"mcpServers": map[string]any{"other": map[string]any{"command": "o"}},
	}
	res := ToggleMCP(existing, "github", map[string]any{"command": "g"})
	assert.False(t, res.Removed)

	want := map[string]any{
		"$schema": "x",
		"mcpServers": map[string]any{
			"other":  map[string]any{"command": "o"},
			"github": map[string]any{"command": "g"},
		},
	}
	if diff := cmp.Diff(want, res.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, existing["mcpServers"], 1)
}

func TestToggleMCPFreshConfig(t *testing.T) {
	for _, existing := range []any{"not a map", []any{1}, map[string]any{"servers": map[string]any{}}, map[string]any{"mcpServers": "x"}} {
		res := ToggleMCP(existing, "github", map[string]any{})
		assert.False(t, res.Removed)
		assert.Equal(t, map[string]any{"mcpServers": map[string]any{"github": map[string]any{}}}, res.Config)
	}
}

func TestEnvVars(t *testing.T) {
	cfg := map[string]any{
		"command": "run ${B_VAR}",
		"args":    []any{"${A_VAR}", "plain", "${B_VAR}-${C_VAR}"},
		"env":     map[string]any{"X": "${A_VAR}", "N": 3},
	}
	assert.Equal(t, []string{"A_VAR", "B_VAR", "C_VAR"}, EnvVars(cfg))
	assert.Empty(t, EnvVars(nil))

	files := []File{{Path: ".mcp.json", Content: `{"TOKEN": "${GITHUB_TOKEN}"}`}, {Path: "CLAUDE.md", Content: "$NOT_BRACED ${DB_URL}"}}
	assert.Equal(t, []string{"DB_URL", "GITHUB_TOKEN"}, EnvVarsInFiles(files))
}

package emit

import (
	"strings"

	"github.com/gitrules/gitrules/internal/catalog"
)

// Format names an output flavor for rule bundles.
type Format string

const (
	FormatClaude Format = "claude"
	FormatAgents Format = "agents"
	FormatCursor Format = "cursor"
)

// DefaultFormats is used when a request names none.
var DefaultFormats = []Format{FormatClaude}

// formatFiles maps a format to the file its rule bundle is written to.
var formatFiles = map[Format]string{
	FormatClaude: "CLAUDE.md",
	FormatAgents: "AGENTS.md",
	FormatCursor: ".cursorrules",
}

// FileFor returns the rule bundle path for f.
func FileFor(f Format) (string, bool) {
	path, ok := formatFiles[f]
	return path, ok
}

// AgentsDir is where agent definitions are written.
const AgentsDir = ".claude/agents"

// File is one generated file.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Output is the result of Emit. Files keep emission order.
type Output struct {
	Files []File
	Patch string
}

// Map returns the files keyed by path.
func (o Output) Map() map[string]string {
	m := make(map[string]string, len(o.Files))
	for _, f := range o.Files {
		m[f.Path] = f.Content
	}
	return m
}

// Emit builds the files for sel. Rule bundles are written once per known
// format (unknown and repeated formats are ignored), then one file per agent
// with content, then .mcp.json when any MCP has a config.
func Emit(sel Selection, formats []Format, src Source) Output {
	var files []File

	bundle := ruleBundle(sel.Rules)
	done := make(map[Format]struct{}, len(formats))
	for _, f := range formats {
		path, ok := formatFiles[f]
		if !ok {
			continue
		}
		if _, dup := done[f]; dup {
			continue
		}
		done[f] = struct{}{}
		if bundle != "" {
			files = append(files, File{Path: path, Content: bundle})
		}
	}

	for _, a := range sel.Agents {
		if a.Content == "" {
			continue
		}
		files = append(files, File{Path: AgentsDir + "/" + agentFilename(a), Content: a.Content})
	}

	if servers := mcpServers(sel.MCPs); len(servers) > 0 {
		files = append(files, File{Path: MCPConfigFile, Content: RenderJSON(map[string]any{MCPServersKey: servers})})
	}

	return Output{Files: files, Patch: Patch(files, src)}
}

// ruleBundle right-trims each rule body and joins the non-empty ones with a
// blank line.
func ruleBundle(rules []*catalog.Action) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		if body := strings.TrimRight(r.Content, " \t\r\n"); body != "" {
			parts = append(parts, body)
		}
	}
	return strings.Join(parts, "\n\n")
}

func agentFilename(a *catalog.Action) string {
	if a.Filename != "" {
		return a.Filename
	}
	return a.Name + ".md"
}

func mcpServers(mcps []*catalog.Action) map[string]any {
	servers := make(map[string]any, len(mcps))
	for _, m := range mcps {
		if len(m.Config) == 0 {
			continue
		}
		servers[m.ID] = m.Config
	}
	return servers
}

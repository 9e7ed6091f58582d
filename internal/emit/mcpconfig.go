package emit

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

const (
	// MCPConfigFile is the merged MCP server configuration.
	MCPConfigFile = ".mcp.json"
	// MCPServersKey is the root key holding servers by id.
	MCPServersKey = "mcpServers"
)

// ToggleResult reports the outcome of ToggleMCP.
type ToggleResult struct {
	Config  map[string]any
	Content string // Config as 2-space indented JSON
	Removed bool
}

// ToggleMCP removes id from existing when present, otherwise adds it with
// config. An existing value that is not a mapping, or whose mcpServers is
// missing or not a mapping, is replaced by a fresh configuration. Other
// top-level keys are kept. existing is never modified.
func ToggleMCP(existing any, id string, config map[string]any) ToggleResult {
	out := map[string]any{}
	servers := map[string]any{}

	if root, ok := existing.(map[string]any); ok {
		if current, ok := root[MCPServersKey].(map[string]any); ok {
			for k, v := range root {
				out[k] = v
			}
			for k, v := range current {
				servers[k] = v
			}
		}
	}

	removed := false
	if _, ok := servers[id]; ok {
		delete(servers, id)
		removed = true
	} else {
		servers[id] = config
	}
	out[MCPServersKey] = servers

	return ToggleResult{Config: out, Content: RenderJSON(out), Removed: removed}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// EnvVars returns the sorted, unique ${NAME} placeholders found in any string
// nested in v.
func EnvVars(v any) []string {
	set := make(map[string]struct{})
	collectEnvVars(v, set)
	return sortedKeys(set)
}

// EnvVarsInFiles returns the placeholders used across file contents.
func EnvVarsInFiles(files []File) []string {
	set := make(map[string]struct{})
	for _, f := range files {
		collectEnvVars(f.Content, set)
	}
	return sortedKeys(set)
}

func collectEnvVars(v any, set map[string]struct{}) {
	switch t := v.(type) {
	case string:
		for _, m := range envVarPattern.FindAllStringSubmatch(t, -1) {
			set[m[1]] = struct{}{}
		}
	case map[string]any:
		for _, val := range t {
			collectEnvVars(val, set)
		}
	case []any:
		for _, val := range t {
			collectEnvVars(val, set)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RenderJSON indents with two spaces and leaves <, > and & unescaped.
func RenderJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

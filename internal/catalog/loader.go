package catalog

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Source file names inside the catalog directory.
const (
	AgentsFile = "agents.yaml"
	RulesFile  = "rules.yaml"
	MCPsFile   = "mcps.yaml"
	PacksFile  = "packs.yaml"
)

// SourceFiles lists every declarative source in load order.
var SourceFiles = []string{AgentsFile, RulesFile, MCPsFile, PacksFile}

type agentsDoc struct {
	Agents []agentEntry `yaml:"agents"`
}

type agentEntry struct {
	Slug        string   `yaml:"slug"`
	DisplayName string   `yaml:"display_name"`
	Content     string   `yaml:"content"`
	Tags        []string `yaml:"tags"`
}

type ruleEntry struct {
	DisplayName string   `yaml:"display_name"`
	Content     string   `yaml:"content"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Type        string   `yaml:"type"`
	Namespace   string   `yaml:"namespace"`
	Children    []string `yaml:"children"`
}

type mcpsDoc struct {
	MCPs []mcpEntry `yaml:"mcps"`
}

type mcpEntry struct {
	Slug        string         `yaml:"slug"`
	DisplayName string         `yaml:"display_name"`
	Config      map[string]any `yaml:"config"`
	Tags        []string       `yaml:"tags"`
	Description string         `yaml:"description"`
}

type packsDoc struct {
	Packs []packEntry `yaml:"packs"`
}

type packEntry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
	Actions     []string `yaml:"actions"`
}

// Load parses every source in fsys and builds a snapshot.
// Missing or malformed sources never fail the load; they are recorded as diagnostics.
// An error is returned only when the catalog root itself cannot be read.
func Load(fsys fs.FS) (*Snapshot, error) {
	if fsys == nil {
		return nil, errors.New("catalog: nil filesystem")
	}
	if _, err := fs.Stat(fsys, "."); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("catalog: cannot read root: %w", err)
	}

	var (
		actions []*Action
		diags   []Diagnostic
	)
	for _, load := range []func(fs.FS) ([]*Action, []Diagnostic){loadAgents, loadRules, loadMCPs, loadPacks} {
		a, d := load(fsys)
		actions = append(actions, a...)
		diags = append(diags, d...)
	}

	return NewSnapshot(actions, diags...), nil
}

// readSource returns nil data (and no diagnostic) when the file does not exist.
func readSource(fsys fs.FS, name string, into any) (bool, *Diagnostic) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &Diagnostic{Source: name, Err: err}
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return false, &Diagnostic{Source: name, Err: fmt.Errorf("failed to parse: %w", err)}
	}
	return true, nil
}

func loadAgents(fsys fs.FS) ([]*Action, []Diagnostic) {
	var doc agentsDoc
	ok, diag := readSource(fsys, AgentsFile, &doc)
	if diag != nil {
		return nil, []Diagnostic{*diag}
	}
	if !ok {
		return nil, nil
	}

	var (
		actions []*Action
		diags   []Diagnostic
	)
	for i, e := range doc.Agents {
		if e.Slug == "" {
			diags = append(diags, Diagnostic{Source: AgentsFile, Err: fmt.Errorf("entry %d has no slug", i)})
			continue
		}
		actions = append(actions, &Action{
			ID:          e.Slug,
			Name:        e.Slug,
			DisplayName: e.DisplayName,
			Type:        TypeAgent,
			Tags:        e.Tags,
			Content:     e.Content,
			Filename:    e.Slug + ".md",
		})
	}
	return actions, diags
}

func loadRules(fsys fs.FS) ([]*Action, []Diagnostic) {
	var doc map[string]ruleEntry
	ok, diag := readSource(fsys, RulesFile, &doc)
	if diag != nil {
		return nil, []Diagnostic{*diag}
	}
	if !ok {
		return nil, nil
	}

	var (
		actions []*Action
		diags   []Diagnostic
	)
	for slug, e := range doc {
		if slug == "" {
			diags = append(diags, Diagnostic{Source: RulesFile, Err: errors.New("rule with empty slug")})
			continue
		}
		typ := TypeRule
		switch e.Type {
		case "", "rule":
		case "ruleset":
			typ = TypeRuleset
		default:
			diags = append(diags, Diagnostic{Source: RulesFile, Err: fmt.Errorf("rule %q has unknown type %q, treating as rule", slug, e.Type)})
		}
		actions = append(actions, &Action{
			ID:          slug,
			Name:        slug,
			DisplayName: e.DisplayName,
			Type:        typ,
			Tags:        e.Tags,
			Content:     e.Content,
			Author:      e.Author,
			Children:    e.Children,
			Namespace:   e.Namespace,
			Filename:    slug + ".yaml",
		})
	}
	return actions, diags
}

func loadMCPs(fsys fs.FS) ([]*Action, []Diagnostic) {
	var doc mcpsDoc
	ok, diag := readSource(fsys, MCPsFile, &doc)
	if diag != nil {
		return nil, []Diagnostic{*diag}
	}
	if !ok {
		return nil, nil
	}

	var (
		actions []*Action
		diags   []Diagnostic
	)
	for i, e := range doc.MCPs {
		if e.Slug == "" {
			diags = append(diags, Diagnostic{Source: MCPsFile, Err: fmt.Errorf("entry %d has no slug", i)})
			continue
		}
		cfg, _ := normalizeYAML(e.Config).(map[string]any)
		if cfg == nil {
			cfg = map[string]any{}
		}
		actions = append(actions, &Action{
			ID:          e.Slug,
			Name:        e.Slug,
			DisplayName: e.DisplayName,
			Type:        TypeMCP,
			Tags:        e.Tags,
			Config:      cfg,
			Description: e.Description,
		})
	}
	return actions, diags
}

func loadPacks(fsys fs.FS) ([]*Action, []Diagnostic) {
	var doc packsDoc
	ok, diag := readSource(fsys, PacksFile, &doc)
	if diag != nil {
		return nil, []Diagnostic{*diag}
	}
	if !ok {
		return nil, nil
	}

	var (
		actions []*Action
		diags   []Diagnostic
	)
	for i, e := range doc.Packs {
		if e.ID == "" {
			diags = append(diags, Diagnostic{Source: PacksFile, Err: fmt.Errorf("entry %d has no id", i)})
			continue
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		actions = append(actions, &Action{
			ID:          e.ID,
			Name:        name,
			DisplayName: e.DisplayName,
			Type:        TypePack,
			Tags:        e.Tags,
			Children:    e.Actions,
			Description: e.Description,
		})
	}
	return actions, diags
}

// normalizeYAML converts map[any]any nodes, which yaml produces for non-string
// keys, into map[string]any so configs stay JSON-encodable.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	}
	return v
}

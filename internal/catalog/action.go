// Package catalog loads the declarative action catalog (agents, rules, rulesets,
// MCPs and packs) into immutable snapshots and serves lookups over them.
//
// Sources live in one directory:
//
//	actions/
//	├── agents.yaml   # agents: [{slug, display_name, content, tags}]
//	├── rules.yaml    # <slug>: {display_name, content, author, tags, type, namespace, children}
//	├── mcps.yaml     # mcps: [{slug, display_name, config, tags, description}]
//	└── packs.yaml    # packs: [{id, name, display_name, tags, description, actions}]
//
// Any file may be missing. A malformed file empties its own category only.
package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id is not present in a snapshot.
var ErrNotFound = errors.New("action not found")

// ActionType is the declared type of an action.
type ActionType string

const (
	TypeAgent   ActionType = "agent"
	TypeRule    ActionType = "rule"
	TypeRuleset ActionType = "ruleset"
	TypeMCP     ActionType = "mcp"
	TypePack    ActionType = "pack"
)

// ParseActionType validates a type name.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(s); t {
	case TypeAgent, TypeRule, TypeRuleset, TypeMCP, TypePack:
		return t, nil
	}
	return "", fmt.Errorf("unknown action type %q", s)
}

// Kind groups action types into the categories selections are made of.
// Rule and ruleset share KindRule.
type Kind int

const (
	KindAgent Kind = iota
	KindRule
	KindMCP
	KindPack
)

// Priority order for id collisions across categories: lower wins.
var kindPriority = map[Kind]int{
	KindAgent: 0,
	KindRule:  1,
	KindMCP:   2,
	KindPack:  3,
}

func (k Kind) String() string {
	switch k {
	case KindAgent:
		return "agent"
	case KindRule:
		return "rule"
	case KindMCP:
		return "mcp"
	case KindPack:
		return "pack"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action is the unifying catalog entity.
type Action struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name,omitempty"`
	Type        ActionType     `json:"action_type"`
	Tags        []string       `json:"tags,omitempty"`
	Content     string         `json:"content,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Children    []string       `json:"children,omitempty"`
	Author      string         `json:"author,omitempty"`
	Namespace   string         `json:"namespace,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Kind returns the selection category of the action.
func (a *Action) Kind() Kind {
	switch a.Type {
	case TypeAgent:
		return KindAgent
	case TypeRule, TypeRuleset:
		return KindRule
	case TypeMCP:
		return KindMCP
	default:
		return KindPack
	}
}

// Title returns the display name, falling back to the name.
func (a *Action) Title() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

// HasTag reports whether tag is among the action's own declared tags.
func (a *Action) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Diagnostic records a non-fatal problem found while loading a source.
type Diagnostic struct {
	Source string
	Err    error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %v", d.Source, d.Err)
}

// MarshalText renders the diagnostic as a single line for JSON responses.
func (d Diagnostic) MarshalText() ([]byte, error) {
	return []byte(d.Error()), nil
}

// ChildRef is one resolved entry of an action's children.
type ChildRef struct {
	ID     string
	Action *Action
	Err    error
}

package ranking

import (
	"encoding/json"

	"github.com/gitrules/gitrules/internal/catalog"
)

// Result describes a matched action without its content or config.
type Result struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name,omitempty"`
	Type        catalog.ActionType `json:"action_type"`
	Tags        []string           `json:"tags,omitempty"`
	Author      string             `json:"author,omitempty"`
	Namespace   string             `json:"namespace,omitempty"`
	Filename    string             `json:"filename,omitempty"`
	Description string             `json:"description,omitempty"`
	Children    []string           `json:"children,omitempty"`
	Relevance   int                `json:"relevance"`
}

// All groups results per category.
type All struct {
	Agents []Result `json:"agents"`
	Rules  []Result `json:"rules"`
	MCPs   []Result `json:"mcps"`
}

// SearchAgents matches agents on name, display name, tags and content.
func SearchAgents(snap *catalog.Snapshot, query string, limit int) []Result {
	return search(snap, catalog.KindAgent, Compile(query), limit, func(a *catalog.Action) []Field {
		fields := []Field{{Value: a.Name}, {Value: a.DisplayName}}
		fields = appendTags(fields, a.Tags)
		return append(fields, Field{Value: a.Content, Weight: WeightContent})
	})
}

// SearchRules matches rules and rulesets on name, display name, content,
// author and effective tags.
func SearchRules(snap *catalog.Snapshot, query string, limit int) []Result {
	return search(snap, catalog.KindRule, Compile(query), limit, func(a *catalog.Action) []Field {
		fields := []Field{
			{Value: a.Name},
			{Value: a.DisplayName},
			{Value: a.Content, Weight: WeightContent},
			{Value: a.Author, Weight: WeightAuthor},
		}
		return appendTags(fields, snap.EffectiveTags(a.ID))
	})
}

// SearchMCPs matches MCPs on name, display name, tags, description and the
// JSON text of their config.
func SearchMCPs(snap *catalog.Snapshot, query string, limit int) []Result {
	return search(snap, catalog.KindMCP, Compile(query), limit, func(a *catalog.Action) []Field {
		fields := []Field{{Value: a.Name}, {Value: a.DisplayName}, {Value: a.Description}}
		fields = appendTags(fields, a.Tags)
		return append(fields, Field{Value: configText(a.Config), Weight: WeightConfig})
	})
}

// SearchAll runs the three category searches with the same limit.
func SearchAll(snap *catalog.Snapshot, query string, limit int) All {
	return All{
		Agents: SearchAgents(snap, query, limit),
		Rules:  SearchRules(snap, query, limit),
		MCPs:   SearchMCPs(snap, query, limit),
	}
}

func search(snap *catalog.Snapshot, kind catalog.Kind, q *Query, limit int, fields func(*catalog.Action) []Field) []Result {
	hits := Rank(q, snap.ByKind(kind), fields, limit)
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, newResult(snap, h.Item, h.Score))
	}
	return out
}

func newResult(snap *catalog.Snapshot, a *catalog.Action, score int) Result {
	tags := a.Tags
	if a.Type == catalog.TypeRuleset {
		tags = snap.EffectiveTags(a.ID)
	}
	return Result{
		ID:          a.ID,
		Name:        a.Name,
		DisplayName: a.DisplayName,
		Type:        a.Type,
		Tags:        tags,
		Author:      a.Author,
		Namespace:   a.Namespace,
		Filename:    a.Filename,
		Description: a.Description,
		Children:    a.Children,
		Relevance:   score,
	}
}

func appendTags(fields []Field, tags []string) []Field {
	for _, t := range tags {
		fields = append(fields, Field{Value: t})
	}
	return fields
}

func configText(cfg map[string]any) string {
	if len(cfg) == 0 {
		return ""
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return string(data)
}

package recommend

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/gitrules/gitrules/internal/catalog"
)

// Entry is one selectable item as shown to the model.
type Entry struct {
	Slug        string             `json:"slug"`
	DisplayName string             `json:"display_name"`
	Type        catalog.ActionType `json:"type,omitempty"`
	Tags        []string           `json:"tags"`
}

// Catalog is the compact view of the selectable items.
type Catalog struct {
	Agents []Entry `json:"agents"`
	Rules  []Entry `json:"rules"`
	MCPs   []Entry `json:"mcps"`
}

// BuildCatalog lists agents, rules (rules and rulesets) and MCPs sorted by slug.
// Packs are not offered to the model.
func BuildCatalog(snap *catalog.Snapshot) *Catalog {
	c := &Catalog{
		Agents: entries(snap, catalog.KindAgent),
		Rules:  entries(snap, catalog.KindRule),
		MCPs:   entries(snap, catalog.KindMCP),
	}
	for i := range c.Rules {
		c.Rules[i].Type = typeOf(snap, c.Rules[i].Slug)
	}
	return c
}

func entries(snap *catalog.Snapshot, kind catalog.Kind) []Entry {
	actions := snap.ByKind(kind)
	out := make([]Entry, 0, len(actions))
	for _, a := range actions {
		tags := a.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, Entry{Slug: a.ID, DisplayName: a.Title(), Tags: tags})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func typeOf(snap *catalog.Snapshot, id string) catalog.ActionType {
	a, err := snap.Get(id)
	if err != nil {
		return catalog.TypeRule
	}
	return a.Type
}

// Version is the first 8 hex characters of the SHA-1 of all slugs, sorted
// and comma-joined. It changes whenever an item is added or removed.
func (c *Catalog) Version() string {
	slugs := make([]string, 0, len(c.Agents)+len(c.Rules)+len(c.MCPs))
	for _, list := range [][]Entry{c.Agents, c.Rules, c.MCPs} {
		for _, e := range list {
			slugs = append(slugs, e.Slug)
		}
	}
	sort.Strings(slugs)
	sum := sha1.Sum([]byte(strings.Join(slugs, ",")))
	return hex.EncodeToString(sum[:])[:8]
}

// Format renders one line per item, slug first, grouped by category.
func (c *Catalog) Format() string {
	var b strings.Builder
	section := func(title string, list []Entry, withType bool) {
		b.WriteString("- " + title + ":\n")
		for _, e := range list {
			b.WriteString("  " + e.Slug + " - " + e.DisplayName)
			if withType {
				b.WriteString(" - " + string(e.Type))
			}
			if len(e.Tags) > 0 {
				b.WriteString(" - [" + strings.Join(e.Tags, ", ") + "]")
			}
			b.WriteString("\n")
		}
	}
	section("Agents", c.Agents, false)
	section("Rules", c.Rules, true)
	section("MCPs", c.MCPs, false)
	return strings.TrimSuffix(b.String(), "\n")
}

// has reports whether slug is offered in category.
func (c *Catalog) has(category, slug string) bool {
	var list []Entry
	switch category {
	case CategoryRules:
		list = c.Rules
	case CategoryAgents:
		list = c.Agents
	case CategoryMCPs:
		list = c.MCPs
	}
	for _, e := range list {
		if e.Slug == slug {
			return true
		}
	}
	return false
}

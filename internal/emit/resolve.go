// Package emit turns a selection of catalog actions into configuration files
// for developer tools, plus a patch that creates them.
package emit

import "github.com/gitrules/gitrules/internal/catalog"

// Selection holds resolved actions by category, in request order.
type Selection struct {
	Agents []*catalog.Action
	Rules  []*catalog.Action // rules and rulesets
	MCPs   []*catalog.Action
}

// Len returns the number of resolved actions.
func (s Selection) Len() int {
	return len(s.Agents) + len(s.Rules) + len(s.MCPs)
}

// Resolve classifies ids against snap. Unknown ids are dropped and each id is
// resolved at most once. A pack contributes its direct children; nested packs
// and missing children are skipped.
//
// Ids are unique across categories in a snapshot, so the lookup order
// (agent, then rule or ruleset, then mcp) only matters for malformed input
// and is fixed by the load-time collision policy.
func Resolve(snap *catalog.Snapshot, ids []string) Selection {
	var (
		sel  Selection
		seen = make(map[string]struct{}, len(ids))
	)
	add := func(a *catalog.Action) {
		if _, dup := seen[a.ID]; dup {
			return
		}
		seen[a.ID] = struct{}{}
		switch a.Kind() {
		case catalog.KindAgent:
			sel.Agents = append(sel.Agents, a)
		case catalog.KindRule:
			sel.Rules = append(sel.Rules, a)
		case catalog.KindMCP:
			sel.MCPs = append(sel.MCPs, a)
		}
	}

	for _, id := range ids {
		a, err := snap.Get(id)
		if err != nil {
			continue
		}
		if a.Kind() != catalog.KindPack {
			add(a)
			continue
		}
		refs, _ := snap.Children(a.ID)
		for _, ref := range refs {
			if ref.Err != nil || ref.Action.Kind() == catalog.KindPack {
				continue
			}
			add(ref.Action)
		}
	}
	return sel
}

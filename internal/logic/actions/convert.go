package actions

import (
	"fmt"
	"strings"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/types"
)

// toActionItem converts a catalog action. Content and config are left out of
// list responses.
func toActionItem(snap *catalog.Snapshot, a *catalog.Action, full bool) types.ActionItem {
	item := types.ActionItem{
		Id:          a.ID,
		Name:        a.Name,
		DisplayName: a.DisplayName,
		ActionType:  string(a.Type),
		Tags:        nonNil(a.Tags),
		Children:    a.Children,
		Author:      a.Author,
		Namespace:   a.Namespace,
		Filename:    a.Filename,
		Description: a.Description,
	}
	if a.Type == catalog.TypeRuleset {
		item.EffectiveTags = snap.EffectiveTags(a.ID)
	}
	if full {
		item.Content = a.Content
		item.Config = a.Config
	}
	return item
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// childList renders children as a markdown bullet list, marking missing ones.
func childList(snap *catalog.Snapshot, a *catalog.Action) string {
	if a.Description == "" && len(a.Children) == 0 {
		return ""
	}
	var b strings.Builder
	if a.Description != "" {
		b.WriteString(a.Description)
		b.WriteString("\n\n")
	}
	for _, id := range a.Children {
		child, err := snap.Get(id)
		if err != nil {
			fmt.Fprintf(&b, "- `%s` (missing)\n", id)
			continue
		}
		fmt.Fprintf(&b, "- **%s** `%s` (%s)\n", child.Title(), child.ID, child.Type)
	}
	return b.String()
}

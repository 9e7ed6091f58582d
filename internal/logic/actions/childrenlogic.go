package actions

import (
	"context"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// maxRuleDepth bounds the rule tree so a ruleset cycle cannot recurse forever.
const maxRuleDepth = 8

type ChildrenLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Resolve ruleset and pack children
func NewChildrenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChildrenLogic {
	return &ChildrenLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Children resolves each child on its own; a missing child is reported inline.
func (l *ChildrenLogic) Children(req *types.GetActionRequest) (resp *types.ActionChildrenResponse, err error) {
	snap := l.svcCtx.Catalog.Snapshot()
	refs, err := snap.Children(req.Id)
	if err != nil {
		return nil, err
	}

	resp = &types.ActionChildrenResponse{Id: req.Id, Children: make([]types.ActionChild, len(refs))}
	for i, ref := range refs {
		child := types.ActionChild{Id: ref.ID}
		if ref.Err != nil {
			child.Error = ref.Err.Error()
		} else {
			item := toActionItem(snap, ref.Action, false)
			child.Action = &item
		}
		resp.Children[i] = child
	}
	return resp, nil
}

// Tags returns effective tag counts across the catalog.
func (l *ChildrenLogic) Tags() (resp *types.TagsResponse, err error) {
	counts := l.svcCtx.Catalog.Snapshot().TagCounts()
	resp = &types.TagsResponse{Tags: make([]types.TagCount, len(counts))}
	for i, c := range counts {
		resp.Tags[i] = types.TagCount{Tag: c.Tag, Count: c.Count}
	}
	return resp, nil
}

// TopLevelRules returns the rules no ruleset includes, with rulesets expanded.
func (l *ChildrenLogic) TopLevelRules() (resp *types.TopLevelRulesResponse, err error) {
	snap := l.svcCtx.Catalog.Snapshot()
	top := snap.TopLevelRules()

	resp = &types.TopLevelRulesResponse{Rules: make([]types.RuleNode, len(top))}
	for i, a := range top {
		resp.Rules[i] = ruleNode(snap, a, map[string]bool{}, 0)
	}
	return resp, nil
}

func ruleNode(snap *catalog.Snapshot, a *catalog.Action, path map[string]bool, depth int) types.RuleNode {
	node := types.RuleNode{
		Id:          a.ID,
		Name:        a.Name,
		DisplayName: a.DisplayName,
		ActionType:  string(a.Type),
		Tags:        snap.EffectiveTags(a.ID),
	}
	if a.Type != catalog.TypeRuleset {
		return node
	}

	path[a.ID] = true
	defer delete(path, a.ID)

	for _, id := range a.Children {
		child, err := snap.Get(id)
		switch {
		case err != nil:
			node.Children = append(node.Children, types.RuleNode{Id: id, Error: err.Error()})
		case path[id] || depth+1 >= maxRuleDepth:
			node.Children = append(node.Children, types.RuleNode{Id: id, Error: "ruleset cycle"})
		default:
			node.Children = append(node.Children, ruleNode(snap, child, path, depth+1))
		}
	}
	return node
}

package actions

import (
	"context"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/emit"
	"github.com/gitrules/gitrules/internal/markdown"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

type GetActionLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Get one action with its content
func NewGetActionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetActionLogic {
	return &GetActionLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetActionLogic) GetAction(req *types.GetActionRequest) (resp *types.ActionItem, err error) {
	snap := l.svcCtx.Catalog.Snapshot()
	a, err := snap.Get(req.Id)
	if err != nil {
		return nil, err
	}
	item := toActionItem(snap, a, true)
	return &item, nil
}

// PreviewAction renders the action for display. Agents and rules render their
// markdown body, with agent front matter returned separately. MCPs render their
// config as a JSON code block; packs and rulesets list their children.
func (l *GetActionLogic) PreviewAction(req *types.GetActionRequest) (resp *types.ActionPreviewResponse, err error) {
	snap := l.svcCtx.Catalog.Snapshot()
	a, err := snap.Get(req.Id)
	if err != nil {
		return nil, err
	}

	resp = &types.ActionPreviewResponse{
		Id:         a.ID,
		ActionType: string(a.Type),
		Title:      a.Title(),
	}

	switch a.Type {
	case catalog.TypeAgent:
		fm, body := markdown.SplitFrontMatter(a.Content)
		resp.FrontMatter = fm
		resp.Html = markdown.Render(body)
	case catalog.TypeMCP:
		resp.Html = markdown.CodeBlock("json", emit.RenderJSON(a.Config))
	case catalog.TypeRuleset, catalog.TypePack:
		resp.Html = markdown.Render(childList(snap, a))
	default:
		resp.Html = markdown.Render(a.Content)
	}
	return resp, nil
}

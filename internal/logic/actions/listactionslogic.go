package actions

import (
	"context"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// MaxListLimit caps the page size of ListActions.
const MaxListLimit = 100

type ListActionsLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// List actions with type and tag filters
func NewListActionsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListActionsLogic {
	return &ListActionsLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListActionsLogic) ListActions(req *types.ListActionsRequest) (resp *types.ListActionsResponse, err error) {
	opts := catalog.ListOptions{
		Tags:   httputil.SplitList(req.Tags),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.ActionType != "" {
		if opts.Type, err = catalog.ParseActionType(req.ActionType); err != nil {
			return nil, httputil.BadRequest(err.Error())
		}
	}
	if opts.Limit < 0 || opts.Limit > MaxListLimit {
		return nil, httputil.BadRequest("limit must be between 1 and 100")
	}
	if opts.Limit == 0 {
		opts.Limit = catalog.DefaultListLimit
	}
	if opts.Offset < 0 {
		return nil, httputil.BadRequest("offset must not be negative")
	}

	snap := l.svcCtx.Catalog.Snapshot()
	items, total := snap.List(opts)

	resp = &types.ListActionsResponse{
		Actions: make([]types.ActionItem, len(items)),
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	}
	for i, a := range items {
		resp.Actions[i] = toActionItem(snap, a, false)
	}
	return resp, nil
}

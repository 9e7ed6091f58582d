package actions

import (
	"context"
	"fmt"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

type BatchLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Fetch content for comma-separated ids
func NewBatchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BatchLogic {
	return &BatchLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BatchLogic) Rules(req *types.BatchIdsRequest) (*types.BatchRulesResponse, error) {
	items, err := l.fetch(req.Ids, catalog.KindRule)
	if err != nil {
		return nil, err
	}
	return &types.BatchRulesResponse{Rules: items}, nil
}

func (l *BatchLogic) Agents(req *types.BatchIdsRequest) (*types.BatchAgentsResponse, error) {
	items, err := l.fetch(req.Ids, catalog.KindAgent)
	if err != nil {
		return nil, err
	}
	return &types.BatchAgentsResponse{Agents: items}, nil
}

func (l *BatchLogic) MCPs(req *types.BatchIdsRequest) (*types.BatchMCPsResponse, error) {
	items, err := l.fetch(req.Ids, catalog.KindMCP)
	if err != nil {
		return nil, err
	}
	return &types.BatchMCPsResponse{Mcps: items}, nil
}

// fetch keeps request order and duplicates. Ids that are missing or belong to
// another category get an error record.
func (l *BatchLogic) fetch(raw string, kind catalog.Kind) ([]types.BatchItem, error) {
	ids := httputil.SplitList(raw)
	if len(ids) == 0 {
		return nil, httputil.BadRequest(fmt.Sprintf("no %s ids provided", kind))
	}

	snap := l.svcCtx.Catalog.Snapshot()
	items := make([]types.BatchItem, 0, len(ids))
	for _, id := range ids {
		a, err := snap.Get(id)
		if err == nil && a.Kind() != kind {
			err = fmt.Errorf("%w: %s is a %s", catalog.ErrNotFound, id, a.Type)
		}
		if err != nil {
			items = append(items, types.BatchItem{Id: id, Error: err.Error()})
			continue
		}
		items = append(items, types.BatchItem{
			Id:          id,
			Name:        a.Name,
			DisplayName: a.DisplayName,
			ActionType:  string(a.Type),
			Content:     a.Content,
			Filename:    a.Filename,
			Config:      a.Config,
		})
	}
	return items, nil
}

package search

import (
	"context"
	"strings"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/ranking"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// MaxLimit caps results per category.
const MaxLimit = 100

type SearchLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Ranked catalog search
func NewSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SearchLogic {
	return &SearchLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SearchLogic) Agents(req *types.SearchRequest) (*types.SearchResponse, error) {
	return l.one(req, ranking.SearchAgents)
}

func (l *SearchLogic) Rules(req *types.SearchRequest) (*types.SearchResponse, error) {
	return l.one(req, ranking.SearchRules)
}

func (l *SearchLogic) MCPs(req *types.SearchRequest) (*types.SearchResponse, error) {
	return l.one(req, ranking.SearchMCPs)
}

func (l *SearchLogic) All(req *types.SearchRequest) (*types.SearchAllResponse, error) {
	query, limit, err := normalize(req)
	if err != nil {
		return nil, err
	}
	all := ranking.SearchAll(l.svcCtx.Catalog.Snapshot(), query, limit)
	return &types.SearchAllResponse{Agents: all.Agents, Rules: all.Rules, Mcps: all.MCPs}, nil
}

func (l *SearchLogic) one(req *types.SearchRequest, fn func(*catalog.Snapshot, string, int) []ranking.Result) (*types.SearchResponse, error) {
	query, limit, err := normalize(req)
	if err != nil {
		return nil, err
	}
	return &types.SearchResponse{Results: fn(l.svcCtx.Catalog.Snapshot(), query, limit)}, nil
}

func normalize(req *types.SearchRequest) (string, int, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", 0, httputil.BadRequest("query is required")
	}
	switch {
	case req.Limit == 0:
		return query, ranking.DefaultLimit, nil
	case req.Limit < 0 || req.Limit > MaxLimit:
		return "", 0, httputil.BadRequest("limit must be between 1 and 100")
	}
	return query, req.Limit, nil
}

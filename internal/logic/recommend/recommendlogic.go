package recommend

import (
	"context"
	"errors"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/recommend"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

type RecommendLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Recommend a minimal tool selection for a repository
func NewRecommendLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RecommendLogic {
	return &RecommendLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RecommendLogic) Recommend(req *types.RecommendRequest) (resp *types.RecommendResponse, err error) {
	res, err := l.svcCtx.Recommender.Recommend(l.ctx, recommend.Request{
		RepoURL:    req.RepoUrl,
		Context:    req.Context,
		UserPrompt: req.UserPrompt,
	})
	if errors.Is(err, recommend.ErrNoContext) {
		return nil, httputil.BadRequest(err.Error())
	}
	if err != nil {
		return nil, err
	}

	return &types.RecommendResponse{
		Success: true,
		Preselect: types.RecommendSelection{
			Rules:  res.Preselect.Rules,
			Agents: res.Preselect.Agents,
			Mcps:   res.Preselect.MCPs,
		},
		Rationales:     res.Rationales,
		ContextSize:    res.ContextSize,
		CatalogVersion: res.CatalogVersion,
		Raw:            res.Raw,
	}, nil
}

package search

import (
	"net/http"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logic/search"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// SearchAllHandler searches agents, rules and MCPs
func SearchAllHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return handle(svcCtx, func(l *search.SearchLogic, req *types.SearchRequest) (any, error) { return l.All(req) })
}

// SearchAgentsHandler searches agents
func SearchAgentsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return handle(svcCtx, func(l *search.SearchLogic, req *types.SearchRequest) (any, error) { return l.Agents(req) })
}

// SearchRulesHandler searches rules and rulesets
func SearchRulesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return handle(svcCtx, func(l *search.SearchLogic, req *types.SearchRequest) (any, error) { return l.Rules(req) })
}

// SearchMCPsHandler searches MCPs
func SearchMCPsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return handle(svcCtx, func(l *search.SearchLogic, req *types.SearchRequest) (any, error) { return l.MCPs(req) })
}

func handle(svcCtx *svc.ServiceContext, run func(*search.SearchLogic, *types.SearchRequest) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SearchRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		resp, err := run(search.NewSearchLogic(r.Context(), svcCtx), &req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

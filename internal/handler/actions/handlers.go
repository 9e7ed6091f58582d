package actions

import (
	"net/http"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logic/actions"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// ListActionsHandler returns a filtered page of actions
func ListActionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ListActionsRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := actions.NewListActionsLogic(r.Context(), svcCtx)
		resp, err := l.ListActions(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// GetActionHandler returns a single action by id
func GetActionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GetActionRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := actions.NewGetActionLogic(r.Context(), svcCtx)
		resp, err := l.GetAction(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// PreviewActionHandler returns an action rendered to HTML
func PreviewActionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GetActionRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := actions.NewGetActionLogic(r.Context(), svcCtx)
		resp, err := l.PreviewAction(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// ActionChildrenHandler resolves the children of a ruleset or pack
func ActionChildrenHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GetActionRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := actions.NewChildrenLogic(r.Context(), svcCtx)
		resp, err := l.Children(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// TagsHandler returns effective tag counts
func TagsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, _ := actions.NewChildrenLogic(r.Context(), svcCtx).Tags()
		httputil.OkJSON(w, resp)
	}
}

// TopLevelRulesHandler returns the rule tree
func TopLevelRulesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, _ := actions.NewChildrenLogic(r.Context(), svcCtx).TopLevelRules()
		httputil.OkJSON(w, resp)
	}
}

// BatchRulesHandler returns content for comma-separated rule ids
func BatchRulesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return batchHandler(svcCtx, func(l *actions.BatchLogic, req *types.BatchIdsRequest) (any, error) {
		return l.Rules(req)
	})
}

// BatchAgentsHandler returns content for comma-separated agent ids
func BatchAgentsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return batchHandler(svcCtx, func(l *actions.BatchLogic, req *types.BatchIdsRequest) (any, error) {
		return l.Agents(req)
	})
}

// BatchMCPsHandler returns configs for comma-separated MCP ids
func BatchMCPsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return batchHandler(svcCtx, func(l *actions.BatchLogic, req *types.BatchIdsRequest) (any, error) {
		return l.MCPs(req)
	})
}

func batchHandler(svcCtx *svc.ServiceContext, fetch func(*actions.BatchLogic, *types.BatchIdsRequest) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BatchIdsRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		resp, err := fetch(actions.NewBatchLogic(r.Context(), svcCtx), &req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// CatalogHandler returns the recommender's catalog view and version
func CatalogHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, _ := actions.NewCatalogLogic(r.Context(), svcCtx).Summary()
		httputil.OkJSON(w, resp)
	}
}

// ReloadCatalogHandler re-reads catalog sources
func ReloadCatalogHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := actions.NewCatalogLogic(r.Context(), svcCtx).Reload()
		if err != nil {
			httputil.ErrorWithCode(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputil.OkJSON(w, resp)
	}
}

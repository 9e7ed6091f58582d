package generate

import (
	"net/http"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logic/generate"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// GenerateHandler emits configuration files and a patch
func GenerateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := generate.NewGenerateLogic(r.Context(), svcCtx)
		resp, err := l.Generate(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// ToggleMCPHandler adds or removes an MCP server from a client config
func ToggleMCPHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ToggleMCPRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := generate.NewGenerateLogic(r.Context(), svcCtx)
		resp, err := l.ToggleMCP(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

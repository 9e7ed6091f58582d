package scripts

import (
	"net/http"
	"strings"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logic/scripts"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// CreateScriptHandler stores a rendered script and returns its hash
func CreateScriptHandler(svcCtx *svc.ServiceContext, kind scripts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ScriptRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := scripts.NewScriptLogic(r.Context(), svcCtx, kind)
		resp, err := l.Create(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

// GetScriptHandler serves a stored script as text. The route parameter
// carries the ".sh" suffix.
func GetScriptHandler(svcCtx *svc.ServiceContext, kind scripts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := httputil.PathVar(r, "script")
		hash, ok := strings.CutSuffix(name, ".sh")
		if !ok {
			httputil.NotFound(w, string(kind)+" not found")
			return
		}

		script, ok := scripts.NewScriptLogic(r.Context(), svcCtx, kind).Get(hash)
		if !ok {
			httputil.NotFound(w, string(kind)+" not found")
			return
		}
		httputil.WriteText(w, script)
	}
}

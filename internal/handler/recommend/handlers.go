package recommend

import (
	"net/http"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logic/recommend"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// RecommendHandler asks the model for a tool selection
func RecommendHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RecommendRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := recommend.NewRecommendLogic(r.Context(), svcCtx)
		resp, err := l.Recommend(&req)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}

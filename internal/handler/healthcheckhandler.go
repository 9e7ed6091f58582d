package handler

import (
	"net/http"
	"time"

	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.HealthResponse{
			Status:    "healthy",
			Version:   svcCtx.Version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Actions:   svcCtx.Catalog.Snapshot().Len(),
		})
	}
}

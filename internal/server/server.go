package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gitrules/gitrules/internal/handler"
	"github.com/gitrules/gitrules/internal/handler/actions"
	"github.com/gitrules/gitrules/internal/handler/generate"
	"github.com/gitrules/gitrules/internal/handler/recommend"
	"github.com/gitrules/gitrules/internal/handler/scripts"
	"github.com/gitrules/gitrules/internal/handler/search"
	"github.com/gitrules/gitrules/internal/logging"
	scriptlogic "github.com/gitrules/gitrules/internal/logic/scripts"
	"github.com/gitrules/gitrules/internal/mcp"
	"github.com/gitrules/gitrules/internal/middleware"
	"github.com/gitrules/gitrules/internal/svc"
)

const defaultShutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP API over svcCtx.
func NewRouter(svcCtx *svc.ServiceContext) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(corsMiddleware())

	r.Get("/health", handler.HealthCheckHandler(svcCtx))

	r.Group(func(r chi.Router) {
		if svcCtx.APILimiter != nil {
			r.Use(svcCtx.APILimiter.Middleware)
		}

		r.Route("/api", func(r chi.Router) {
			registerCatalogRoutes(r, svcCtx)
			registerSearchRoutes(r, svcCtx)
			registerGenerateRoutes(r, svcCtx)

			r.Group(func(r chi.Router) {
				if svcCtx.RecommendLimiter != nil {
					r.Use(svcCtx.RecommendLimiter.Middleware)
				}
				r.Post("/recommend", recommend.RecommendHandler(svcCtx))
			})
		})

		mcpHandler := mcp.NewHandler(svcCtx.Catalog, svcCtx.Version)
		r.Handle("/mcp", mcpHandler)
		r.Handle("/mcp/*", mcpHandler)
	})

	return r
}

func registerCatalogRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Get("/v2/actions", actions.ListActionsHandler(svcCtx))
	r.Get("/v2/actions/{id}", actions.GetActionHandler(svcCtx))
	r.Get("/v2/actions/{id}/preview", actions.PreviewActionHandler(svcCtx))
	r.Get("/v2/actions/{id}/children", actions.ActionChildrenHandler(svcCtx))
	r.Get("/v2/tags", actions.TagsHandler(svcCtx))

	r.Get("/rules/top-level", actions.TopLevelRulesHandler(svcCtx))
	r.Get("/rules/{ids}", actions.BatchRulesHandler(svcCtx))
	r.Get("/agents/{ids}", actions.BatchAgentsHandler(svcCtx))
	r.Get("/mcps/{ids}", actions.BatchMCPsHandler(svcCtx))

	r.Get("/catalog", actions.CatalogHandler(svcCtx))
	r.Post("/catalog/reload", actions.ReloadCatalogHandler(svcCtx))
}

func registerSearchRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Get("/search", search.SearchAllHandler(svcCtx))
	r.Get("/search/agents", search.SearchAgentsHandler(svcCtx))
	r.Get("/search/rules", search.SearchRulesHandler(svcCtx))
	r.Get("/search/mcps", search.SearchMCPsHandler(svcCtx))
}

func registerGenerateRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Post("/generate", generate.GenerateHandler(svcCtx))
	r.Post("/mcps/toggle", generate.ToggleMCPHandler(svcCtx))

	r.Post("/install", scripts.CreateScriptHandler(svcCtx, scriptlogic.KindInstall))
	r.Get("/install/{script}", scripts.GetScriptHandler(svcCtx, scriptlogic.KindInstall))
	r.Post("/ruleset", scripts.CreateScriptHandler(svcCtx, scriptlogic.KindRuleset))
	r.Get("/ruleset/{script}", scripts.GetScriptHandler(svcCtx, scriptlogic.KindRuleset))
}

// corsMiddleware allows any origin; the API is read-mostly and carries no credentials.
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id, "+middleware.RequestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, svcCtx *svc.ServiceContext) error {
	c := svcCtx.Config
	httpServer := &http.Server{
		Addr:              c.Addr(),
		Handler:           NewRouter(svcCtx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("Server ready at http://%s", c.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down server gracefully...")
	timeout := c.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

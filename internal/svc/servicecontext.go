package svc

import (
	"errors"
	"fmt"

	"github.com/gitrules/gitrules/internal/ai"
	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/config"
	"github.com/gitrules/gitrules/internal/defaults"
	"github.com/gitrules/gitrules/internal/ingest"
	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/middleware"
	"github.com/gitrules/gitrules/internal/recommend"
	"github.com/gitrules/gitrules/internal/scripts"
)

type ServiceContext struct {
	Config  config.Config
	Version string // Build version (e.g. "v0.2.0" or "dev")

	Catalog     *catalog.Store
	Recommender *recommend.Recommender

	Installs *scripts.Store // install scripts, env var reminder included
	Rulesets *scripts.Store // ruleset scripts

	APILimiter       *middleware.RateLimiter
	RecommendLimiter *middleware.RateLimiter
}

// NewServiceContext opens the catalog and wires the recommendation pipeline.
// A missing API key is not fatal: the server starts and /api/recommend
// reports the error.
func NewServiceContext(c config.Config, version string) (*ServiceContext, error) {
	if c.Catalog.SeedDefaults {
		if err := defaults.EnsureCatalogDir(c.Catalog.Dir); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	store, err := catalog.OpenDir(c.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	completer, err := ai.NewFromConfig(c.LLM)
	switch {
	case errors.Is(err, ai.ErrNoAPIKey):
		logging.Warn("LLM API key not set - recommendations disabled")
	case err != nil:
		return nil, err
	default:
		logging.Infof("LLM provider initialized: %s", completer.ID())
	}

	return New(c, version, store, completer, ingest.NewClient(c.Ingest)), nil
}

// New assembles a service context from already built collaborators.
// completer and ingester may be nil.
func New(c config.Config, version string, store *catalog.Store, completer ai.Completer, ingester recommend.Ingester) *ServiceContext {
	svc := &ServiceContext{
		Config:  c,
		Version: version,
		Catalog: store,
		Recommender: recommend.NewRecommender(store, completer, ingester, recommend.Options{
			Model:       c.LLM.Model,
			Temperature: c.LLM.Temperature,
			MaxTokens:   c.LLM.MaxTokens,
		}),
		Installs: scripts.NewStore(),
		Rulesets: scripts.NewStore(),
	}

	store.OnReload(func(snap *catalog.Snapshot) {
		logging.Infof("[catalog] Catalog version %s", recommend.BuildCatalog(snap).Version())
	})

	if c.RateLimit.Enabled {
		svc.APILimiter = middleware.NewRateLimiter(c.RateLimit.RequestsPerMinute, c.RateLimit.Burst)
		svc.RecommendLimiter = middleware.NewRateLimiter(c.RateLimit.RecommendPerMinute, 0)
	}
	return svc
}

// Close stops background catalog reloads.
func (svc *ServiceContext) Close() {
	if svc.Catalog != nil {
		svc.Catalog.Stop()
	}
	logging.Info("Service context closed")
}

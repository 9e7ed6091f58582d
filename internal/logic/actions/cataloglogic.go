package actions

import (
	"context"
	"time"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/recommend"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

type CatalogLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Catalog summary and reload
func NewCatalogLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CatalogLogic {
	return &CatalogLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Summary returns the compact catalog the recommender sees, with its version.
func (l *CatalogLogic) Summary() (resp *types.CatalogResponse, err error) {
	snap := l.svcCtx.Catalog.Snapshot()
	cat := recommend.BuildCatalog(snap)

	return &types.CatalogResponse{
		Version:  cat.Version(),
		LoadedAt: snap.LoadedAt().UTC().Format(time.RFC3339),
		Counts:   counts(snap),
		Agents:   toEntries(cat.Agents),
		Rules:    toEntries(cat.Rules),
		Mcps:     toEntries(cat.MCPs),
	}, nil
}

// Reload re-reads the catalog sources. On failure the previous snapshot stays.
func (l *CatalogLogic) Reload() (resp *types.ReloadResponse, err error) {
	snap, err := l.svcCtx.Catalog.Reload()
	if err != nil {
		return nil, err
	}

	diags := snap.Diagnostics()
	resp = &types.ReloadResponse{
		Total:       snap.Len(),
		Counts:      counts(snap),
		Diagnostics: make([]string, len(diags)),
		LoadedAt:    snap.LoadedAt().UTC().Format(time.RFC3339),
	}
	for i, d := range diags {
		resp.Diagnostics[i] = d.Error()
	}
	return resp, nil
}

func counts(snap *catalog.Snapshot) map[string]int {
	out := make(map[string]int)
	for t, n := range snap.Counts() {
		out[string(t)] = n
	}
	return out
}

func toEntries(entries []recommend.Entry) []types.CatalogEntry {
	out := make([]types.CatalogEntry, len(entries))
	for i, e := range entries {
		out[i] = types.CatalogEntry{Slug: e.Slug, DisplayName: e.DisplayName, Type: string(e.Type), Tags: e.Tags}
	}
	return out
}

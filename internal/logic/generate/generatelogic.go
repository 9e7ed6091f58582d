package generate

import (
	"context"
	"fmt"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/emit"
	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

type GenerateLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Generate configuration files from selected action ids
func NewGenerateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GenerateLogic {
	return &GenerateLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GenerateLogic) Generate(req *types.GenerateRequest) (resp *types.GenerateResponse, err error) {
	formats := emit.DefaultFormats
	if len(req.Formats) > 0 {
		formats = make([]emit.Format, len(req.Formats))
		for i, f := range req.Formats {
			formats[i] = emit.Format(f)
		}
	}

	src := emit.ParseSource(req.Source, req.RepoUrl)
	sel := emit.Resolve(l.svcCtx.Catalog.Snapshot(), req.ActionIds)
	out := emit.Emit(sel, formats, src)
	logging.Debugf("[generate] %d ids -> %d files", len(req.ActionIds), len(out.Files))

	resp = &types.GenerateResponse{
		Files:   out.Map(),
		Paths:   make([]string, len(out.Files)),
		Patch:   out.Patch,
		Source:  string(src.Kind),
		EnvVars: emit.EnvVarsInFiles(out.Files),
	}
	for i, f := range out.Files {
		resp.Paths[i] = f.Path
	}
	return resp, nil
}

// ToggleMCP adds or removes one MCP server in a client's .mcp.json.
func (l *GenerateLogic) ToggleMCP(req *types.ToggleMCPRequest) (resp *types.ToggleMCPResponse, err error) {
	if req.McpId == "" {
		return nil, httputil.BadRequest("mcp_id is required")
	}
	snap := l.svcCtx.Catalog.Snapshot()
	mcp, err := snap.Get(req.McpId)
	if err != nil {
		return nil, err
	}
	if mcp.Type != catalog.TypeMCP {
		return nil, fmt.Errorf("%w: %s is a %s", catalog.ErrNotFound, mcp.ID, mcp.Type)
	}

	res := emit.ToggleMCP(req.ExistingConfig, mcp.ID, mcp.Config)
	return &types.ToggleMCPResponse{
		Content: res.Content,
		Config:  res.Config,
		Removed: res.Removed,
		EnvVars: emit.EnvVars(res.Config),
	}, nil
}

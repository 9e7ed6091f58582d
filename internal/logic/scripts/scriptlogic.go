package scripts

import (
	"context"

	"github.com/gitrules/gitrules/internal/emit"
	"github.com/gitrules/gitrules/internal/httputil"
	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/scripts"
	"github.com/gitrules/gitrules/internal/svc"
	"github.com/gitrules/gitrules/internal/types"
)

// Kind selects which script store a request targets.
type Kind string

const (
	KindInstall Kind = "install"
	KindRuleset Kind = "ruleset"
)

type ScriptLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	kind   Kind
}

// Create and fetch hash-addressed installer scripts
func NewScriptLogic(ctx context.Context, svcCtx *svc.ServiceContext, kind Kind) *ScriptLogic {
	return &ScriptLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		kind:   kind,
	}
}

func (l *ScriptLogic) store() *scripts.Store {
	if l.kind == KindRuleset {
		return l.svcCtx.Rulesets
	}
	return l.svcCtx.Installs
}

// Create renders files to a script and stores it under its content hash.
// Install scripts list the ${VAR} placeholders the files need; ruleset scripts do not.
func (l *ScriptLogic) Create(req *types.ScriptRequest) (resp *types.ScriptResponse, err error) {
	if len(req.Files) == 0 {
		return nil, httputil.BadRequest("files is required")
	}

	var opts scripts.RenderOptions
	if l.kind == KindInstall {
		files := make([]emit.File, 0, len(req.Files))
		for path, content := range req.Files {
			files = append(files, emit.File{Path: path, Content: content})
		}
		opts.EnvVars = emit.EnvVarsInFiles(files)
	}

	script, err := scripts.Render(req.Files, opts)
	if err != nil {
		return nil, httputil.BadRequest(err.Error())
	}
	hash := l.store().Put(script)
	logging.Infof("[%s] Stored script %s (%d files)", l.kind, hash, len(req.Files))

	return &types.ScriptResponse{
		Hash: hash,
		Url:  "/api/" + string(l.kind) + "/" + hash + ".sh",
	}, nil
}

// Get returns a stored script.
func (l *ScriptLogic) Get(hash string) (string, bool) {
	return l.store().Get(hash)
}

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gitrules/gitrules/internal/ai"
	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/logging"
)

var (
	// ErrNoContext is returned when a request has neither context nor repo URL.
	ErrNoContext = errors.New("either repo_url or context must be provided")

	// ErrNoIngester is returned when only a repo URL is given and ingestion is not configured.
	ErrNoIngester = errors.New("repository ingestion is not configured")
)

// Ingester fetches repository context for a URL.
type Ingester interface {
	Ingest(ctx context.Context, repoURL string) (string, error)
}

// SnapshotSource provides the current catalog snapshot.
type SnapshotSource interface {
	Snapshot() *catalog.Snapshot
}

// Options tune the completion call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Recommender runs ingest, completion and validation.
type Recommender struct {
	catalog   SnapshotSource
	completer ai.Completer
	ingester  Ingester
	opts      Options
}

// NewRecommender wires the collaborators. completer and ingester may be nil;
// calls that need them then fail with ai.ErrNoAPIKey or ErrNoIngester.
func NewRecommender(src SnapshotSource, completer ai.Completer, ingester Ingester, opts Options) *Recommender {
	return &Recommender{catalog: src, completer: completer, ingester: ingester, opts: opts}
}

// Request is one recommendation request.
type Request struct {
	RepoURL    string
	Context    string
	UserPrompt string
}

// Result is the validated recommendation plus diagnostics.
type Result struct {
	Preselect      Selection
	Rationales     Rationales
	ContextSize    int
	CatalogVersion string
	Raw            string
}

// Recommend uses req.Context when given, otherwise ingests req.RepoURL.
// Ingest and completion failures are returned; model output never fails.
func (r *Recommender) Recommend(ctx context.Context, req Request) (*Result, error) {
	repoContext := req.Context
	if strings.TrimSpace(repoContext) == "" {
		if strings.TrimSpace(req.RepoURL) == "" {
			return nil, ErrNoContext
		}
		if r.ingester == nil {
			return nil, ErrNoIngester
		}
		var err error
		repoContext, err = r.ingester.Ingest(ctx, req.RepoURL)
		if err != nil {
			return nil, err
		}
	} else {
		logging.Infof("[recommend] Using provided context")
	}
	contextSize := utf8.RuneCountInString(repoContext)
	logging.Infof("[recommend] Context size: %d", contextSize)

	if r.completer == nil {
		return nil, ai.ErrNoAPIKey
	}

	cat := BuildCatalog(r.catalog.Snapshot())
	raw, err := r.completer.Complete(ctx, &ai.CompletionRequest{
		System:      SystemPrompt(cat.Format()),
		User:        UserMessage(repoContext, req.UserPrompt),
		Model:       r.opts.Model,
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	sel, rationales := Validate(raw, cat)
	logging.Infof("[recommend] Selected %d rules, %d agents, %d mcps",
		len(sel.Rules), len(sel.Agents), len(sel.MCPs))

	return &Result{
		Preselect:      sel,
		Rationales:     rationales,
		ContextSize:    contextSize,
		CatalogVersion: cat.Version(),
		Raw:            raw,
	}, nil
}

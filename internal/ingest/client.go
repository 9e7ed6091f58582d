// Package ingest fetches a repository digest from a gitingest-compatible API.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/gitrules/gitrules/internal/config"
	"github.com/gitrules/gitrules/internal/logging"
)

const (
	DefaultBaseURL       = "https://gitingest.com"
	DefaultMaxFileSize   = 102400
	DefaultContextTokens = 50000

	// charsPerToken approximates tokens from characters.
	charsPerToken = 4
	maxTries      = 3

	// TruncatedSuffix marks a context cut at the size budget.
	TruncatedSuffix = "\n\n... (context truncated)"
)

// ErrEmptyURL is returned when no repository URL is given.
var ErrEmptyURL = errors.New("repository url is required")

// StatusError is a non-2xx answer from the ingestion API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingest api returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the ingestion API.
type Client struct {
	baseURL       string
	maxFileSize   int
	contextTokens int
	http          *http.Client

	// newBackOff builds the retry schedule for one Ingest call.
	newBackOff func() backoff.BackOff
}

// NewClient builds a client from config, filling defaults for zero values.
func NewClient(cfg config.IngestConfig) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		maxFileSize:   cfg.MaxFileSize,
		contextTokens: cfg.ContextTokens,
		http:          &http.Client{Timeout: cfg.Timeout},
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxFileSize <= 0 {
		c.maxFileSize = DefaultMaxFileSize
	}
	if c.contextTokens <= 0 {
		c.contextTokens = DefaultContextTokens
	}
	if cfg.Timeout <= 0 {
		c.http.Timeout = 120 * time.Second
	}
	return c
}

type ingestRequest struct {
	InputText   string `json:"input_text"`
	MaxFileSize int    `json:"max_file_size"`
	PatternType string `json:"pattern_type"`
	Pattern     string `json:"pattern"`
	Token       string `json:"token"`
}

type ingestResponse struct {
	Summary *string `json:"summary"`
	Tree    string  `json:"tree"`
	Content string  `json:"content"`
}

// Ingest returns the repository context, truncated to the token budget.
// Network errors and 5xx answers are retried; 4xx answers are not.
func (c *Client) Ingest(ctx context.Context, repoURL string) (string, error) {
	if strings.TrimSpace(repoURL) == "" {
		return "", ErrEmptyURL
	}
	logging.Infof("[ingest] Ingesting repository %s", repoURL)

	body, err := json.Marshal(ingestRequest{
		InputText:   repoURL,
		MaxFileSize: c.maxFileSize,
		PatternType: "exclude",
	})
	if err != nil {
		return "", err
	}

	resp, err := backoff.Retry(ctx, func() (*ingestResponse, error) {
		return c.post(ctx, body)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(maxTries))
	if err != nil {
		logging.Errorf("[ingest] Failed to ingest %s: %v", repoURL, err)
		return "", fmt.Errorf("failed to ingest repository: %w", err)
	}

	full := resp.Content
	if resp.Summary != nil {
		full = *resp.Summary + "\n\n" + resp.Tree + "\n\n" + resp.Content
	}

	out, truncated := Truncate(full, c.contextTokens)
	if truncated {
		logging.Infof("[ingest] Context truncated from %d to %d characters", len([]rune(full)), len([]rune(out)))
	} else {
		logging.Infof("[ingest] Repository context ingested: %d characters", len([]rune(out)))
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*ingestResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ingest", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		serr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if resp.StatusCode < 500 {
			return nil, backoff.Permanent(serr)
		}
		return nil, serr
	}

	var out ingestResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("invalid ingest response: %w", err))
	}
	return &out, nil
}

// Truncate cuts s to tokens*4 runes and appends TruncatedSuffix when it was longer.
func Truncate(s string, tokens int) (string, bool) {
	limit := tokens * charsPerToken
	r := []rune(s)
	if len(r) <= limit {
		return s, false
	}
	return string(r[:limit]) + TruncatedSuffix, true
}

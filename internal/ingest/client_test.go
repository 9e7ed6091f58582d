package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrules/gitrules/internal/config"
	"github.com/gitrules/gitrules/internal/logging"
)

func init() {
	logging.Disable()
}

func newTestClient(url string, tokens int) *Client {
	c := NewClient(config.IngestConfig{BaseURL: url, ContextTokens: tokens})
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestIngestCombinesSections(t *testing.T) {
	var req ingestRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ingest", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &req))
		io.WriteString(w, `{"summary":"S","tree":"T","content":"C"}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, 100).Ingest(context.Background(), "https://github.com/acme/app")
	require.NoError(t, err)
	assert.Equal(t, "S\n\nT\n\nC", out)

	assert.Equal(t, "https://github.com/acme/app", req.InputText)
	assert.Equal(t, DefaultMaxFileSize, req.MaxFileSize)
	assert.Equal(t, "exclude", req.PatternType)
}

func TestIngestContentOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":"just content"}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, 100).Ingest(context.Background(), "repo")
	require.NoError(t, err)
	assert.Equal(t, "just content", out)
}

func TestIngestTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":"`+strings.Repeat("x", 50)+`"}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, 5).Ingest(context.Background(), "repo")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 20)+TruncatedSuffix, out)
}

func TestIngestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"content":"ok"}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, 100).Ingest(context.Background(), "repo")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 3, calls.Load())
}

func TestIngestGivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 100).Ingest(context.Background(), "repo")
	require.Error(t, err)
	assert.EqualValues(t, maxTries, calls.Load())
}

func TestIngestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "no such repo")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 100).Ingest(context.Background(), "repo")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, "no such repo", serr.Body)
}

func TestIngestEmptyURL(t *testing.T) {
	_, err := newTestClient("http://unused", 100).Ingest(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestTruncate(t *testing.T) {
	out, cut := Truncate("héllo", 1)
	assert.True(t, cut)
	assert.Equal(t, "héll"+TruncatedSuffix, out)

	out, cut = Truncate("abcd", 1)
	assert.False(t, cut)
	assert.Equal(t, "abcd", out)
}

//go:build e2e

package app_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tjdict-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/tjdict-backend/internal/app"
	"github.com/heartmarshall/tjdict-backend/internal/config"
	"github.com/heartmarshall/tjdict-backend/internal/transport/rest"
)

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

type testServer struct {
	URL    string
	Client *http.Client
}

// setupTestServer bootstraps the live editing stack on a containerized
// PostgreSQL database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Server: config.ServerConfig{EditorHeader: "X-Editor-Id"},
		CORS:   config.CORSConfig{AllowedOrigins: "*"},
	}
	handler, cleanup, err := app.NewHandler(cfg, pool, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Client: srv.Client()}
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Editor-Id", "42")

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// uniqueWord returns a lowercase ASCII word that no other test uses.
func uniqueWord() string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'g' + (r - '0')
		}
		return r
	}, testhelper.UniqueSuffix())
}

func body(data map[string]any) map[string]any {
	return map[string]any{"entry_data": data}
}

func TestE2E_Health(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.request(t, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.request(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decodeBody[rest.HealthResponse](t, resp)
	assert.Equal(t, "ok", h.Status)
	assert.Contains(t, h.Components, "database")
	assert.Contains(t, h.Components, "entries")
}

func TestE2E_EntryLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	head := "chiah-" + uniqueWord()
	gloss := "gloss" + uniqueWord()
	page := 50_000 + rand.IntN(10_000)

	// Create: incomplete, one sense left blank.
	resp := ts.request(t, http.MethodPost, "/api/entries", body(map[string]any{
		"head": head + " (2)",
		"page": page,
		"pos":  "v",
		"1":    gloss,
		"2":    nil,
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[rest.WriteResponse](t, resp)

	e := created.Entry
	assert.NotZero(t, e.ID)
	assert.Equal(t, head, e.Head)
	require.NotNil(t, e.HeadNumber)
	assert.Equal(t, 2, *e.HeadNumber)
	require.NotNil(t, e.Page)
	assert.Equal(t, page, *e.Page)
	assert.False(t, e.IsComplete)
	assert.NotEmpty(t, e.SortKey)
	require.NotNil(t, e.CreatedBy)
	assert.Equal(t, int64(42), *e.CreatedBy)

	// Get round-trips the stored tree.
	resp = ts.request(t, http.MethodGet, fmt.Sprintf("/api/entries/%d", e.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[rest.EntryResponse](t, resp)
	assert.Equal(t, e.SortKey, got.SortKey)
	assert.JSONEq(t, string(e.EntryData), string(got.EntryData))

	// Duplicate head and number is a conflict.
	resp = ts.request(t, http.MethodPost, "/api/entries", body(map[string]any{
		"head": head + " (2)",
		"en":   "other",
	}))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Update fills the blank sense and keeps the stored page.
	resp = ts.request(t, http.MethodPut, fmt.Sprintf("/api/entries/%d", e.ID), body(map[string]any{
		"head": head + " (2)",
		"pos":  "v",
		"1":    gloss,
		"2":    "to take",
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[rest.WriteResponse](t, resp).Entry
	assert.True(t, updated.IsComplete)
	require.NotNil(t, updated.Page)
	assert.Equal(t, page, *updated.Page)
	assert.Equal(t, e.SortKey, updated.SortKey)

	// By-page listing finds it on its page.
	resp = ts.request(t, http.MethodGet, fmt.Sprintf("/api/entries/by-page/%d", page), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	byPage := decodeBody[rest.PageResponse](t, resp)
	assert.Equal(t, page, byPage.Page)
	require.NotEmpty(t, byPage.Entries)
	assert.Equal(t, e.ID, byPage.Entries[0].ID)

	// Search by English text inside the tree.
	resp = ts.request(t, http.MethodGet, "/api/entries?q=en:"+gloss, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[rest.ListResponse](t, resp)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, e.ID, list.Entries[0].ID)

	// Completeness filter excludes nothing for a complete entry.
	resp = ts.request(t, http.MethodGet, "/api/entries?complete=false&q="+head, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decodeBody[rest.ListResponse](t, resp)
	assert.Equal(t, 0, list.Total)
}

func TestE2E_ValidationAndNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/entries", body(map[string]any{"en": "no head"}))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeBody[rest.ErrorResponse](t, resp)
	assert.Equal(t, "validation failed", errResp.Error)
	assert.NotEmpty(t, errResp.RequestID)

	resp = ts.request(t, http.MethodGet, "/api/entries/999999999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.request(t, http.MethodPut, "/api/entries/999999999", body(map[string]any{"head": "a", "en": "x"}))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

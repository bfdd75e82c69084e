package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tjdict-backend/internal/config"
	"github.com/heartmarshall/tjdict-backend/internal/domain"
	entrysvc "github.com/heartmarshall/tjdict-backend/internal/service/entry"
	"github.com/heartmarshall/tjdict-backend/internal/transport/middleware"
	"github.com/heartmarshall/tjdict-backend/pkg/ctxutil"
)

type entryServiceMock struct {
	CreateEntryFunc func(ctx context.Context, input entrysvc.CreateEntryInput) (*entrysvc.WriteResult, error)
	UpdateEntryFunc func(ctx context.Context, input entrysvc.UpdateEntryInput) (*entrysvc.WriteResult, error)
	GetEntryFunc    func(ctx context.Context, id int64) (*domain.Record, error)
	ListEntriesFunc func(ctx context.Context, input entrysvc.ListEntriesInput) (*entrysvc.ListResult, error)
	ListByPageFunc  func(ctx context.Context, page int, sortBy, sortOrder string) (*entrysvc.PageResult, error)
}

func (m *entryServiceMock) CreateEntry(ctx context.Context, input entrysvc.CreateEntryInput) (*entrysvc.WriteResult, error) {
	return m.CreateEntryFunc(ctx, input)
}

func (m *entryServiceMock) UpdateEntry(ctx context.Context, input entrysvc.UpdateEntryInput) (*entrysvc.WriteResult, error) {
	return m.UpdateEntryFunc(ctx, input)
}

func (m *entryServiceMock) GetEntry(ctx context.Context, id int64) (*domain.Record, error) {
	return m.GetEntryFunc(ctx, id)
}

func (m *entryServiceMock) ListEntries(ctx context.Context, input entrysvc.ListEntriesInput) (*entrysvc.ListResult, error) {
	return m.ListEntriesFunc(ctx, input)
}

func (m *entryServiceMock) ListByPage(ctx context.Context, page int, sortBy, sortOrder string) (*entrysvc.PageResult, error) {
	return m.ListByPageFunc(ctx, page, sortBy, sortOrder)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func sampleRecord(id int64) *domain.Record {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Record{
		ID:         id,
		Head:       "tōa-lâng",
		HeadNumber: intPtr(2),
		Page:       intPtr(12),
		SortKey:    "toa#2#toa-lang#75",
		EntryData:  json.RawMessage(`{"head":"tōa-lâng","defs":[{"defs":[{"en":"adult"}]}]}`),
		IsComplete: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// newTestServer wires the full router around the mock service.
func newTestServer(t *testing.T, svc *entryServiceMock, writeLimit int) *httptest.Server {
	t.Helper()
	rl := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(rl.Stop)

	h := NewRouter(RouterDeps{
		Entries:     NewEntriesHandler(svc, discardLogger()),
		Health:      NewHealthHandler("test"),
		RateLimiter: rl,
		Server:      config.ServerConfig{EditorHeader: "X-Editor-Id", WriteRateLimit: writeLimit},
		CORS:        config.CORSConfig{AllowedOrigins: "*"},
		Log:         discardLogger(),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

var editor = map[string]string{"X-Editor-Id": "7"}

func TestEntries_List(t *testing.T) {
	var got entrysvc.ListEntriesInput
	svc := &entryServiceMock{
		ListEntriesFunc: func(ctx context.Context, input entrysvc.ListEntriesInput) (*entrysvc.ListResult, error) {
			got = input
			return &entrysvc.ListResult{Records: []*domain.Record{sampleRecord(1)}, Total: 31, Page: 2, PageSize: 10}, nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries?q=en:adult+toa&pos=n&complete=true&sortBy=head&sortOrder=desc&page=2&pageSize=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "en:adult toa", got.Query)
	require.NotNil(t, got.PartOfSpeech)
	assert.Equal(t, "n", *got.PartOfSpeech)
	require.NotNil(t, got.IsComplete)
	assert.True(t, *got.IsComplete)
	assert.Equal(t, "head", got.SortBy)
	assert.Equal(t, "desc", got.SortOrder)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 10, got.PageSize)

	body := decode[ListResponse](t, resp)
	assert.Equal(t, 31, body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 10, body.PageSize)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "tōa-lâng", body.Entries[0].Head)
	assert.JSONEq(t, string(sampleRecord(1).EntryData), string(body.Entries[0].EntryData))
}

func TestEntries_List_EmptyIsArray(t *testing.T) {
	svc := &entryServiceMock{
		ListEntriesFunc: func(ctx context.Context, input entrysvc.ListEntriesInput) (*entrysvc.ListResult, error) {
			return &entrysvc.ListResult{Records: []*domain.Record{}, Page: 1, PageSize: 50}, nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"entries":[]`)
}

func TestEntries_List_BadQuery(t *testing.T) {
	svc := &entryServiceMock{}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries?complete=maybe&page=x", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "validation failed", body.Error)
	assert.ElementsMatch(t, []string{"complete", "page"}, []string{body.Fields[0].Field, body.Fields[1].Field})
	assert.NotEmpty(t, body.RequestID)
}

func TestEntries_ByPage(t *testing.T) {
	svc := &entryServiceMock{
		ListByPageFunc: func(ctx context.Context, page int, sortBy, sortOrder string) (*entrysvc.PageResult, error) {
			assert.Equal(t, 12, page)
			assert.Equal(t, "sort_key", sortBy)
			assert.Equal(t, "", sortOrder)
			return &entrysvc.PageResult{Records: []*domain.Record{sampleRecord(1)}, Page: 12, MinPage: 1, MaxPage: 240}, nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries/by-page/12?sortBy=sort_key", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[PageResponse](t, resp)
	assert.Equal(t, 12, body.Page)
	assert.Equal(t, 1, body.MinPage)
	assert.Equal(t, 240, body.MaxPage)
	assert.Len(t, body.Entries, 1)
}

func TestEntries_ByPage_NotANumber(t *testing.T) {
	srv := newTestServer(t, &entryServiceMock{}, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries/by-page/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEntries_Get(t *testing.T) {
	svc := &entryServiceMock{
		GetEntryFunc: func(ctx context.Context, id int64) (*domain.Record, error) {
			if id == 404 {
				return nil, fmt.Errorf("get entry: %w", domain.ErrNotFound)
			}
			return sampleRecord(id), nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries/5", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[EntryResponse](t, resp)
	assert.Equal(t, int64(5), body.ID)
	assert.Equal(t, "toa#2#toa-lang#75", body.SortKey)
	assert.Equal(t, intPtr(2), body.HeadNumber)
	assert.True(t, body.IsComplete)

	resp = do(t, http.MethodGet, srv.URL+"/api/entries/404", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/entries/-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEntries_Create(t *testing.T) {
	var (
		gotData   string
		gotEditor int64
	)
	svc := &entryServiceMock{
		CreateEntryFunc: func(ctx context.Context, input entrysvc.CreateEntryInput) (*entrysvc.WriteResult, error) {
			gotData = string(input.Data)
			gotEditor, _ = ctxutil.EditorIDFromCtx(ctx)
			return &entrysvc.WriteResult{
				Record:   sampleRecord(9),
				Warnings: []domain.Warning{{Kind: domain.FailureUnknownField, Path: "/defs/0/xx", Message: "dropped"}},
			}, nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodPost, srv.URL+"/api/entries", `{"entry_data": {"head": "tōa-lâng (2)", "en": "adult"}}`, editor)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.JSONEq(t, `{"head": "tōa-lâng (2)", "en": "adult"}`, gotData)
	assert.Equal(t, int64(7), gotEditor)

	body := decode[WriteResponse](t, resp)
	assert.Equal(t, int64(9), body.Entry.ID)
	require.Len(t, body.Warnings, 1)
	assert.Equal(t, string(domain.FailureUnknownField), body.Warnings[0].Kind)
	assert.Equal(t, "/defs/0/xx", body.Warnings[0].Path)
}

func TestEntries_Create_RequiresEditor(t *testing.T) {
	svc := &entryServiceMock{
		CreateEntryFunc: func(ctx context.Context, input entrysvc.CreateEntryInput) (*entrysvc.WriteResult, error) {
			t.Error("service should not be called")
			return nil, nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodPost, srv.URL+"/api/entries", `{"entry_data": {"head": "a"}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "editor required", decode[ErrorResponse](t, resp).Error)

	resp = do(t, http.MethodPost, srv.URL+"/api/entries", `{"entry_data": {"head": "a"}}`, map[string]string{"X-Editor-Id": "nobody"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEntries_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
		wantErr  string
	}{
		{
			name:     "invalid json",
			body:     `{"entry_data": `,
			wantCode: http.StatusBadRequest,
			wantErr:  "validation failed",
		},
		{
			name:     "unknown envelope field",
			body:     `{"entry_data": {}, "is_complete": 1}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "validation failed",
		},
		{
			name: "schema violation",
			body: `{"entry_data": {"head": "a"}}`,
			svcErr: fmt.Errorf("%w: %w", domain.ErrSchemaViolation,
				domain.NewValidationError("entry_data", "/defs/0/defs/0/ex/0/ex/0/ex/0: not allowed")),
			wantCode: http.StatusBadRequest,
			wantErr:  "validation failed",
		},
		{
			name:     "duplicate",
			body:     `{"entry_data": {"head": "a"}}`,
			svcErr:   fmt.Errorf("create entry: %w", domain.ErrAlreadyExists),
			wantCode: http.StatusConflict,
			wantErr:  "entry with this head and number already exists",
		},
		{
			name:     "unexpected",
			body:     `{"entry_data": {"head": "a"}}`,
			svcErr:   errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
			wantErr:  "internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &entryServiceMock{
				CreateEntryFunc: func(ctx context.Context, input entrysvc.CreateEntryInput) (*entrysvc.WriteResult, error) {
					return nil, tt.svcErr
				},
			}
			srv := newTestServer(t, svc, 0)

			resp := do(t, http.MethodPost, srv.URL+"/api/entries", tt.body, editor)
			require.Equal(t, tt.wantCode, resp.StatusCode)
			body := decode[ErrorResponse](t, resp)
			assert.Equal(t, tt.wantErr, body.Error)
		})
	}
}

func TestEntries_Create_TooLarge(t *testing.T) {
	h := NewEntriesHandler(&entryServiceMock{}, discardLogger())

	big := `{"entry_data": {"head": "` + strings.Repeat("a", maxBodyBytes) + `"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(big))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEntries_Update(t *testing.T) {
	var got entrysvc.UpdateEntryInput
	svc := &entryServiceMock{
		UpdateEntryFunc: func(ctx context.Context, input entrysvc.UpdateEntryInput) (*entrysvc.WriteResult, error) {
			got = input
			if input.ID == 404 {
				return nil, domain.ErrNotFound
			}
			return &entrysvc.WriteResult{Record: sampleRecord(input.ID)}, nil
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodPut, srv.URL+"/api/entries/3", `{"entry_data": {"head": "chiah", "en": "eat"}}`, editor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), got.ID)

	body := decode[WriteResponse](t, resp)
	assert.Equal(t, int64(3), body.Entry.ID)
	assert.NotNil(t, body.Warnings)

	resp = do(t, http.MethodPut, srv.URL+"/api/entries/404", `{"entry_data": {"head": "chiah"}}`, editor)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEntries_WriteRateLimit(t *testing.T) {
	svc := &entryServiceMock{
		UpdateEntryFunc: func(ctx context.Context, input entrysvc.UpdateEntryInput) (*entrysvc.WriteResult, error) {
			return &entrysvc.WriteResult{Record: sampleRecord(input.ID)}, nil
		},
		GetEntryFunc: func(ctx context.Context, id int64) (*domain.Record, error) {
			return sampleRecord(id), nil
		},
	}
	srv := newTestServer(t, svc, 2)

	for i := 0; i < 2; i++ {
		resp := do(t, http.MethodPut, srv.URL+"/api/entries/1", `{"entry_data": {"head": "a"}}`, editor)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := do(t, http.MethodPut, srv.URL+"/api/entries/1", `{"entry_data": {"head": "a"}}`, editor)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Reads are not limited.
	resp = do(t, http.MethodGet, srv.URL+"/api/entries/1", "", editor)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEntries_RequestIDEchoed(t *testing.T) {
	svc := &entryServiceMock{
		GetEntryFunc: func(ctx context.Context, id int64) (*domain.Record, error) {
			return nil, domain.ErrNotFound
		},
	}
	srv := newTestServer(t, svc, 0)

	resp := do(t, http.MethodGet, srv.URL+"/api/entries/1", "", map[string]string{"X-Request-Id": "trace-1"})
	assert.Equal(t, "trace-1", resp.Header.Get("X-Request-Id"))
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "trace-1", body.RequestID)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &entryServiceMock{}, 0)

	resp := do(t, http.MethodDelete, srv.URL+"/api/entries/1", "", editor)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleError_CancelledWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)

	handleError(rec, req, discardLogger(), fmt.Errorf("find entries: %w", context.Canceled))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

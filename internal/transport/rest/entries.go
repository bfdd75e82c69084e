package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	entrysvc "github.com/heartmarshall/tjdict-backend/internal/service/entry"
)

// entryService is the live-path contract consumed by EntriesHandler.
type entryService interface {
	CreateEntry(ctx context.Context, input entrysvc.CreateEntryInput) (*entrysvc.WriteResult, error)
	UpdateEntry(ctx context.Context, input entrysvc.UpdateEntryInput) (*entrysvc.WriteResult, error)
	GetEntry(ctx context.Context, id int64) (*domain.Record, error)
	ListEntries(ctx context.Context, input entrysvc.ListEntriesInput) (*entrysvc.ListResult, error)
	ListByPage(ctx context.Context, page int, sortBy, sortOrder string) (*entrysvc.PageResult, error)
}

// EntriesHandler serves the dictionary entries API.
type EntriesHandler struct {
	svc entryService
	log *slog.Logger
}

// NewEntriesHandler creates an EntriesHandler.
func NewEntriesHandler(svc entryService, log *slog.Logger) *EntriesHandler {
	return &EntriesHandler{svc: svc, log: log.With("handler", "entries")}
}

// EntryResponse is the JSON form of a stored entry.
type EntryResponse struct {
	ID         int64           `json:"id"`
	Head       string          `json:"head"`
	HeadNumber *int            `json:"head_number"`
	Page       *int            `json:"page"`
	SortKey    string          `json:"sort_key"`
	EntryData  json.RawMessage `json:"entry_data"`
	IsComplete bool            `json:"is_complete"`
	SourceFile *string         `json:"source_file,omitempty"`
	CreatedBy  *int64          `json:"created_by,omitempty"`
	UpdatedBy  *int64          `json:"updated_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// WarningResponse reports a non-fatal normalization issue.
type WarningResponse struct {
	Kind    string `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// WriteResponse is returned by create and update.
type WriteResponse struct {
	Entry    EntryResponse     `json:"entry"`
	Warnings []WarningResponse `json:"warnings"`
}

// ListResponse is returned by the search listing.
type ListResponse struct {
	Entries  []EntryResponse `json:"entries"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// PageResponse is returned by the by-page listing.
type PageResponse struct {
	Entries []EntryResponse `json:"entries"`
	Page    int             `json:"page"`
	MinPage int             `json:"minPage"`
	MaxPage int             `json:"maxPage"`
}

type entryRequest struct {
	EntryData json.RawMessage `json:"entry_data"`
}

// maxBodyBytes leaves room for the request envelope around entry_data.
const maxBodyBytes = entrysvc.MaxEntryBytes + 4<<10

// List handles GET /api/entries.
func (h *EntriesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := entrysvc.ListEntriesInput{
		Query:     q.Get("q"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	var errs []domain.FieldError
	if pos := strings.TrimSpace(q.Get("pos")); pos != "" {
		input.PartOfSpeech = &pos
	}
	if raw := q.Get("complete"); raw != "" {
		complete, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "complete", Message: "must be true or false"})
		} else {
			input.IsComplete = &complete
		}
	}
	input.Page, errs = queryInt(q.Get("page"), "page", errs)
	input.PageSize, errs = queryInt(q.Get("pageSize"), "pageSize", errs)
	if len(errs) > 0 {
		handleError(w, r, h.log, domain.NewValidationErrors(errs))
		return
	}

	result, err := h.svc.ListEntries(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Entries:  toEntryResponses(result.Records),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// ByPage handles GET /api/entries/by-page/{page}.
func (h *EntriesHandler) ByPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		handleError(w, r, h.log, domain.NewValidationError("page", "must be an integer"))
		return
	}

	q := r.URL.Query()
	result, err := h.svc.ListByPage(r.Context(), page, q.Get("sortBy"), q.Get("sortOrder"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, PageResponse{
		Entries: toEntryResponses(result.Records),
		Page:    result.Page,
		MinPage: result.MinPage,
		MaxPage: result.MaxPage,
	})
}

// Get handles GET /api/entries/{id}.
func (h *EntriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(rec))
}

// Create handles POST /api/entries.
func (h *EntriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	result, err := h.svc.CreateEntry(r.Context(), entrysvc.CreateEntryInput{Data: data})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWriteResponse(result))
}

// Update handles PUT /api/entries/{id}.
func (h *EntriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	data, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	result, err := h.svc.UpdateEntry(r.Context(), entrysvc.UpdateEntryInput{ID: id, Data: data})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toWriteResponse(result))
}

func (h *EntriesHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		handleError(w, r, h.log, domain.NewValidationError("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func (h *EntriesHandler) decodeBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req entryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		handleError(w, r, h.log, domain.NewValidationError("body", "invalid JSON: "+err.Error()))
		return nil, false
	}
	return req.EntryData, true
}

func queryInt(raw, field string, errs []domain.FieldError) (int, []domain.FieldError) {
	if raw == "" {
		return 0, errs
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, append(errs, domain.FieldError{Field: field, Message: "must be an integer"})
	}
	return v, errs
}

func toEntryResponse(rec *domain.Record) EntryResponse {
	data := rec.EntryData
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return EntryResponse{
		ID:         rec.ID,
		Head:       rec.Head,
		HeadNumber: rec.HeadNumber,
		Page:       rec.Page,
		SortKey:    rec.SortKey,
		EntryData:  data,
		IsComplete: rec.IsComplete,
		SourceFile: rec.SourceFile,
		CreatedBy:  rec.CreatedBy,
		UpdatedBy:  rec.UpdatedBy,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func toEntryResponses(records []*domain.Record) []EntryResponse {
	out := make([]EntryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toEntryResponse(rec))
	}
	return out
}

func toWriteResponse(result *entrysvc.WriteResult) WriteResponse {
	warnings := make([]WarningResponse, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, WarningResponse{Kind: string(w.Kind), Path: w.Path, Message: w.Message})
	}
	return WriteResponse{Entry: toEntryResponse(result.Record), Warnings: warnings}
}

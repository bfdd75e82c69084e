package lexicon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon/raw"
)

// Source describes where a raw entry came from.
type Source struct {
	File  string
	Index int
	Page  *int
	// AssumeComplete records the entry as complete even if translation slots
	// are empty. Used for documents that are known to be fully edited.
	AssumeComplete bool
}

// Built is a successfully processed entry.
type Built struct {
	Record   *domain.Record
	Entry    *domain.Entry
	Warnings []domain.Warning
}

// Builder turns raw entries into records. Both the batch pipeline and the
// live write path go through Build so that normalization, sort key and
// completeness are computed identically. A Builder is safe for concurrent
// use.
type Builder struct {
	schema *SchemaValidator
}

// NewBuilder creates a Builder validating against schema.
func NewBuilder(schema *SchemaValidator) *Builder {
	return &Builder{schema: schema}
}

// NewDefaultBuilder creates a Builder with the embedded entry schema.
func NewDefaultBuilder() (*Builder, error) {
	schema, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	return NewBuilder(schema), nil
}

// Build normalizes node, validates it, and derives the record fields. Any
// failure is returned as a *domain.EntryFailure describing this one entry.
func (b *Builder) Build(node *raw.Node, src Source) (built *Built, err error) {
	fail := func(kind domain.FailureKind, violations []domain.FieldError, cause error) *domain.EntryFailure {
		return &domain.EntryFailure{
			Kind:       kind,
			Source:     src.File,
			Index:      src.Index,
			Head:       rawHead(node),
			Violations: violations,
			Err:        cause,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			built = nil
			err = fail(domain.FailureMalformedEntry, nil, fmt.Errorf("%w: %v", domain.ErrMalformedEntry, r))
		}
	}()

	entry, warnings, err := Normalize(node, NormalizeOptions{Page: src.Page})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedEntry) {
			return nil, fail(domain.FailureMalformedEntry, nil, err)
		}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, fail(domain.FailureSchemaViolation, verr.Errors, err)
		}
		return nil, fail(domain.FailureSchemaViolation, nil, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fail(domain.FailureSchemaViolation, nil, err)
	}

	if b.schema != nil {
		violations, err := b.schema.ValidateJSON(data)
		if err != nil {
			return nil, fail(domain.FailureSchemaViolation, nil, err)
		}
		if len(violations) > 0 {
			return nil, fail(domain.FailureSchemaViolation, violations,
				fmt.Errorf("%w: %w", domain.ErrSchemaViolation, domain.NewValidationErrors(violations)))
		}
	}

	sortKey := SortKey(entry.Head)
	if sortKey == "" {
		warnings = append(warnings, domain.Warning{
			Kind:    domain.FailureEmptySyllable,
			Path:    "/head",
			Message: fmt.Sprintf("headword %q has no syllables, sort key is empty", entry.Head),
		})
	}

	rec := &domain.Record{
		Head:       entry.Head,
		HeadNumber: entry.HeadNumber,
		Page:       entry.Page,
		SortKey:    sortKey,
		EntryData:  data,
		IsComplete: src.AssumeComplete || IsComplete(entry),
	}
	if src.File != "" {
		file := src.File
		rec.SourceFile = &file
	}

	return &Built{Record: rec, Entry: entry, Warnings: warnings}, nil
}

// rawHead returns the raw head text for failure reports, if any.
func rawHead(node *raw.Node) string {
	if node == nil {
		return ""
	}
	head := node.Get("head")
	if !head.IsScalar() {
		return ""
	}
	return strings.TrimSpace(head.Text)
}

package lexicon

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

//go:embed entry.schema.json
var entrySchemaJSON []byte

const entrySchemaURL = "entry.schema.json"

// EntrySchema returns the published JSON Schema for the canonical entry.
func EntrySchema() []byte {
	return bytes.Clone(entrySchemaJSON)
}

// SchemaValidator checks canonical entries against the published entry schema.
// It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the embedded entry schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(entrySchemaURL, bytes.NewReader(entrySchemaJSON)); err != nil {
		return nil, fmt.Errorf("lexicon: add entry schema: %w", err)
	}
	s, err := c.Compile(entrySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("lexicon: compile entry schema: %w", err)
	}
	return &SchemaValidator{schema: s}, nil
}

// Validate returns every violated constraint as a (path, message) pair, or
// nil when e conforms.
func (v *SchemaValidator) Validate(e *domain.Entry) ([]domain.FieldError, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("lexicon: marshal entry: %w", err)
	}
	return v.ValidateJSON(data)
}

// ValidateJSON validates an already-serialized entry tree.
func (v *SchemaValidator) ValidateJSON(data []byte) ([]domain.FieldError, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("lexicon: decode entry: %w", err)
	}

	err := v.schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("lexicon: validate entry: %w", err)
	}
	return flattenViolations(verr), nil
}

// flattenViolations collects the leaf causes of a validation error tree.
// Intermediate nodes only say "doesn't validate with ..." and add nothing.
func flattenViolations(root *jsonschema.ValidationError) []domain.FieldError {
	var (
		out  []domain.FieldError
		seen = map[domain.FieldError]bool{}
		walk func(*jsonschema.ValidationError)
	)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		path := e.InstanceLocation
		if path == "" {
			path = "/"
		}
		fe := domain.FieldError{Field: path, Message: e.Message}
		if !seen[fe] {
			seen[fe] = true
			out = append(out, fe)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

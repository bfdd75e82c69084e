package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/lexicon/raw"
)

var pageFileRe = regexp.MustCompile(`^p_(\d+)\.ya?ml$`)

// DocumentRef identifies one source document.
type DocumentRef struct {
	Name           string
	Path           string
	Page           *int
	AssumeComplete bool
}

// Document is a loaded source document.
type Document struct {
	DocumentRef
	Entries []*raw.Node
}

// ListDocuments returns the YAML documents in dir in processing order:
// assume-complete documents first, in the given order, then the rest sorted
// by name.
func ListDocuments(dir string, assumeComplete []string) ([]DocumentRef, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: read source dir: %w", err)
	}

	byName := make(map[string]DocumentRef)
	var names []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !isYAML(name) {
			continue
		}
		byName[name] = DocumentRef{
			Name: name,
			Path: filepath.Join(dir, name),
			Page: pageFromName(name),
		}
		names = append(names, name)
	}
	sort.Strings(names)

	refs := make([]DocumentRef, 0, len(names))
	first := make(map[string]bool, len(assumeComplete))
	for _, name := range assumeComplete {
		ref, ok := byName[name]
		if !ok || first[name] {
			continue
		}
		ref.AssumeComplete = true
		first[name] = true
		refs = append(refs, ref)
	}
	for _, name := range names {
		if !first[name] {
			refs = append(refs, byName[name])
		}
	}
	return refs, nil
}

// RefForFile describes a single document outside of a source directory scan.
// The page is still taken from a p_<page>.yaml name.
func RefForFile(path string) DocumentRef {
	name := filepath.Base(path)
	return DocumentRef{Name: name, Path: path, Page: pageFromName(name)}
}

// LoadDocument reads and decodes ref. A document is a list of entries; a
// single mapping is treated as a one-entry document.
func LoadDocument(ref DocumentRef) (*Document, error) {
	f, err := os.Open(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", ref.Name, err)
	}
	defer f.Close()

	root, err := raw.DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", ref.Name, err)
	}

	doc := &Document{DocumentRef: ref}
	switch {
	case root.IsNull():
	case root.Kind == raw.List:
		doc.Entries = root.Items
	case root.Kind == raw.Map:
		doc.Entries = []*raw.Node{root}
	default:
		return nil, fmt.Errorf("ingest: %s: expected a list of entries, got %s", ref.Name, root.Kind)
	}
	return doc, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func pageFromName(name string) *int {
	m := pageFileRe.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

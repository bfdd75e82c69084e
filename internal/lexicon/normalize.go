package lexicon

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon/raw"
)

// NormalizeOptions carries per-document context for Normalize.
type NormalizeOptions struct {
	// Page is the source page the entry was read from. An explicit "page"
	// field on the entry takes precedence.
	Page *int
}

// Normalize rewrites a loosely-shaped raw entry into the canonical tree.
//
// The returned error wraps domain.ErrMalformedEntry when the entry has no
// usable headword, and domain.ErrSchemaViolation (together with a
// *domain.ValidationError listing every offending path) when some subtree
// cannot be mapped onto the canonical shape. Warnings never reject an entry.
func Normalize(node *raw.Node, opts NormalizeOptions) (*domain.Entry, []domain.Warning, error) {
	if node == nil || node.Kind != raw.Map {
		return nil, nil, fmt.Errorf("%w: expected a mapping, got %s", domain.ErrMalformedEntry, kindOf(node))
	}

	n := &normalizer{}
	entry, err := n.entry(node, opts)
	if err != nil {
		return nil, n.warnings, err
	}
	if len(n.violations) > 0 {
		return nil, n.warnings, fmt.Errorf("%w: %w", domain.ErrSchemaViolation, domain.NewValidationErrors(n.violations))
	}
	return entry, n.warnings, nil
}

type normalizer struct {
	violations []domain.FieldError
	warnings   []domain.Warning
}

func (n *normalizer) fail(path, format string, args ...any) {
	n.violations = append(n.violations, domain.FieldError{Field: path, Message: fmt.Sprintf(format, args...)})
}

func (n *normalizer) warn(kind domain.FailureKind, path, format string, args ...any) {
	n.warnings = append(n.warnings, domain.Warning{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (n *normalizer) dropped(path string) {
	n.warn(domain.FailureUnknownField, path, "field dropped")
}

// ---------------------------------------------------------------------------
// Entry and PosGroup
// ---------------------------------------------------------------------------

var entryKeys = []string{"head", "head_number", "page", "etym"}

func (n *normalizer) entry(node *raw.Node, opts NormalizeOptions) (*domain.Entry, error) {
	head, ok := scalarText(node.Get("head"))
	head = strings.TrimSpace(head)
	if !ok || head == "" {
		return nil, fmt.Errorf("%w: missing headword", domain.ErrMalformedEntry)
	}

	hw := ParseHeadword(head)
	if hw.Ambiguous {
		n.warn(domain.FailureAmbiguousDisambiguation, "/head", "multiple disambiguation markers in %q, using the first", head)
	}
	clean := strings.TrimSpace(hw.Clean)
	if clean == "" {
		return nil, fmt.Errorf("%w: headword %q is only a disambiguation marker", domain.ErrMalformedEntry, head)
	}

	e := &domain.Entry{Head: clean, HeadNumber: hw.Number}

	if hn := node.Get("head_number"); !hn.IsNull() {
		v, ok := hn.Int()
		switch {
		case !ok || v <= 0:
			n.fail("/head_number", "must be a positive integer")
		case e.HeadNumber == nil:
			e.HeadNumber = &v
		case *e.HeadNumber != v:
			n.warn(domain.FailureAmbiguousDisambiguation, "/head_number",
				"head_number %d disagrees with headword marker %d, using the marker", v, *e.HeadNumber)
		}
	}

	e.Page = opts.Page
	if p := node.Get("page"); !p.IsNull() {
		if v, ok := p.Int(); ok && v > 0 {
			e.Page = &v
		} else {
			n.fail("/page", "must be a positive integer")
		}
	}

	e.Etym = n.optString(node.Get("etym"), "/etym")

	rest := node.Without(entryKeys...)
	if rest.Has("defs") {
		for _, f := range rest.Fields {
			if f.Key != "defs" {
				n.dropped("/" + f.Key)
			}
		}
		for i, item := range itemsOf(rest.Get("defs")) {
			e.Defs = append(e.Defs, n.posGroup(item, fmt.Sprintf("/defs/%d", i)))
		}
	} else if len(rest.Fields) > 0 {
		e.Defs = []domain.PosGroup{n.posGroup(rest, "/defs/0")}
	}

	if len(e.Defs) == 0 {
		e.Defs = []domain.PosGroup{emptyGroup()}
	}
	return e, nil
}

func emptyGroup() domain.PosGroup {
	return domain.PosGroup{Defs: []domain.Sense{{En: ""}}}
}

// posGroup handles three shapes of a definition object: the canonical one
// with its own "defs" list, the numbered shorthand {"1": ..., "2": ..., pos},
// and a bare sense object that becomes the group's only sense.
func (n *normalizer) posGroup(node *raw.Node, path string) domain.PosGroup {
	switch {
	case node.IsNull():
		return emptyGroup()
	case node.IsScalar():
		return domain.PosGroup{Defs: []domain.Sense{n.sense(node, path+"/defs/0")}}
	case node.Kind == raw.List:
		g := domain.PosGroup{}
		for i, item := range node.Items {
			g.Defs = append(g.Defs, n.sense(item, fmt.Sprintf("%s/defs/%d", path, i)))
		}
		if len(g.Defs) == 0 {
			return emptyGroup()
		}
		return g
	}

	g := domain.PosGroup{Pos: n.stringList(node.Get("pos"), path+"/pos")}

	switch numbered := numericFields(node); {
	case node.Has("defs"):
		g.Mw = n.measureWords(node, path+"/mw")
		g.Etym = n.optString(node.Get("etym"), path+"/etym")
		for _, f := range node.Fields {
			switch f.Key {
			case "pos", "mw", "etym", "defs":
			default:
				n.dropped(path + "/" + f.Key)
			}
		}
		for i, item := range itemsOf(node.Get("defs")) {
			g.Defs = append(g.Defs, n.sense(item, fmt.Sprintf("%s/defs/%d", path, i)))
		}

	case len(numbered) > 0:
		g.Mw = n.measureWords(node, path+"/mw")
		g.Etym = n.optString(node.Get("etym"), path+"/etym")
		for _, f := range node.Fields {
			if _, isNum := numericKey(f.Key); isNum {
				continue
			}
			switch f.Key {
			case "pos", "mw", "etym":
			default:
				n.dropped(path + "/" + f.Key)
			}
		}
		for i, f := range numbered {
			g.Defs = append(g.Defs, n.sense(f.Value, fmt.Sprintf("%s/defs/%d", path, i)))
		}

	default:
		g.Defs = []domain.Sense{n.sense(node.Without("pos"), path+"/defs/0")}
	}

	if len(g.Defs) == 0 {
		g.Defs = []domain.Sense{{En: ""}}
	}
	return g
}

// numericFields returns the purely-numeric keyed fields of node sorted by
// their numeric value.
func numericFields(node *raw.Node) []raw.Field {
	type numbered struct {
		n int
		f raw.Field
	}
	var found []numbered
	for _, f := range node.Fields {
		if v, ok := numericKey(f.Key); ok {
			found = append(found, numbered{n: v, f: f})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].n < found[j].n })

	out := make([]raw.Field, len(found))
	for i, nf := range found {
		out[i] = nf.f
	}
	return out
}

func numericKey(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(key)
	return v, err == nil
}

// ---------------------------------------------------------------------------
// Sense
// ---------------------------------------------------------------------------

func (n *normalizer) sense(node *raw.Node, path string) domain.Sense {
	switch {
	case node.IsNull():
		return domain.Sense{En: ""}
	case node.IsScalar():
		return domain.Sense{En: node.Text}
	case node.Kind != raw.Map:
		n.fail(path, "expected a sense, got %s", node.Kind)
		return domain.Sense{En: ""}
	}

	var s domain.Sense
	for _, f := range node.Fields {
		fp := path + "/" + f.Key
		switch f.Key {
		case "en":
			s.En = n.gloss(f.Value, fp)
		case "mw":
			s.Mw = n.measureWords(node, fp)
		case "cat":
			s.Cat = n.optString(f.Value, fp)
		case "etym":
			s.Etym = n.optString(f.Value, fp)
		case "det":
			s.Det = n.optString(f.Value, fp)
		case "bound":
			s.Bound = n.optBool(f.Value, fp)
		case "dup":
			s.Dup = n.optBool(f.Value, fp)
		case "takes_tone_a2":
			s.TakesToneA2 = n.optBool(f.Value, fp)
		case "alt":
			s.Alt = n.stringList(f.Value, fp)
		case "cf":
			s.Cf = n.stringList(f.Value, fp)
		case "ex":
			s.Ex = n.extras(f.Value, fp, 0)
		case "drv":
			s.Drv = n.extras(f.Value, fp, 0)
		case "idm":
			s.Idm = n.extras(f.Value, fp, 0)
		default:
			if isLetterKey(f.Key) {
				n.warn(domain.FailureUnknownField, fp, "lettered variants are not supported on a sense, field dropped")
				continue
			}
			n.dropped(fp)
		}
	}
	return s
}

// gloss converts a sense-level "en" value. It stays a plain string; a missing
// or null value means "not yet translated".
func (n *normalizer) gloss(node *raw.Node, path string) string {
	if node.IsNull() {
		return ""
	}
	if text, ok := scalarText(node); ok {
		return text
	}
	n.fail(path, "expected text, got %s", node.Kind)
	return ""
}

// measureWords reads a PosGroup/Sense "mw" field. A list is displayed as one
// comma-joined string at this level; an explicit null becomes "".
func (n *normalizer) measureWords(parent *raw.Node, path string) *string {
	if !parent.Has("mw") {
		return nil
	}
	node := parent.Get("mw")
	if node.IsNull() {
		return ptr("")
	}
	if node.Kind == raw.List {
		return ptr(strings.Join(n.stringList(node, path), ", "))
	}
	if text, ok := scalarText(node); ok {
		return &text
	}
	n.fail(path, "expected text or a list of text, got %s", node.Kind)
	return nil
}

// ---------------------------------------------------------------------------
// Extra and TranslationVariant
// ---------------------------------------------------------------------------

func (n *normalizer) extras(node *raw.Node, path string, depth int) []domain.Extra {
	if node.IsNull() {
		return nil
	}
	if depth > domain.MaxExtraDepth {
		n.fail(path, "nested deeper than %d levels", domain.MaxExtraDepth)
		return nil
	}

	if node.Kind != raw.List {
		return []domain.Extra{n.extra(node, path+"/0", depth)}
	}
	out := make([]domain.Extra, 0, len(node.Items))
	for i, item := range node.Items {
		out = append(out, n.extra(item, fmt.Sprintf("%s/%d", path, i), depth))
	}
	return out
}

func (n *normalizer) extra(node *raw.Node, path string, depth int) domain.Extra {
	switch {
	case node.IsNull():
		return domain.Extra{Tw: "", En: blankVariants()}
	case node.IsScalar():
		return domain.Extra{Tw: node.Text, En: blankVariants()}
	case node.Kind != raw.Map:
		n.fail(path, "expected an example, derivative or idiom, got %s", node.Kind)
		return domain.Extra{Tw: "", En: blankVariants()}
	}

	var (
		x       domain.Extra
		letters []raw.Field
	)
	for _, f := range node.Fields {
		fp := path + "/" + f.Key
		switch f.Key {
		case "tw":
			x.Tw = n.gloss(f.Value, fp)
		case "en":
			x.En = n.variants(f.Value, fp, depth)
		case "mw":
			x.Mw = n.stringList(f.Value, fp)
		case "cat":
			x.Cat = n.optString(f.Value, fp)
		case "etym":
			x.Etym = n.optString(f.Value, fp)
		case "det":
			x.Det = n.optString(f.Value, fp)
		case "alt":
			x.Alt = n.stringList(f.Value, fp)
		case "cf":
			x.Cf = n.stringList(f.Value, fp)
		case "ex":
			x.Ex = n.extras(f.Value, fp, depth+1)
		case "drv":
			x.Drv = n.extras(f.Value, fp, depth+1)
		case "idm":
			x.Idm = n.extras(f.Value, fp, depth+1)
		default:
			if isLetterKey(f.Key) {
				letters = append(letters, f)
				continue
			}
			n.dropped(fp)
		}
	}

	if len(letters) > 0 {
		if node.Has("en") {
			n.warn(domain.FailureUnknownField, path, "both en and lettered variants present, appending lettered variants")
		}
		x.En = append(x.En, n.letteredVariants(letters, path, depth)...)
	}
	if len(x.En) == 0 {
		x.En = blankVariants()
	}
	return x
}

func blankVariants() []domain.TranslationVariant {
	return []domain.TranslationVariant{{En: ""}}
}

// variants converts an Extra's "en" value into its variant list.
func (n *normalizer) variants(node *raw.Node, path string, depth int) []domain.TranslationVariant {
	switch {
	case node.IsNull():
		return blankVariants()
	case node.IsScalar():
		return []domain.TranslationVariant{{En: node.Text}}
	case node.Kind == raw.List:
		out := make([]domain.TranslationVariant, 0, len(node.Items))
		for i, item := range node.Items {
			out = append(out, n.variant(item, fmt.Sprintf("%s/%d", path, i), depth))
		}
		if len(out) == 0 {
			return blankVariants()
		}
		return out
	}

	// Map: either {a: ..., b: ...} or a single variant object.
	var letters []raw.Field
	for _, f := range node.Fields {
		if isLetterKey(f.Key) {
			letters = append(letters, f)
		}
	}
	if len(letters) > 0 && !node.Has("en") {
		for _, f := range node.Fields {
			if !isLetterKey(f.Key) {
				n.dropped(path + "/" + f.Key)
			}
		}
		return n.letteredVariants(letters, path, depth)
	}
	return []domain.TranslationVariant{n.variant(node, path+"/0", depth)}
}

func (n *normalizer) letteredVariants(letters []raw.Field, path string, depth int) []domain.TranslationVariant {
	sort.SliceStable(letters, func(i, j int) bool { return letters[i].Key < letters[j].Key })
	out := make([]domain.TranslationVariant, 0, len(letters))
	for _, f := range letters {
		out = append(out, n.variant(f.Value, path+"/"+f.Key, depth))
	}
	return out
}

// variant converts one translation variant. depth is the depth of the Extra
// owning it; only variants of a top-level Extra may carry examples.
func (n *normalizer) variant(node *raw.Node, path string, depth int) domain.TranslationVariant {
	switch {
	case node.IsNull():
		return domain.TranslationVariant{En: ""}
	case node.IsScalar():
		return domain.TranslationVariant{En: node.Text}
	case node.Kind != raw.Map || !node.Has("en"):
		n.fail(path, "translation variant needs an en field")
		return domain.TranslationVariant{En: ""}
	}

	var v domain.TranslationVariant
	for _, f := range node.Fields {
		fp := path + "/" + f.Key
		switch f.Key {
		case "en":
			v.En = n.gloss(f.Value, fp)
		case "mw":
			v.Mw = n.stringList(f.Value, fp)
		case "cat":
			v.Cat = n.optString(f.Value, fp)
		case "etym":
			v.Etym = n.optString(f.Value, fp)
		case "dup":
			v.Dup = n.optBool(f.Value, fp)
		case "alt":
			v.Alt = n.stringList(f.Value, fp)
		case "ex":
			if depth != 0 {
				n.fail(fp, "examples are only allowed on variants of a top-level item")
				continue
			}
			// Extras hanging off a variant are leaves.
			v.Ex = n.extras(f.Value, fp, domain.MaxExtraDepth)
		default:
			n.dropped(fp)
		}
	}
	return v
}

// ---------------------------------------------------------------------------
// Scalars and lists
// ---------------------------------------------------------------------------

func (n *normalizer) optString(node *raw.Node, path string) *string {
	if node.IsNull() {
		return nil
	}
	if text, ok := scalarText(node); ok {
		return &text
	}
	n.fail(path, "expected text, got %s", node.Kind)
	return nil
}

func (n *normalizer) optBool(node *raw.Node, path string) *bool {
	if node.IsNull() {
		return nil
	}
	if v, ok := node.BoolValue(); ok {
		return &v
	}
	n.fail(path, "expected a boolean")
	return nil
}

// stringList coerces a bare scalar to a one-element list.
func (n *normalizer) stringList(node *raw.Node, path string) []string {
	if node.IsNull() {
		return nil
	}
	if text, ok := scalarText(node); ok {
		return []string{text}
	}
	if node.Kind != raw.List {
		n.fail(path, "expected text or a list of text, got %s", node.Kind)
		return nil
	}
	out := make([]string, 0, len(node.Items))
	for i, item := range node.Items {
		text, ok := scalarText(item)
		if !ok {
			n.fail(fmt.Sprintf("%s/%d", path, i), "expected text, got %s", kindOf(item))
			continue
		}
		out = append(out, text)
	}
	return out
}

func scalarText(node *raw.Node) (string, bool) {
	if !node.IsScalar() {
		return "", false
	}
	return node.Text, true
}

func itemsOf(node *raw.Node) []*raw.Node {
	switch {
	case node.IsNull():
		return nil
	case node.Kind == raw.List:
		return node.Items
	default:
		return []*raw.Node{node}
	}
}

func isLetterKey(key string) bool {
	return len(key) == 1 && key[0] >= 'a' && key[0] <= 'z'
}

func kindOf(node *raw.Node) string {
	if node == nil {
		return "nothing"
	}
	return node.Kind.String()
}

func ptr[T any](v T) *T { return &v }

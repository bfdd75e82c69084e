// Package raw holds the untyped ingestion stage of the entry pipeline: a small
// tagged-variant tree that both YAML source documents and JSON editor payloads
// decode into before the normalizer pattern-matches it into canonical types.
package raw

import (
	"strconv"
	"strings"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	Null Kind = iota
	String
	Number
	Bool
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Node is one value of a loosely-typed document. Scalars keep their source
// text in Text; maps keep their keys in document order.
type Node struct {
	Kind   Kind
	Text   string
	Items  []*Node
	Fields []Field
}

// Field is one key/value pair of a Map node.
type Field struct {
	Key   string
	Value *Node
}

// NewString returns a String node.
func NewString(s string) *Node { return &Node{Kind: String, Text: s} }

// NewMap returns a Map node with the given fields.
func NewMap(fields ...Field) *Node { return &Node{Kind: Map, Fields: fields} }

// NewList returns a List node with the given items.
func NewList(items ...*Node) *Node { return &Node{Kind: List, Items: items} }

// IsNull reports whether n is absent or an explicit null.
func (n *Node) IsNull() bool {
	return n == nil || n.Kind == Null
}

// IsScalar reports whether n is a string, number, or bool.
func (n *Node) IsScalar() bool {
	return n != nil && (n.Kind == String || n.Kind == Number || n.Kind == Bool)
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != Map {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Has reports whether a Map node carries key, even with a null value.
func (n *Node) Has(key string) bool {
	if n == nil || n.Kind != Map {
		return false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Without returns a copy of a Map node with the named keys removed.
func (n *Node) Without(keys ...string) *Node {
	out := &Node{Kind: Map}
	for _, f := range n.Fields {
		drop := false
		for _, k := range keys {
			if f.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// Int returns the value of a Number (or numeric String) node as an int.
func (n *Node) Int() (int, bool) {
	if n == nil || (n.Kind != Number && n.Kind != String) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Text))
	if err != nil {
		return 0, false
	}
	return v, true
}

// BoolValue returns the value of a Bool node. Strings "true"/"false" are
// accepted too since hand-authored YAML quotes them inconsistently.
func (n *Node) BoolValue() (bool, bool) {
	if n == nil {
		return false, false
	}
	switch n.Kind {
	case Bool, String:
		v, err := strconv.ParseBool(strings.TrimSpace(n.Text))
		if err != nil {
			return false, false
		}
		return v, true
	default:
		return false, false
	}
}

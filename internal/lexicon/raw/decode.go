package raw

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// maxDecodeDepth bounds recursion on hostile input; real entries are far
// shallower.
const maxDecodeDepth = 64

var errTooDeep = errors.New("raw: document nested too deeply")

// DecodeYAML reads a single YAML document from r.
func DecodeYAML(r io.Reader) (*Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Node{Kind: Null}, nil
		}
		return nil, fmt.Errorf("raw: decode yaml: %w", err)
	}
	return FromYAML(&doc)
}

// FromYAML converts a parsed yaml.Node tree. Mapping key order is kept.
func FromYAML(n *yaml.Node) (*Node, error) {
	return fromYAML(n, 0)
}

func fromYAML(n *yaml.Node, depth int) (*Node, error) {
	if n == nil {
		return &Node{Kind: Null}, nil
	}
	if depth > maxDecodeDepth {
		return nil, errTooDeep
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Node{Kind: Null}, nil
		}
		return fromYAML(n.Content[0], depth+1)

	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)

	case yaml.SequenceNode:
		out := &Node{Kind: List, Items: make([]*Node, 0, len(n.Content))}
		for _, c := range n.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, item)
		}
		return out, nil

	case yaml.MappingNode:
		out := &Node{Kind: Map, Fields: make([]Field, 0, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("raw: line %d: non-scalar mapping key", k.Line)
			}
			val, err := fromYAML(v, depth+1)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, Field{Key: k.Value, Value: val})
		}
		return out, nil

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return &Node{Kind: Null}, nil
		case "!!int", "!!float":
			return &Node{Kind: Number, Text: n.Value}, nil
		case "!!bool":
			return &Node{Kind: Bool, Text: n.Value}, nil
		default:
			return &Node{Kind: String, Text: n.Value}, nil
		}
	}

	return nil, fmt.Errorf("raw: line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

// DecodeJSON parses one JSON value. Object key order is kept, which a plain
// map[string]any decode would lose.
func DecodeJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("raw: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("raw: decode json: trailing data")
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (*Node, error) {
	if depth > maxDecodeDepth {
		return nil, errTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return &Node{Kind: Null}, nil
	case string:
		return &Node{Kind: String, Text: t}, nil
	case json.Number:
		return &Node{Kind: Number, Text: t.String()}, nil
	case bool:
		if t {
			return &Node{Kind: Bool, Text: "true"}, nil
		}
		return &Node{Kind: Bool, Text: "false"}, nil
	case json.Delim:
		switch t {
		case '[':
			out := &Node{Kind: List}
			for dec.More() {
				item, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				out.Items = append(out.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		case '{':
			out := &Node{Kind: Map}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				out.Fields = append(out.Fields, Field{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

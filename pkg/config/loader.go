package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseDocument parses a YAML or JSON document whose top level is a mapping.
// Key order is preserved. An empty document yields an empty mapping.
func ParseDocument(data []byte) (*Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewMapping(), nil
	}

	root := resolveAlias(doc.Content[0])
	switch {
	case root.Kind == yaml.MappingNode:
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		return NewMapping(), nil
	default:
		return nil, fmt.Errorf("line %d: top level of a config document must be a mapping", root.Line)
	}

	v, err := valueFromNode("", root)
	if err != nil {
		return nil, err
	}
	return v.Mapping(), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func valueFromNode(key string, n *yaml.Node) (Value, error) {
	n = resolveAlias(n)

	switch n.Kind {
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn := resolveAlias(n.Content[i])
			if kn.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", kn.Line)
			}
			child, err := valueFromNode(joinKey(key, kn.Value), n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			m.Set(kn.Value, child)
		}
		return MappingValue(m), nil

	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for i, c := range n.Content {
			item, err := valueFromNode(fmt.Sprintf("%s[%d]", key, i), c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil

	case yaml.ScalarNode:
		var x any
		if err := n.Decode(&x); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return FromAny(key, x)

	default:
		return Value{}, fmt.Errorf("line %d: unsupported node for %q", n.Line, key)
	}
}

// isStarlark reports whether path names a Starlark configuration script.
func isStarlark(path string) bool {
	return strings.HasSuffix(path, ".star") || strings.HasSuffix(path, ".bzl")
}

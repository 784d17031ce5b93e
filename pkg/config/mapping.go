package config

import "gopkg.in/yaml.v3"

// Mapping is an insertion-ordered string-keyed map of values.
type Mapping struct {
	keys   []string
	values map[string]Value
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value for key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key. An existing key keeps its position.
func (m *Mapping) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key and reports whether it was present.
func (m *Mapping) Delete(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a copy of the top level. Nested values are shared; they are
// never mutated in place.
func (m *Mapping) Clone() *Mapping {
	out := NewMapping()
	for _, k := range m.Keys() {
		out.Set(k, m.values[k])
	}
	return out
}

// Merge returns base overlaid with override, key by key. Values of keys in
// both are taken whole from override; nested mappings are not merged.
func Merge(base, override *Mapping) *Mapping {
	out := NewMapping()
	if base != nil {
		out = base.Clone()
	}
	for _, k := range override.Keys() {
		v, _ := override.Get(k)
		out.Set(k, v)
	}
	return out
}

// Interface converts the mapping to a plain Go map.
func (m *Mapping) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		out[k] = m.values[k].Interface()
	}
	return out
}

// MarshalYAML renders the mapping keeping key order.
func (m *Mapping) MarshalYAML() (interface{}, error) {
	return m.yamlNode(), nil
}

func (m *Mapping) yamlNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.Keys() {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			m.values[k].yamlNode(),
		)
	}
	return n
}

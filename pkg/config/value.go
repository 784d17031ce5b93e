package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/jshint-go/jshint/pkg/engine"
	"gopkg.in/yaml.v3"
)

// Kind is the closed set of value shapes the engine understands.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a configuration value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	s    string // string payload, or the literal text of a number
	num  any    // int64 or float64 for numbers
	seq  []Value
	m    *Mapping
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer value.
func Int(i int64) Value {
	return Value{kind: KindNumber, s: strconv.FormatInt(i, 10), num: i}
}

// Float returns a floating point value. Integral floats keep a ".0"-free
// rendering so 4.0 and 4 encode identically.
func Float(f float64) Value {
	return Value{kind: KindNumber, s: strconv.FormatFloat(f, 'g', -1, 64), num: f}
}

// Sequence returns a sequence value.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, seq: items}
}

// MappingValue wraps a mapping as a value.
func MappingValue(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, m: m}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Items returns the elements of a sequence, or nil.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Mapping returns the nested mapping, or nil.
func (v Value) Mapping() *Mapping {
	if v.kind != KindMapping {
		return nil
	}
	return v.m
}

// Interface converts v to plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		return v.m.Interface()
	default:
		return nil
	}
}

// MarshalYAML renders the value keeping mapping key order.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		tag := "!!int"
		if _, ok := v.num.(float64); ok {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.s}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.seq {
			n.Content = append(n.Content, item.yamlNode())
		}
		return n
	case KindMapping:
		return v.m.yamlNode()
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// FromAny converts a plain Go value into a Value. key names the value's
// position for error reporting. Anything outside the closed set of kinds
// fails with an unsupported-value-kind error.
func FromAny(key string, x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val, nil
	case *Mapping:
		return MappingValue(val), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(key, uint64(val))
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return fromUint(key, val)
	case float32:
		return fromFloat(key, float64(val))
	case float64:
		return fromFloat(key, val)
	case []string:
		items := make([]Value, len(val))
		for i, s := range val {
			items[i] = String(s)
		}
		return Sequence(items...), nil
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			converted, err := FromAny(fmt.Sprintf("%s[%d]", key, i), item)
			if err != nil {
				return Value{}, err
			}
			items[i] = converted
		}
		return Sequence(items...), nil
	case map[string]any:
		m, err := mappingFromMap(key, val)
		if err != nil {
			return Value{}, err
		}
		return MappingValue(m), nil
	default:
		return Value{}, engine.NewUnsupportedValueKindError(key, fmt.Sprintf("%T", x))
	}
}

func fromUint(key string, u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Float(float64(u)), nil
	}
	return Int(int64(u)), nil
}

func fromFloat(key string, f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, engine.NewUnsupportedValueKindError(key, "non-finite float")
	}
	return Float(f), nil
}

// MappingFromMap converts a Go map into a Mapping. Go maps carry no order,
// so keys are sorted.
func MappingFromMap(src map[string]any) (*Mapping, error) {
	return mappingFromMap("", src)
}

func mappingFromMap(prefix string, src map[string]any) (*Mapping, error) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := NewMapping()
	for _, k := range keys {
		v, err := FromAny(joinKey(prefix, k), src[k])
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

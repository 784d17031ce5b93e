package config

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Encode renders v in the engine's option dialect:
//
//	mapping  ({"k1": v1,"k2": v2})
//	sequence [v1,v2]
//	string   "quoted"
//	number   literal text
//	bool     true | false
//	null     null
//
// Mappings are parenthesized so the engine evaluates them as object
// literals rather than blocks.
func Encode(v Value) string {
	var b strings.Builder
	encodeValue(&b, v)
	return b.String()
}

func encodeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		b.WriteString(v.s)
	case KindString:
		b.WriteString(quote(v.s))
	case KindSequence:
		b.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, item)
		}
		b.WriteByte(']')
	case KindMapping:
		b.WriteString("({")
		for i, k := range v.m.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(k))
			b.WriteString(": ")
			item, _ := v.m.Get(k)
			encodeValue(b, item)
		}
		b.WriteString("})")
	default:
		b.WriteString("null")
	}
}

// Serialize renders m as key=value pairs joined by '&', in key order.
func Serialize(m *Mapping) string {
	pairs := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		pairs = append(pairs, k+"="+Encode(v))
	}
	return strings.Join(pairs, "&")
}

// SerializeMap converts and serializes a plain Go map. Keys are sorted.
// Values outside the supported kinds fail with an unsupported-value-kind
// error naming the offending key.
func SerializeMap(src map[string]any) (string, error) {
	m, err := MappingFromMap(src)
	if err != nil {
		return "", err
	}
	return Serialize(m), nil
}

// quote produces a JSON string literal without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

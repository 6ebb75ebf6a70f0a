package mqnotify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "absent"
	}
}

// Value is an extra send-time parameter.
// The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	list []Value
	m    map[string]Value
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(n, 'g', -1, 64))}
}

// Int returns an integer value. It is encoded with all of its digits.
func Int(n int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(n, 10))}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map returns a map value.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Absent returns the absent value.
func Absent() Value { return Value{} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string held by v and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Items returns the elements of a list value.
func (v Value) Items() ([]Value, bool) { return v.list, v.kind == KindList }

// IsEmpty reports whether v carries nothing worth sending:
// absent, "", 0, false, or an empty list or map.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindNumber:
		f, err := v.num.Float64()
		return err == nil && f == 0
	case KindBool:
		return !v.b
	case KindList:
		return len(v.list) == 0
	case KindMap:
		return len(v.m) == 0
	default:
		return true
	}
}

// MarshalJSON encodes v compactly.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return encodeJSON(v.str)
	case KindNumber:
		return encodeJSON(v.num)
	case KindBool:
		return encodeJSON(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return encodeJSON(v.list)
	case KindMap:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return encodeJSON(v.m)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON document into v. Numbers keep their text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

// UnmarshalYAML decodes any YAML node into v.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

// ValueOf converts a decoded JSON or YAML value into a Value.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Value{kind: KindNumber, num: json.Number(strconv.FormatUint(t, 10))}, nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case json.Number:
		if _, err := t.Float64(); err != nil {
			return Value{}, err
		}
		return Value{kind: KindNumber, num: t}, nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return List(items...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			parsed, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = parsed
		}
		return List(items...), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			parsed, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = parsed
		}
		return Map(m), nil
	case map[any]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			parsed, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}
			m[fmt.Sprint(k)] = parsed
		}
		return Map(m), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}

// encodeJSON marshals x compactly without escaping HTML characters.
func encodeJSON(x any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(x); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

package mqnotify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MessageKey is the body field that carries the notification text.
	MessageKey = "message"

	// TargetKey is the send parameter that names the destination queues.
	TargetKey = "target"

	attributeDataType = "String"
)

// Attribute is a queue message attribute. DataType is always "String".
type Attribute struct {
	StringValue string
	DataType    string
}

// Message represents a queue message ready for delivery.
type Message struct {
	// Body is the JSON document sent as the message body.
	Body string

	// Attributes holds the JSON encoding of every extra parameter.
	Attributes map[string]Attribute
}

// Targets is a list of queue identifiers.
// It decodes from either a single string or a list of strings.
type Targets []string

// UnmarshalYAML accepts a scalar or a sequence.
func (t *Targets) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = Targets{s}
		return nil
	}

	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*t = list

	return nil
}

// UnmarshalJSON accepts a string or an array of strings.
func (t *Targets) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Targets{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	*t = list

	return nil
}

// Request is a notification call as handed over by the notification framework.
type Request struct {
	Message string           `json:"message" yaml:"message"`
	Target  Targets          `json:"target" yaml:"target"`
	Data    map[string]Value `json:"data" yaml:"data"`
}

// ParseRequest decodes a request. JSON is used when format is "json", YAML otherwise.
func ParseRequest(data []byte, format string) (*Request, error) {
	req := &Request{}
	if strings.EqualFold(format, "json") {
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("failed to parse request: %w", err)
		}
		return req, nil
	}

	if err := yaml.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// LoadRequest reads a request file, picking the format from its extension.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file %q: %w", path, err)
	}

	return ParseRequest(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// TargetsOf normalizes a target parameter into a list.
func TargetsOf(v Value) (Targets, error) {
	switch v.Kind() {
	case KindAbsent:
		return nil, nil
	case KindString:
		s, _ := v.Str()
		if s == "" {
			return nil, nil
		}
		return Targets{s}, nil
	case KindList:
		items, _ := v.Items()
		targets := make(Targets, 0, len(items))
		for i, item := range items {
			s, ok := item.Str()
			if !ok {
				return nil, fmt.Errorf("%w: element %d is a %s", ErrInvalidTarget, i, item.Kind())
			}
			targets = append(targets, s)
		}
		return targets, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a string or list", ErrInvalidTarget, v.Kind())
	}
}

// cleanExtras drops empty values and the reserved message key.
// It reports whether the reserved key was present with a non-empty value.
func cleanExtras(extra map[string]Value) (map[string]Value, bool) {
	cleaned := make(map[string]Value, len(extra))
	dropped := false
	for k, v := range extra {
		if v.IsEmpty() {
			continue
		}
		if k == MessageKey {
			dropped = true
			continue
		}
		cleaned[k] = v
	}

	return cleaned, dropped
}

// newMessage builds the queue message for body and the already cleaned extras.
// The body object starts with the message field, followed by the extras in key order.
func newMessage(body string, extra map[string]Value) (*Message, error) {
	var buf bytes.Buffer

	text, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"` + MessageKey + `":`)
	buf.Write(text)

	attributes := make(map[string]Attribute, len(extra))
	for _, key := range sortedKeys(extra) {
		encodedKey, err := encodeJSON(key)
		if err != nil {
			return nil, err
		}

		encodedValue, err := encodeJSON(extra[key])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}

		buf.WriteByte(',')
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)

		attributes[key] = Attribute{
			StringValue: string(encodedValue),
			DataType:    attributeDataType,
		}
	}
	buf.WriteByte('}')

	return &Message{
		Body:       buf.String(),
		Attributes: attributes,
	}, nil
}

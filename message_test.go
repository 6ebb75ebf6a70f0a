package mqnotify

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTargetsDecoding(t *testing.T) {
	var single, list struct {
		Target Targets `json:"target" yaml:"target"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"target":"queue-A"}`), &single))
	require.NoError(t, json.Unmarshal([]byte(`{"target":["queue-A","queue-B"]}`), &list))
	assert.Equal(t, Targets{"queue-A"}, single.Target)
	assert.Equal(t, Targets{"queue-A", "queue-B"}, list.Target)

	require.NoError(t, yaml.Unmarshal([]byte("target: queue-A\n"), &single))
	require.NoError(t, yaml.Unmarshal([]byte("target: [queue-A, queue-B]\n"), &list))
	assert.Equal(t, Targets{"queue-A"}, single.Target)
	assert.Equal(t, Targets{"queue-A", "queue-B"}, list.Target)

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"target":{"a":1}}`), &single), ErrInvalidTarget)
}

func TestNewMessageEscapesKeysAndBody(t *testing.T) {
	msg, err := newMessage("say \"hi\"", map[string]Value{`we"ird`: String("v")})
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(msg.Body), &body))
	assert.Equal(t, map[string]string{"message": `say "hi"`, `we"ird`: "v"}, body)
}

func TestNewMessageRejectsUnencodableValues(t *testing.T) {
	_, err := newMessage("x", map[string]Value{"n": Number(math.NaN())})
	assert.Error(t, err)
}

func TestCleanExtras(t *testing.T) {
	cleaned, dropped := cleanExtras(map[string]Value{
		"message": String("other"),
		"keep":    String("v"),
		"zero":    Number(0),
	})
	assert.True(t, dropped)
	assert.Equal(t, map[string]Value{"keep": String("v")}, cleaned)

	_, dropped = cleanExtras(map[string]Value{"message": String("")})
	assert.False(t, dropped)
}

func TestNewMessageKeepsHTMLCharacters(t *testing.T) {
	msg, err := newMessage("a<b&c", map[string]Value{
		"q":    String("x>y"),
		"tags": List(String("<b>")),
	})
	require.NoError(t, err)

	assert.Equal(t, `{"message":"a<b&c","q":"x>y","tags":["<b>"]}`, msg.Body)
	assert.Equal(t, `"x>y"`, msg.Attributes["q"].StringValue)
	assert.Equal(t, `["<b>"]`, msg.Attributes["tags"].StringValue)
}

func TestParseRequest(t *testing.T) {
	fromYAML, err := ParseRequest([]byte(`
message: Door open
target: queue-A
data:
  priority: high
  id: 1234567890123456789
`), "yaml")
	require.NoError(t, err)

	fromJSON, err := ParseRequest([]byte(
		`{"message":"Door open","target":["queue-A"],"data":{"priority":"high","id":1234567890123456789}}`,
	), "JSON")
	require.NoError(t, err)

	want := &Request{
		Message: "Door open",
		Target:  Targets{"queue-A"},
		Data: map[string]Value{
			"priority": String("high"),
			"id":       Int(1234567890123456789),
		},
	}
	assert.Equal(t, want, fromYAML)
	assert.Equal(t, want, fromJSON)

	_, err = ParseRequest([]byte(`{"target":{"a":1}}`), "json")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "call.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"message":"hi","target":"q"}`), 0o600))

	req, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", req.Message)
	assert.Equal(t, Targets{"q"}, req.Target)

	_, err = LoadRequest(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umran/mqnotify"
)

func TestParseData(t *testing.T) {
	extra, err := parseData([]string{"priority=high", "retries=0", "tags=[\"a\"]", "url=http://x?a=b", "id=1234567890123456789"})
	require.NoError(t, err)

	assert.Equal(t, map[string]mqnotify.Value{
		"id":       mqnotify.Int(1234567890123456789),
		"priority": mqnotify.String("high"),
		"retries":  mqnotify.Number(0),
		"tags":     mqnotify.List(mqnotify.String("a")),
		"url":      mqnotify.String("http://x?a=b"),
	}, extra)

	_, err = parseData([]string{"novalue"})
	assert.Error(t, err)

	_, err = parseData([]string{"=x"})
	assert.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"message: from file\ntarget: queue-A\ndata:\n  priority: low\n  room: hall\n",
	), 0o600))

	req, err := buildRequest(path, "", []string{"queue-B"}, []string{"priority=high"})
	require.NoError(t, err)

	assert.Equal(t, &mqnotify.Request{
		Message: "from file",
		Target:  mqnotify.Targets{"queue-A", "queue-B"},
		Data: map[string]mqnotify.Value{
			"priority": mqnotify.String("high"),
			"room":     mqnotify.String("hall"),
		},
	}, req)

	req, err = buildRequest("", "hello", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", req.Message)
	assert.Empty(t, req.Target)

	_, err = buildRequest(filepath.Join(t.TempDir(), "missing.yaml"), "", nil, nil)
	assert.Error(t, err)
}

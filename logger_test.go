package mqnotify

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
	}

	for input, want := range cases {
		logger, err := NewLogger(input, &bytes.Buffer{})
		require.NoError(t, err, input)
		assert.Equal(t, want, logger.GetLevel(), input)
	}

	_, err := NewLogger("loud", nil)
	assert.Error(t, err)
}

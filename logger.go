package mqnotify

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog logger writing to w at the given level.
// A nil w writes human readable output to stderr. An empty level means info.
func NewLogger(level string, w io.Writer) (zerolog.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = zerolog.InfoLevel.String()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}

package mqnotify

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigError through errors.Is.
	ErrConfiguration = errors.New("invalid notifier configuration")

	// ErrInvalidTarget is returned when a target cannot be used to address a queue.
	ErrInvalidTarget = errors.New("invalid target")
)

// ConfigError reports a configuration problem that prevents a Dispatcher from being built.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfiguration) hold for any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func configErr(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}

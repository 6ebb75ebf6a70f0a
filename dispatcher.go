package mqnotify

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Dispatcher delivers notifications to queue targets through a single Sender.
type Dispatcher struct {
	name   string
	sender Sender
	log    zerolog.Logger
}

// Option configures a Dispatcher built with NewWithSender.
type Option func(*Dispatcher)

// WithName sets the display name attached to log entries.
func WithName(name string) Option {
	return func(d *Dispatcher) {
		d.name = name
	}
}

// New builds a Dispatcher and its queue client from validated configuration.
// Any failure is reported as a *ConfigError.
func New(ctx context.Context, config *Config, logger zerolog.Logger) (*Dispatcher, error) {
	if config == nil {
		return nil, configErr("", "missing configuration")
	}

	if config.Credentials == nil {
		return nil, configErr("credentials", "credentials not resolved, use RawConfig.Validate")
	}

	sender, err := newSender(ctx, config)
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("provider", config.Provider).Logger()

	return NewWithSender(sender, logger, WithName(config.Name)), nil
}

// NewWithSender builds a Dispatcher around an existing Sender.
func NewWithSender(sender Sender, logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{sender: sender}
	for _, opt := range opts {
		opt(d)
	}

	lctx := logger.With()
	if d.name != "" {
		lctx = lctx.Str("notifier", d.name)
	}
	d.log = lctx.Logger()

	return d
}

// Name returns the configured display name.
func (d *Dispatcher) Name() string {
	return d.name
}

// Deliver sends body and the non-empty extras to every target, in order.
// An empty target list is skipped without error. The first failing target
// aborts the remaining ones and its error is returned.
func (d *Dispatcher) Deliver(ctx context.Context, body string, extra map[string]Value, targets Targets) error {
	if len(targets) == 0 {
		d.log.Info().Msg("at least 1 target is required")
		return nil
	}

	cleaned, dropped := cleanExtras(extra)
	if dropped {
		d.log.Warn().Str("key", MessageKey).Msg("extra parameter collides with reserved key, dropping it")
	}

	message, err := newMessage(body, cleaned)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	for _, target := range targets {
		if err := d.sender.Send(ctx, target, message); err != nil {
			return fmt.Errorf("deliver to %q: %w", target, err)
		}

		d.log.Debug().
			Str("target", target).
			Int("attributes", len(message.Attributes)).
			Msg("notification delivered")
	}

	return nil
}

// Send is the notification framework entry point. The "target" parameter
// names the destination queues; every other parameter is passed on as an extra.
func (d *Dispatcher) Send(ctx context.Context, message string, params map[string]Value) error {
	targets, err := TargetsOf(params[TargetKey])
	if err != nil {
		return err
	}

	extra := make(map[string]Value, len(params))
	for k, v := range params {
		if k != TargetKey {
			extra[k] = v
		}
	}

	return d.Deliver(ctx, message, extra, targets)
}

// Close releases the queue client, if it holds any resources.
func (d *Dispatcher) Close() error {
	if closer, ok := d.sender.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

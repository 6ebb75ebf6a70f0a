package mqnotify

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
)

// Sender delivers one message to one target on an underlying cloud queue service.
type Sender interface {
	// Send delivers message to target. Errors from the queue client are returned as is.
	Send(ctx context.Context, target string, message *Message) error
}

// newSender returns a sender configured for the provider named in config.
func newSender(ctx context.Context, config *Config) (Sender, error) {
	switch config.Provider {
	case ProviderAWS:
		sender, err := newAwsSender(config)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case ProviderGCloud:
		var opts []option.ClientOption
		if config.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(config.Endpoint))
		}
		sender, err := newGcloudSender(ctx, config.Project, opts...)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, configErr("provider", fmt.Sprintf("unrecognized provider %q", config.Provider))
	}
}

package mqnotify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// topicPublisher publishes to Pub/Sub topics addressed by project and topic ID.
type topicPublisher interface {
	Publish(ctx context.Context, project, topicID string, message *pubsub.Message) (string, error)
	Close() error
}

type gcloudSender struct {
	project   string
	publisher topicPublisher
}

// Send publishes the message to a Pub/Sub topic.
// The target is a topic ID in the configured project or a full "projects/<p>/topics/<id>" name.
func (conn *gcloudSender) Send(ctx context.Context, target string, message *Message) error {
	project, topicID, err := parseTopicName(conn.project, target)
	if err != nil {
		return err
	}

	var attributes map[string]string
	if len(message.Attributes) > 0 {
		attributes = make(map[string]string, len(message.Attributes))
		for attribute, value := range message.Attributes {
			attributes[attribute] = value.StringValue
		}
	}

	_, err = conn.publisher.Publish(ctx, project, topicID, &pubsub.Message{
		Data:       []byte(message.Body),
		Attributes: attributes,
	})

	return err
}

// Close stops all topics and closes the underlying client.
func (conn *gcloudSender) Close() error {
	return conn.publisher.Close()
}

func parseTopicName(defaultProject, target string) (string, string, error) {
	if !strings.HasPrefix(target, "projects/") {
		if target == "" || strings.Contains(target, "/") {
			return "", "", fmt.Errorf("%w: %q is not a topic id", ErrInvalidTarget, target)
		}
		return defaultProject, target, nil
	}

	parts := strings.Split(target, "/")
	if len(parts) != 4 || parts[2] != "topics" || parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("%w: %q is not a topic name", ErrInvalidTarget, target)
	}

	return parts[1], parts[3], nil
}

type pubsubPublisher struct {
	*sync.Mutex
	client *pubsub.Client
	topics map[string]*pubsub.Topic
}

func (p *pubsubPublisher) Publish(ctx context.Context, project, topicID string, message *pubsub.Message) (string, error) {
	r := p.topic(project, topicID).Publish(ctx, message)
	return r.Get(ctx)
}

func (p *pubsubPublisher) topic(project, topicID string) *pubsub.Topic {
	p.Lock()
	defer p.Unlock()

	key := project + "/" + topicID
	topic := p.topics[key]
	if topic == nil {
		topic = p.client.TopicInProject(topicID, project)
		p.topics[key] = topic
	}

	return topic
}

func (p *pubsubPublisher) Close() error {
	p.Lock()
	defer p.Unlock()

	// flush outstanding publishes before the client goes away
	for key, topic := range p.topics {
		topic.Stop()
		delete(p.topics, key)
	}

	return p.client.Close()
}

func newGcloudSender(ctx context.Context, project string, opts ...option.ClientOption) (*gcloudSender, error) {
	client, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, &ConfigError{Reason: "failed to create pubsub client", Err: err}
	}

	return &gcloudSender{
		project: project,
		publisher: &pubsubPublisher{
			Mutex:  new(sync.Mutex),
			client: client,
			topics: make(map[string]*pubsub.Topic),
		},
	}, nil
}

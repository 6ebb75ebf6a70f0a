package mqnotify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

type awsSender struct {
	*sync.Mutex
	sqsClient sqsiface.SQSAPI
	snsClient snsiface.SNSAPI
	queueURLs map[string]string
}

// Send delivers the message to an SQS queue or, for SNS topic ARNs, publishes it to the topic.
// Queue URLs are used directly; queue ARNs and queue names are resolved to a URL first.
func (conn *awsSender) Send(ctx context.Context, target string, message *Message) error {
	if strings.HasPrefix(target, "arn:") {
		parsed, err := arn.Parse(target)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
		}

		switch parsed.Service {
		case sns.ServiceName:
			return conn.publish(ctx, target, message)
		case sqs.ServiceName:
		default:
			return fmt.Errorf("%w: unsupported service %q in %s", ErrInvalidTarget, parsed.Service, target)
		}
	}

	queueURL, err := conn.getQueueURL(ctx, target)
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(message.Body),
	}

	if len(message.Attributes) > 0 {
		sqsMessageAttributes := make(map[string]*sqs.MessageAttributeValue, len(message.Attributes))
		for attribute, value := range message.Attributes {
			sqsMessageAttributes[attribute] = &sqs.MessageAttributeValue{
				DataType:    aws.String(value.DataType),
				StringValue: aws.String(value.StringValue),
			}
		}
		input.MessageAttributes = sqsMessageAttributes
	}

	_, err = conn.sqsClient.SendMessageWithContext(ctx, input)
	return err
}

func (conn *awsSender) publish(ctx context.Context, topicARN string, message *Message) error {
	input := &sns.PublishInput{
		Message:  aws.String(message.Body),
		TopicArn: aws.String(topicARN),
	}

	if len(message.Attributes) > 0 {
		snsMessageAttributes := make(map[string]*sns.MessageAttributeValue, len(message.Attributes))
		for attribute, value := range message.Attributes {
			snsMessageAttributes[attribute] = &sns.MessageAttributeValue{
				DataType:    aws.String(value.DataType),
				StringValue: aws.String(value.StringValue),
			}
		}
		input.MessageAttributes = snsMessageAttributes
	}

	_, err := conn.snsClient.PublishWithContext(ctx, input)
	return err
}

func (conn *awsSender) getQueueURL(ctx context.Context, target string) (string, error) {
	if strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "http://") {
		return target, nil
	}

	conn.Lock()
	defer conn.Unlock()

	if queueURL := conn.queueURLs[target]; queueURL != "" {
		return queueURL, nil
	}

	input := &sqs.GetQueueUrlInput{QueueName: aws.String(target)}
	if parsed, err := arn.Parse(target); err == nil {
		input.QueueName = aws.String(parsed.Resource)
		if parsed.AccountID != "" {
			input.QueueOwnerAWSAccountId = aws.String(parsed.AccountID)
		}
	}

	if aws.StringValue(input.QueueName) == "" {
		return "", fmt.Errorf("%w: empty queue name", ErrInvalidTarget)
	}

	result, err := conn.sqsClient.GetQueueUrlWithContext(ctx, input)
	if err != nil {
		return "", err
	}

	queueURL := aws.StringValue(result.QueueUrl)
	conn.queueURLs[target] = queueURL

	return queueURL, nil
}

func newAwsSession(config *Config) (*session.Session, error) {
	options := session.Options{
		Config: aws.Config{
			Region: aws.String(config.Region),
		},
	}

	if config.Endpoint != "" {
		options.Config.Endpoint = aws.String(config.Endpoint)
	}

	switch creds := config.Credentials.(type) {
	case KeyPairCredentials:
		options.Config.Credentials = credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretAccessKey, "")
	case ProfileCredentials:
		options.Profile = creds.Profile
		options.SharedConfigState = session.SharedConfigEnable
	}

	return session.NewSessionWithOptions(options)
}

func newAwsSender(config *Config) (*awsSender, error) {
	session, err := newAwsSession(config)
	if err != nil {
		return nil, &ConfigError{Reason: "failed to create aws session", Err: err}
	}

	return newAwsSenderWithClients(sqs.New(session), sns.New(session)), nil
}

func newAwsSenderWithClients(sqsClient sqsiface.SQSAPI, snsClient snsiface.SNSAPI) *awsSender {
	return &awsSender{
		Mutex:     new(sync.Mutex),
		sqsClient: sqsClient,
		snsClient: snsClient,
		queueURLs: make(map[string]string),
	}
}

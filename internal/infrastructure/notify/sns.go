package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/core/ports"
)

var _ ports.Notifier = (*SNSNotifier)(nil)

// SNSPublisher is the subset of the SNS client used for direct SMS.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NewSNSClient loads the default AWS credential chain for region. A non-empty
// endpoint overrides the SNS URL (LocalStack).
func NewSNSClient(ctx context.Context, region, endpoint string) (*sns.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var optFns []func(*sns.Options)
	if endpoint != "" {
		optFns = append(optFns, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return sns.NewFromConfig(awsCfg, optFns...), nil
}

// SNSConfig controls the SMS attributes sent with every message.
type SNSConfig struct {
	// SenderID is shown as the sender where carriers support it.
	SenderID string
}

// SNSNotifier sends transactional SMS through AWS SNS without a topic.
type SNSNotifier struct {
	client SNSPublisher
	config SNSConfig
	log    zerolog.Logger
}

func NewSNSNotifier(client SNSPublisher, cfg SNSConfig, log zerolog.Logger) (*SNSNotifier, error) {
	if client == nil {
		return nil, errors.New("sns client is required")
	}
	return &SNSNotifier{
		client: client,
		config: cfg,
		log:    log.With().Str("component", "sns").Logger(),
	}, nil
}

func (n *SNSNotifier) Name() string { return "sns" }

func (n *SNSNotifier) Send(ctx context.Context, to, body string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if n.config.SenderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(n.config.SenderID),
		}
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	n.log.Debug().Str("message_id", aws.ToString(out.MessageId)).Msg("sms published")
	return nil
}

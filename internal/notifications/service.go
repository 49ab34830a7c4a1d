package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// SNSAPI is the subset of *sns.Client the publisher uses
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher sends issuance events to an SNS topic
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	logger   *zap.Logger
}

// NewSNSPublisher creates a publisher for topicARN
func NewSNSPublisher(client SNSAPI, topicARN string, logger *zap.Logger) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, logger: logger}
}

func (p *SNSPublisher) PublishIssued(ctx context.Context, event IssuanceEvent) error {
	if event.Type == "" {
		event.Type = EventCertificateIssued
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode issuance event: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("Certificate issued"),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
			"cert_type":  {DataType: aws.String("String"), StringValue: aws.String(event.CertType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish issuance event: %w", err)
	}

	p.logger.Debug("Issuance event published",
		zap.String("validation_number", event.ValidationNumber),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

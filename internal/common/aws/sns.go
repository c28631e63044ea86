// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"application-intake/internal/models"
)

// SNSAPI is the subset of the SNS client the publisher needs.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// OutcomePublisher writes review decision outcomes to an SNS topic.
type OutcomePublisher struct {
	client   SNSAPI
	topicARN string
}

func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(cfg), nil
}

func NewOutcomePublisher(client SNSAPI, topicARN string) *OutcomePublisher {
	return &OutcomePublisher{client: client, topicARN: topicARN}
}

// PublishOutcome sends the outcome as a JSON message with status and applicant attributes.
func (p *OutcomePublisher) PublishOutcome(ctx context.Context, outcome models.DecisionOutcome) (string, error) {
	body, err := json.Marshal(outcome)
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Message:  awssdk.String(string(body)),
		Subject:  awssdk.String("application " + string(outcome.Status)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"status": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(string(outcome.Status)),
			},
			"applicantId": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(outcome.ApplicantID),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return awssdk.ToString(out.MessageId), nil
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/telemetry"
	"github.com/sony/gobreaker"
)

// SQSClient is the part of the AWS SQS client the publisher needs.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// AWSOptions selects the region and, for LocalStack, a custom endpoint.
type AWSOptions struct {
	Region   string
	Endpoint string
}

// NewAWSConfig loads the default credential chain. A non-empty Endpoint
// switches to static test credentials for LocalStack.
func NewAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	if opts.Endpoint != "" {
		slog.Info("routing AWS calls to custom endpoint", "endpoint", opts.Endpoint)
		return awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(opts.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
}

// NewSQSClient builds an SQS client, honouring a custom endpoint.
func NewSQSClient(cfg aws.Config, endpoint string) *sqs.Client {
	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// NotificationMessage is the SQS body for one notification.
type NotificationMessage struct {
	NotificationID string                        `json:"notification_id"`
	RecipientID    string                        `json:"recipient_id"`
	SenderID       *string                       `json:"sender_id,omitempty"`
	Type           notification.NotificationType `json:"type"`
	Title          string                        `json:"title"`
	Message        string                        `json:"message"`
	Data           map[string]any                `json:"data,omitempty"`
	CreatedAt      time.Time                     `json:"created_at"`
}

// SQSPublisher implements notification.Publisher on an SQS queue. Calls
// go through a circuit breaker so a broken queue fails fast.
type SQSPublisher struct {
	client   SQSClient
	queueURL string
	cb       *gobreaker.CircuitBreaker
}

func NewSQSPublisher(client SQSClient, queueURL string) *SQSPublisher {
	settings := gobreaker.Settings{
		Name:        "notification-sqs",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

// Publish implements notification.Publisher.
func (p *SQSPublisher) Publish(ctx context.Context, n *notification.Notification) error {
	body, err := json.Marshal(NotificationMessage{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		SenderID:       n.SenderID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		Data:           n.Data,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	attributes := telemetry.InjectTraceContext(ctx)
	attributes["EventType"] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(string(n.Type)),
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:          aws.String(p.queueURL),
			MessageBody:       aws.String(string(body)),
			MessageAttributes: attributes,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to send notification %s: %w", n.ID, err)
	}
	return nil
}

package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSConsumer provides methods for consuming messages from SQS queues
type SQSConsumer struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger

	// WaitTimeSeconds is the long-polling window per receive call.
	WaitTimeSeconds int32
	// RetryDelay is the first pause after a failed receive. It doubles on
	// each consecutive failure up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewSQSConsumer creates a new SQS consumer for the given queue URL
func NewSQSConsumer(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSConsumer {
	return NewSQSConsumerWithAPI(sqs.NewFromConfig(cfg), queueURL, logger)
}

func NewSQSConsumerWithAPI(api SQSAPI, queueURL string, logger *zap.Logger) *SQSConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQSConsumer{
		client:          api,
		queueURL:        queueURL,
		logger:          logger,
		WaitTimeSeconds: 20,
		RetryDelay:      time.Second,
		MaxRetryDelay:   30 * time.Second,
	}
}

// MessageHandler is a function that processes an SQS message
type MessageHandler func(ctx context.Context, body string) error

// StartPolling polls SQS for messages and processes them with the handler.
// Runs until the context is cancelled. Failed receives back off
// exponentially between RetryDelay and MaxRetryDelay.
func (c *SQSConsumer) StartPolling(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Starting SQS polling", zap.String("queue_url", c.queueURL))

	var delay time.Duration
	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("SQS polling stopped")
			return err
		}

		err := c.PollOnce(ctx, handler)
		if err == nil || errors.Is(err, context.Canceled) {
			delay = 0
			continue
		}

		delay = c.nextDelay(delay)
		c.logger.Warn("Error polling SQS", zap.Error(err), zap.Duration("retry_in", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Info("SQS polling stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *SQSConsumer) nextDelay(prev time.Duration) time.Duration {
	base := c.RetryDelay
	if base <= 0 {
		base = time.Second
	}
	limit := c.MaxRetryDelay
	if limit < base {
		limit = base
	}
	if prev <= 0 {
		return base
	}
	if next := prev * 2; next < limit {
		return next
	}
	return limit
}

// PollOnce receives one batch. Messages whose handler fails are left on the
// queue and become visible again after the visibility timeout.
func (c *SQSConsumer) PollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &c.queueURL,
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     c.WaitTimeSeconds,
		VisibilityTimeout:   30,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range result.Messages {
		if msg.Body == nil {
			continue
		}

		if err := handler(ctx, *msg.Body); err != nil {
			c.logger.Warn("Failed to process SQS message",
				zap.String("message_id", sdkaws.ToString(msg.MessageId)),
				zap.Error(err),
			)
			continue
		}

		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      &c.queueURL,
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			c.logger.Warn("Failed to delete SQS message", zap.Error(err))
		}
	}

	return nil
}

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchLogsAPI is the subset of the CloudWatch Logs client used here.
type CloudWatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsOptions configures where and how often log lines are shipped.
type CloudWatchLogsOptions struct {
	LogGroup      string
	LogStream     string
	RetentionDays int32
	// BatchSize lines are buffered before a PutLogEvents call.
	BatchSize int
	// FlushInterval bounds how long a buffered line waits.
	FlushInterval time.Duration
}

func (o *CloudWatchLogsOptions) defaults() {
	if o.LogGroup == "" {
		o.LogGroup = "/stripe-bridge/services"
	}
	if o.RetentionDays <= 0 {
		o.RetentionDays = 30
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 5 * time.Second
	}
}

// CloudWatchLogsClient ships log lines to a CloudWatch Logs stream. It is a
// zapcore.WriteSyncer: Write buffers, Sync flushes.
type CloudWatchLogsClient struct {
	api     CloudWatchLogsAPI
	opts    CloudWatchLogsOptions
	enabled bool
	now     func() time.Time

	mu            sync.Mutex
	pending       []types.InputLogEvent
	lastFlush     time.Time
	sequenceToken *string
}

// NewCloudWatchLogsClient ships logs for serviceName when
// CLOUDWATCH_ENABLED=true. Otherwise it returns a disabled client whose
// writes are discarded.
func NewCloudWatchLogsClient(ctx context.Context, cfg sdkaws.Config, serviceName string) (*CloudWatchLogsClient, error) {
	if os.Getenv("CLOUDWATCH_ENABLED") != "true" {
		return &CloudWatchLogsClient{}, nil
	}
	return NewCloudWatchLogsClientWithAPI(ctx, cloudwatchlogs.NewFromConfig(cfg), CloudWatchLogsOptions{
		LogGroup:  os.Getenv("CLOUDWATCH_LOG_GROUP"),
		LogStream: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
	})
}

// NewCloudWatchLogsClientWithAPI creates the log group and stream and
// returns an enabled client.
func NewCloudWatchLogsClientWithAPI(ctx context.Context, api CloudWatchLogsAPI, opts CloudWatchLogsOptions) (*CloudWatchLogsClient, error) {
	opts.defaults()
	if opts.LogStream == "" {
		return nil, errors.New("cloudwatch log stream name is required")
	}

	c := &CloudWatchLogsClient{api: api, opts: opts, enabled: true, now: time.Now}
	if err := c.ensureLogGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	if _, err := api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(opts.LogGroup),
		LogStreamName: sdkaws.String(opts.LogStream),
	}); err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}
	c.lastFlush = c.now()
	return c, nil
}

func (c *CloudWatchLogsClient) ensureLogGroup(ctx context.Context) error {
	_, err := c.api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: sdkaws.String(c.opts.LogGroup),
	})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return err
	}

	if _, err := c.api.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(c.opts.LogGroup),
		RetentionInDays: sdkaws.Int32(c.opts.RetentionDays),
	}); err != nil {
		return fmt.Errorf("failed to set retention policy: %w", err)
	}
	return nil
}

// Write buffers one encoded log line. The buffer is shipped once it holds
// BatchSize lines or FlushInterval has passed since the last shipment.
// Shipping failures go to stderr and never fail the write.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	if !c.enabled {
		return len(p), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pending = append(c.pending, types.InputLogEvent{
		Message:   sdkaws.String(string(bytes.TrimRight(p, "\n"))),
		Timestamp: sdkaws.Int64(now.UnixMilli()),
	})
	if len(c.pending) >= c.opts.BatchSize || now.Sub(c.lastFlush) >= c.opts.FlushInterval {
		if err := c.flushLocked(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
		}
	}
	return len(p), nil
}

// Sync ships whatever is buffered.
func (c *CloudWatchLogsClient) Sync() error {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked(context.Background())
}

// Run flushes every FlushInterval so quiet periods do not strand buffered
// lines. It returns after a final flush once ctx is done.
func (c *CloudWatchLogsClient) Run(ctx context.Context) {
	if !c.enabled {
		return
	}
	ticker := time.NewTicker(c.opts.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.Sync()
			return
		case <-ticker.C:
			if err := c.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "CloudWatch flush error: %v\n", err)
			}
		}
	}
}

func (c *CloudWatchLogsClient) flushLocked(ctx context.Context) error {
	c.lastFlush = c.now()
	if len(c.pending) == 0 {
		return nil
	}
	batch := c.pending
	c.pending = nil

	out, err := c.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(c.opts.LogGroup),
		LogStreamName: sdkaws.String(c.opts.LogStream),
		LogEvents:     batch,
		SequenceToken: c.sequenceToken,
	})
	if err != nil {
		return fmt.Errorf("failed to put %d log events: %w", len(batch), err)
	}
	c.sequenceToken = out.NextSequenceToken
	return nil
}

func (c *CloudWatchLogsClient) IsEnabled() bool {
	return c.enabled
}

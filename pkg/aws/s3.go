package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPresigner is the subset of the S3 presign client used here.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// NewS3Presigner creates a presign client from AWS config.
func NewS3Presigner(cfg sdkaws.Config) *s3.PresignClient {
	return s3.NewPresignClient(s3.NewFromConfig(cfg))
}

// GeneratePresignedGetURL generates a presigned GET URL for the bucket/key.
func GeneratePresignedGetURL(ctx context.Context, presigner ObjectPresigner, bucket, key string, expiry time.Duration) (string, error) {
	presigned, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}
	return presigned.URL, nil
}

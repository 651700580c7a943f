package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	awspkg "github.com/yashrajoria/stripe-bridge/pkg/aws"
)

const defaultImageURLExpiry = time.Hour

// ImageResolver turns image references into URLs Stripe can fetch.
// s3://bucket/key is presigned; http and https URLs pass through.
type ImageResolver struct {
	presigner awspkg.ObjectPresigner
	expiry    time.Duration
}

func NewImageResolver(presigner awspkg.ObjectPresigner, expiry time.Duration) *ImageResolver {
	if expiry <= 0 {
		expiry = defaultImageURLExpiry
	}
	return &ImageResolver{presigner: presigner, expiry: expiry}
}

// Resolve returns a fetchable URL for ref. A nil resolver handles only
// http(s) URLs.
func (r *ImageResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" {
		return "", apperrors.NewValidationError("images", fmt.Sprintf("invalid image reference %q", ref))
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", apperrors.NewValidationError("images", fmt.Sprintf("invalid image reference %q", ref))
		}
		return ref, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return "", apperrors.NewValidationError("images", fmt.Sprintf("s3 reference %q needs a bucket and key", ref))
		}
		if r == nil || r.presigner == nil {
			return "", apperrors.NewConfigurationError("s3 image references require an S3 presigner", nil)
		}
		signed, err := awspkg.GeneratePresignedGetURL(ctx, r.presigner, u.Host, key, r.expiry)
		if err != nil {
			return "", apperrors.New(http.StatusBadGateway, "failed to presign image", err)
		}
		return signed, nil
	default:
		return "", apperrors.NewValidationError("images", fmt.Sprintf("unsupported image scheme %q", u.Scheme))
	}
}

// ResolveAll resolves refs in order, stopping at the first failure.
func (r *ImageResolver) ResolveAll(ctx context.Context, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := r.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

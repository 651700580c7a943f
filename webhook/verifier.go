package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v80"
	stripewebhook "github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/common/logger"
	"github.com/yashrajoria/stripe-bridge/config"
)

// DefaultTolerance bounds how old a signed timestamp may be.
const DefaultTolerance = 300 * time.Second

// SignatureHeader is the header Stripe signs deliveries with.
const SignatureHeader = "Stripe-Signature"

// Rejection reasons carried on authentication errors.
const (
	ReasonMissingSignature = "missing_signature"
	ReasonMissingSecret    = "missing_secret"
	ReasonInvalidSignature = "invalid_signature"
	ReasonInvalidPayload   = "invalid_payload"
)

// Verifier authenticates deliveries against the endpoint secret. The
// HMAC and timestamp checks belong to stripe-go.
type Verifier struct {
	secret    *config.Credential
	tolerance time.Duration
	logger    *zap.Logger
}

func NewVerifier(secret *config.Credential, tolerance time.Duration, log *zap.Logger) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{secret: secret, tolerance: tolerance, logger: log}
}

// Verify checks the signature header and decodes the event. A mismatched
// API version is logged, not rejected.
func (v *Verifier) Verify(ctx context.Context, payload []byte, header string) (*stripe.Event, error) {
	if header == "" {
		return nil, apperrors.NewAuthenticationError(ReasonMissingSignature, "Missing Stripe-Signature header", nil)
	}

	secret, err := v.secret.Resolve(ctx)
	if err != nil {
		return nil, apperrors.NewConfigurationError("Unable to resolve webhook secret", err)
	}
	if secret == "" {
		return nil, apperrors.NewAuthenticationError(ReasonMissingSecret, "Webhook secret is not configured", nil)
	}

	if err := stripewebhook.ValidatePayloadWithTolerance(payload, header, secret, v.tolerance); err != nil {
		return nil, apperrors.NewAuthenticationError(ReasonInvalidSignature, "Invalid webhook signature", err)
	}

	var evt stripe.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, apperrors.NewAuthenticationError(ReasonInvalidPayload, "Invalid webhook payload", err)
	}
	if evt.ID == "" || evt.Type == "" {
		return nil, apperrors.NewAuthenticationError(ReasonInvalidPayload, "Webhook payload is not an event", nil)
	}

	if evt.APIVersion != "" && evt.APIVersion != stripe.APIVersion {
		logger.WithRequestID(ctx, v.logger).Warn("Webhook API version differs from SDK",
			zap.String("event_id", evt.ID),
			zap.String("event_api_version", evt.APIVersion),
			zap.String("sdk_api_version", stripe.APIVersion),
		)
	}
	return &evt, nil
}

package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/models"
)

// CheckoutService wraps the Checkout Sessions API.
type CheckoutService struct {
	client *StripeClient
}

func NewCheckoutService(c *StripeClient) *CheckoutService {
	return &CheckoutService{client: c}
}

// Create starts a hosted checkout. Payment and subscription sessions need at
// least one line item; setup sessions need a currency instead.
func (s *CheckoutService) Create(ctx context.Context, req *models.CreateCheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	mode := stripe.CheckoutSessionMode(req.Mode)
	switch {
	case mode != stripe.CheckoutSessionModeSetup && len(req.LineItems) == 0:
		return nil, apperrors.NewValidationError("line_items", "line_items is required for "+req.Mode+" mode")
	case mode == stripe.CheckoutSessionModeSetup && req.Currency == "":
		return nil, apperrors.NewValidationError("currency", "currency is required for setup mode")
	case req.Customer != "" && req.CustomerEmail != "":
		return nil, apperrors.NewValidationError("customer_email", "customer and customer_email are mutually exclusive")
	}

	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(req.Mode),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         optString(req.CancelURL),
		Customer:          optString(req.Customer),
		CustomerEmail:     optString(req.CustomerEmail),
		ClientReferenceID: optString(req.ClientReferenceID),
	}
	params.Context = ctx
	if req.Currency != "" {
		params.Currency = stripe.String(normalizeCurrency(req.Currency))
	}
	if req.AllowPromotionCodes {
		params.AllowPromotionCodes = stripe.Bool(true)
	}
	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(li.Price),
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	metadata(req.Metadata, params.AddMetadata)

	sess, err := api.CheckoutSessions.New(params)
	return sess, wrapError("create checkout session", err)
}

func (s *CheckoutService) Get(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	if err := requireID("session", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := api.CheckoutSessions.Get(id, params)
	return sess, wrapError("get checkout session", err)
}

// Expire closes an open session so it can no longer be paid.
func (s *CheckoutService) Expire(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	if err := requireID("session", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	sess, err := api.CheckoutSessions.Expire(id, params)
	return sess, wrapError("expire checkout session", err)
}

func (s *CheckoutService) List(ctx context.Context, req *models.ListCheckoutSessionsRequest) (*Page[*stripe.CheckoutSession], error) {
	if req == nil {
		req = &models.ListCheckoutSessionsRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionListParams{
		Customer: optString(req.Customer),
		Status:   optString(req.Status),
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list checkout sessions", api.CheckoutSessions.List(params), func(s *stripe.CheckoutSession) string { return s.ID })
}

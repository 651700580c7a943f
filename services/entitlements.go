package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

// FeatureService manages entitlement features.
type FeatureService struct {
	client *StripeClient
}

func NewFeatureService(c *StripeClient) *FeatureService {
	return &FeatureService{client: c}
}

func (s *FeatureService) Create(ctx context.Context, req *models.CreateFeatureRequest) (*stripe.EntitlementsFeature, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EntitlementsFeatureParams{
		Name:      stripe.String(req.Name),
		LookupKey: stripe.String(req.LookupKey),
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	f, err := api.EntitlementsFeatures.New(params)
	return f, wrapError("create feature", err)
}

func (s *FeatureService) Get(ctx context.Context, id string) (*stripe.EntitlementsFeature, error) {
	if err := requireID("feature", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EntitlementsFeatureParams{}
	params.Context = ctx
	f, err := api.EntitlementsFeatures.Get(id, params)
	return f, wrapError("get feature", err)
}

func (s *FeatureService) Archive(ctx context.Context, id string) (*stripe.EntitlementsFeature, error) {
	if err := requireID("feature", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EntitlementsFeatureParams{Active: stripe.Bool(false)}
	params.Context = ctx
	f, err := api.EntitlementsFeatures.Update(id, params)
	return f, wrapError("archive feature", err)
}

func (s *FeatureService) List(ctx context.Context, req *models.ListFeaturesRequest) (*Page[*stripe.EntitlementsFeature], error) {
	if req == nil {
		req = &models.ListFeaturesRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EntitlementsFeatureListParams{
		LookupKey: optString(req.LookupKey),
		Archived:  req.Archived,
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list features", api.EntitlementsFeatures.List(params), func(f *stripe.EntitlementsFeature) string { return f.ID })
}

// EntitlementService reads a customer's active entitlements.
type EntitlementService struct {
	client *StripeClient
}

func NewEntitlementService(c *StripeClient) *EntitlementService {
	return &EntitlementService{client: c}
}

// ListActive returns every active entitlement for the customer.
func (s *EntitlementService) ListActive(ctx context.Context, customer string) ([]*stripe.EntitlementsActiveEntitlement, error) {
	if err := requireID("customer", customer); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EntitlementsActiveEntitlementListParams{Customer: stripe.String(customer)}
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.EntitlementsActiveEntitlement]("list active entitlements",
		api.EntitlementsActiveEntitlements.List(params), 0)
}

// HasFeature reports whether the customer is entitled to the feature with
// the given lookup key.
func (s *EntitlementService) HasFeature(ctx context.Context, customer, lookupKey string) (bool, error) {
	if err := requireID("lookup_key", lookupKey); err != nil {
		return false, err
	}
	active, err := s.ListActive(ctx, customer)
	if err != nil {
		return false, err
	}
	for _, e := range active {
		if e.LookupKey == lookupKey {
			return true, nil
		}
	}
	return false, nil
}

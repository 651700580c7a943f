package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

type TaxRateService struct {
	client *StripeClient
}

func NewTaxRateService(c *StripeClient) *TaxRateService {
	return &TaxRateService{client: c}
}

func (s *TaxRateService) Create(ctx context.Context, req *models.CreateTaxRateRequest) (*stripe.TaxRate, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TaxRateParams{
		DisplayName:  stripe.String(req.DisplayName),
		Percentage:   stripe.Float64(req.Percentage),
		Inclusive:    stripe.Bool(req.Inclusive),
		Country:      optString(req.Country),
		State:        optString(req.State),
		Jurisdiction: optString(req.Jurisdiction),
		Description:  optString(req.Description),
		TaxType:      optString(req.TaxType),
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	tr, err := api.TaxRates.New(params)
	return tr, wrapError("create tax rate", err)
}

func (s *TaxRateService) Get(ctx context.Context, id string) (*stripe.TaxRate, error) {
	if err := requireID("tax_rate", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TaxRateParams{}
	params.Context = ctx
	tr, err := api.TaxRates.Get(id, params)
	return tr, wrapError("get tax rate", err)
}

// Archive deactivates the rate. Tax rates cannot be deleted.
func (s *TaxRateService) Archive(ctx context.Context, id string) (*stripe.TaxRate, error) {
	if err := requireID("tax_rate", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TaxRateParams{Active: stripe.Bool(false)}
	params.Context = ctx
	tr, err := api.TaxRates.Update(id, params)
	return tr, wrapError("archive tax rate", err)
}

func (s *TaxRateService) List(ctx context.Context, req *models.ListTaxRatesRequest) (*Page[*stripe.TaxRate], error) {
	if req == nil {
		req = &models.ListTaxRatesRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TaxRateListParams{Active: req.Active, Inclusive: req.Inclusive}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list tax rates", api.TaxRates.List(params), func(tr *stripe.TaxRate) string { return tr.ID })
}

type ShippingRateService struct {
	client *StripeClient
}

func NewShippingRateService(c *StripeClient) *ShippingRateService {
	return &ShippingRateService{client: c}
}

// Create creates a fixed_amount shipping rate.
func (s *ShippingRateService) Create(ctx context.Context, req *models.CreateShippingRateRequest) (*stripe.ShippingRate, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.ShippingRateParams{
		DisplayName: stripe.String(req.DisplayName),
		Type:        stripe.String(string(stripe.ShippingRateTypeFixedAmount)),
		FixedAmount: &stripe.ShippingRateFixedAmountParams{
			Amount:   stripe.Int64(req.Amount),
			Currency: stripe.String(normalizeCurrency(req.Currency)),
		},
		TaxBehavior: optString(req.TaxBehavior),
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	sr, err := api.ShippingRates.New(params)
	return sr, wrapError("create shipping rate", err)
}

func (s *ShippingRateService) Get(ctx context.Context, id string) (*stripe.ShippingRate, error) {
	if err := requireID("shipping_rate", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.ShippingRateParams{}
	params.Context = ctx
	sr, err := api.ShippingRates.Get(id, params)
	return sr, wrapError("get shipping rate", err)
}

func (s *ShippingRateService) Archive(ctx context.Context, id string) (*stripe.ShippingRate, error) {
	if err := requireID("shipping_rate", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.ShippingRateParams{Active: stripe.Bool(false)}
	params.Context = ctx
	sr, err := api.ShippingRates.Update(id, params)
	return sr, wrapError("archive shipping rate", err)
}

func (s *ShippingRateService) List(ctx context.Context, req *models.ListShippingRatesRequest) (*Page[*stripe.ShippingRate], error) {
	if req == nil {
		req = &models.ListShippingRatesRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.ShippingRateListParams{Active: req.Active}
	if req.Currency != "" {
		params.Currency = stripe.String(normalizeCurrency(req.Currency))
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list shipping rates", api.ShippingRates.List(params), func(sr *stripe.ShippingRate) string { return sr.ID })
}

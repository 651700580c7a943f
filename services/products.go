package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

// ProductService wraps the Products API. Image references are resolved to
// public URLs before they are sent.
type ProductService struct {
	client *StripeClient
	images *ImageResolver
}

func NewProductService(c *StripeClient, images *ImageResolver) *ProductService {
	return &ProductService{client: c, images: images}
}

func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*stripe.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.ProductParams{
		Name:   stripe.String(req.Name),
		Active: req.Active,
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.TaxCode != "" {
		params.TaxCode = stripe.String(req.TaxCode)
	}
	if req.URL != "" {
		params.URL = stripe.String(req.URL)
	}
	if len(req.Images) > 0 {
		urls, err := s.images.ResolveAll(ctx, req.Images)
		if err != nil {
			return nil, err
		}
		params.Images = stripe.StringSlice(urls)
	}
	metadata(req.Metadata, params.AddMetadata)

	p, err := api.Products.New(params)
	return p, wrapError("create product", err)
}

func (s *ProductService) Get(ctx context.Context, id string) (*stripe.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.ProductParams{}
	params.Context = ctx
	p, err := api.Products.Get(id, params)
	return p, wrapError("get product", err)
}

func (s *ProductService) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*stripe.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	}
	params.Context = ctx
	if len(req.Images) > 0 {
		urls, err := s.images.ResolveAll(ctx, req.Images)
		if err != nil {
			return nil, err
		}
		params.Images = stripe.StringSlice(urls)
	}
	metadata(req.Metadata, params.AddMetadata)

	p, err := api.Products.Update(id, params)
	return p, wrapError("update product", err)
}

// Archive deactivates a product, which keeps it attached to existing prices.
func (s *ProductService) Archive(ctx context.Context, id string) (*stripe.Product, error) {
	active := false
	return s.Update(ctx, id, &models.UpdateProductRequest{Active: &active})
}

// Delete removes a product that has no prices.
func (s *ProductService) Delete(ctx context.Context, id string) (*stripe.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.ProductParams{}
	params.Context = ctx
	p, err := api.Products.Del(id, params)
	return p, wrapError("delete product", err)
}

func (s *ProductService) listParams(req *models.ListProductsRequest) *stripe.ProductListParams {
	return &stripe.ProductListParams{Active: req.Active}
}

func (s *ProductService) List(ctx context.Context, req *models.ListProductsRequest) (*Page[*stripe.Product], error) {
	if req == nil {
		req = &models.ListProductsRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list products", api.Products.List(params), func(p *stripe.Product) string { return p.ID })
}

// ListAll walks every page, stopping after maxItems when it is positive.
func (s *ProductService) ListAll(ctx context.Context, req *models.ListProductsRequest, maxItems int) ([]*stripe.Product, error) {
	if req == nil {
		req = &models.ListProductsRequest{}
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.Product]("list products", api.Products.List(params), maxItems)
}

// PriceService wraps the Prices API.
type PriceService struct {
	client *StripeClient
}

func NewPriceService(c *StripeClient) *PriceService {
	return &PriceService{client: c}
}

// Create makes a one-time price, or a recurring one when req.Interval is set.
func (s *PriceService) Create(ctx context.Context, req *models.CreatePriceRequest) (*stripe.Price, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.PriceParams{
		Product:    stripe.String(req.Product),
		Currency:   stripe.String(normalizeCurrency(req.Currency)),
		UnitAmount: stripe.Int64(req.UnitAmount),
	}
	params.Context = ctx
	if req.Interval != "" {
		params.Recurring = &stripe.PriceRecurringParams{Interval: stripe.String(req.Interval)}
		if req.IntervalCount > 0 {
			params.Recurring.IntervalCount = stripe.Int64(req.IntervalCount)
		}
	}
	if req.LookupKey != "" {
		params.LookupKey = stripe.String(req.LookupKey)
	}
	if req.Nickname != "" {
		params.Nickname = stripe.String(req.Nickname)
	}
	metadata(req.Metadata, params.AddMetadata)

	p, err := api.Prices.New(params)
	return p, wrapError("create price", err)
}

func (s *PriceService) Get(ctx context.Context, id string) (*stripe.Price, error) {
	if err := requireID("price", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PriceParams{}
	params.Context = ctx
	p, err := api.Prices.Get(id, params)
	return p, wrapError("get price", err)
}

func (s *PriceService) Update(ctx context.Context, id string, req *models.UpdatePriceRequest) (*stripe.Price, error) {
	if err := requireID("price", id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PriceParams{
		Active:    req.Active,
		Nickname:  req.Nickname,
		LookupKey: req.LookupKey,
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	p, err := api.Prices.Update(id, params)
	return p, wrapError("update price", err)
}

// Archive deactivates a price. Prices cannot be deleted.
func (s *PriceService) Archive(ctx context.Context, id string) (*stripe.Price, error) {
	active := false
	return s.Update(ctx, id, &models.UpdatePriceRequest{Active: &active})
}

// GetByLookupKey returns the active price with lookupKey, or a 404 error.
func (s *PriceService) GetByLookupKey(ctx context.Context, lookupKey string) (*stripe.Price, error) {
	if err := requireID("lookup_key", lookupKey); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PriceListParams{
		LookupKeys: stripe.StringSlice([]string{lookupKey}),
		Active:     stripe.Bool(true),
	}
	pageParams(ctx, &params.ListParams, models.ListRequest{Limit: 1})
	page, err := collectPage("find price", api.Prices.List(params), func(p *stripe.Price) string { return p.ID })
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, notFound("price", lookupKey)
	}
	return page.Data[0], nil
}

func (s *PriceService) listParams(req *models.ListPricesRequest) *stripe.PriceListParams {
	params := &stripe.PriceListParams{Active: req.Active}
	if req.Product != "" {
		params.Product = stripe.String(req.Product)
	}
	if req.Type != "" {
		params.Type = stripe.String(req.Type)
	}
	return params
}

func (s *PriceService) List(ctx context.Context, req *models.ListPricesRequest) (*Page[*stripe.Price], error) {
	if req == nil {
		req = &models.ListPricesRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list prices", api.Prices.List(params), func(p *stripe.Price) string { return p.ID })
}

func (s *PriceService) ListAll(ctx context.Context, req *models.ListPricesRequest, maxItems int) ([]*stripe.Price, error) {
	if req == nil {
		req = &models.ListPricesRequest{}
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.Price]("list prices", api.Prices.List(params), maxItems)
}

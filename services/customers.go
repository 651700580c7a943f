package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

// CustomerService wraps the Customers API.
type CustomerService struct {
	client *StripeClient
}

func NewCustomerService(c *StripeClient) *CustomerService {
	return &CustomerService{client: c}
}

func (s *CustomerService) Create(ctx context.Context, req *models.CreateCustomerRequest) (*stripe.Customer, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{
		Email:       optString(req.Email),
		Name:        optString(req.Name),
		Phone:       optString(req.Phone),
		Description: optString(req.Description),
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	c, err := api.Customers.New(params)
	return c, wrapError("create customer", err)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*stripe.Customer, error) {
	if err := requireID("customer", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := api.Customers.Get(id, params)
	return c, wrapError("get customer", err)
}

func (s *CustomerService) Update(ctx context.Context, id string, req *models.UpdateCustomerRequest) (*stripe.Customer, error) {
	if err := requireID("customer", id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{
		Email:       req.Email,
		Name:        req.Name,
		Phone:       req.Phone,
		Description: req.Description,
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	c, err := api.Customers.Update(id, params)
	return c, wrapError("update customer", err)
}

func (s *CustomerService) Delete(ctx context.Context, id string) (*stripe.Customer, error) {
	if err := requireID("customer", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := api.Customers.Del(id, params)
	return c, wrapError("delete customer", err)
}

// FindByEmail returns the most recent customer with email.
func (s *CustomerService) FindByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	page, err := s.List(ctx, &models.ListCustomersRequest{
		ListRequest: models.ListRequest{Limit: 1},
		Email:       email,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, notFound("customer", email)
	}
	return page.Data[0], nil
}

func (s *CustomerService) listParams(req *models.ListCustomersRequest) *stripe.CustomerListParams {
	return &stripe.CustomerListParams{Email: optString(req.Email)}
}

func (s *CustomerService) List(ctx context.Context, req *models.ListCustomersRequest) (*Page[*stripe.Customer], error) {
	if req == nil {
		req = &models.ListCustomersRequest{}
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
	return collectPage("list customers", api.Customers.List(params), func(c *stripe.Customer) string { return c.ID })
}

func (s *CustomerService) ListAll(ctx context.Context, req *models.ListCustomersRequest, maxItems int) ([]*stripe.Customer, error) {
	if req == nil {
		req = &models.ListCustomersRequest{}
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.Customer]("list customers", api.Customers.List(params), maxItems)
}

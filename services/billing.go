package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/models"
)

// SubscriptionService wraps the Subscriptions API.
type SubscriptionService struct {
	client *StripeClient
}

func NewSubscriptionService(c *StripeClient) *SubscriptionService {
	return &SubscriptionService{client: c}
}

func (s *SubscriptionService) Create(ctx context.Context, req *models.CreateSubscriptionRequest) (*stripe.Subscription, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Customer:             stripe.String(req.Customer),
		DefaultPaymentMethod: optString(req.DefaultPaymentMethod),
	}
	params.Context = ctx
	for _, item := range req.Items {
		params.Items = append(params.Items, &stripe.SubscriptionItemsParams{
			Price:    stripe.String(item.Price),
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	if req.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(req.TrialPeriodDays)
	}
	metadata(req.Metadata, params.AddMetadata)

	sub, err := api.Subscriptions.New(params)
	return sub, wrapError("create subscription", err)
}

func (s *SubscriptionService) Get(ctx context.Context, id string) (*stripe.Subscription, error) {
	if err := requireID("subscription", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := api.Subscriptions.Get(id, params)
	return sub, wrapError("get subscription", err)
}

// Update swaps the price and/or quantity of the subscription's first item.
func (s *SubscriptionService) Update(ctx context.Context, id string, req *models.UpdateSubscriptionRequest) (*stripe.Subscription, error) {
	if err := requireID("subscription", id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		ProrationBehavior: optString(req.ProrationBehavior),
		CancelAtPeriodEnd: req.CancelAtPeriodEnd,
	}
	params.Context = ctx

	if req.Price != "" || req.Quantity > 0 {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Items == nil || len(current.Items.Data) == 0 {
			return nil, apperrors.NewValidationError("subscription", "subscription has no items to update")
		}
		item := &stripe.SubscriptionItemsParams{ID: stripe.String(current.Items.Data[0].ID)}
		if req.Price != "" {
			item.Price = stripe.String(req.Price)
		}
		if req.Quantity > 0 {
			item.Quantity = stripe.Int64(req.Quantity)
		}
		params.Items = []*stripe.SubscriptionItemsParams{item}
	}
	metadata(req.Metadata, params.AddMetadata)

	sub, err := api.Subscriptions.Update(id, params)
	return sub, wrapError("update subscription", err)
}

// Cancel ends the subscription now, or at the end of the current period when
// req.AtPeriodEnd is set.
func (s *SubscriptionService) Cancel(ctx context.Context, id string, req *models.CancelSubscriptionRequest) (*stripe.Subscription, error) {
	if err := requireID("subscription", id); err != nil {
		return nil, err
	}
	if req == nil {
		req = &models.CancelSubscriptionRequest{}
	}
	if req.AtPeriodEnd {
		return s.Update(ctx, id, &models.UpdateSubscriptionRequest{CancelAtPeriodEnd: stripe.Bool(true)})
	}

	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if req.InvoiceNow {
		params.InvoiceNow = stripe.Bool(true)
	}
	if req.Prorate {
		params.Prorate = stripe.Bool(true)
	}
	sub, err := api.Subscriptions.Cancel(id, params)
	return sub, wrapError("cancel subscription", err)
}

// Resume restarts a paused subscription or withdraws a scheduled
// cancellation.
func (s *SubscriptionService) Resume(ctx context.Context, id string) (*stripe.Subscription, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case current.Status == stripe.SubscriptionStatusPaused:
		api, err := s.client.API(ctx)
		if err != nil {
			return nil, err
		}
		params := &stripe.SubscriptionResumeParams{}
		params.Context = ctx
		sub, err := api.Subscriptions.Resume(id, params)
		return sub, wrapError("resume subscription", err)
	case current.CancelAtPeriodEnd:
		return s.Update(ctx, id, &models.UpdateSubscriptionRequest{CancelAtPeriodEnd: stripe.Bool(false)})
	default:
		return nil, apperrors.NewValidationError("subscription", "subscription is neither paused nor scheduled to cancel")
	}
}

func (s *SubscriptionService) listParams(req *models.ListSubscriptionsRequest) *stripe.SubscriptionListParams {
	return &stripe.SubscriptionListParams{
		Customer: optString(req.Customer),
		Price:    optString(req.Price),
		Status:   optString(req.Status),
	}
}

func (s *SubscriptionService) List(ctx context.Context, req *models.ListSubscriptionsRequest) (*Page[*stripe.Subscription], error) {
	if req == nil {
		req = &models.ListSubscriptionsRequest{}
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
	return collectPage("list subscriptions", api.Subscriptions.List(params), func(s *stripe.Subscription) string { return s.ID })
}

func (s *SubscriptionService) ListAll(ctx context.Context, req *models.ListSubscriptionsRequest, maxItems int) ([]*stripe.Subscription, error) {
	if req == nil {
		req = &models.ListSubscriptionsRequest{}
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.Subscription]("list subscriptions", api.Subscriptions.List(params), maxItems)
}

// InvoiceService wraps the Invoices API.
type InvoiceService struct {
	client *StripeClient
}

func NewInvoiceService(c *StripeClient) *InvoiceService {
	return &InvoiceService{client: c}
}

func (s *InvoiceService) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*stripe.Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.DaysUntilDue > 0 && req.CollectionMethod != string(stripe.InvoiceCollectionMethodSendInvoice) {
		return nil, apperrors.NewValidationError("days_until_due", "days_until_due requires collection_method send_invoice")
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}

	params := &stripe.InvoiceParams{
		Customer:         stripe.String(req.Customer),
		Subscription:     optString(req.Subscription),
		CollectionMethod: optString(req.CollectionMethod),
		Description:      optString(req.Description),
		AutoAdvance:      req.AutoAdvance,
	}
	params.Context = ctx
	if req.DaysUntilDue > 0 {
		params.DaysUntilDue = stripe.Int64(req.DaysUntilDue)
	}
	metadata(req.Metadata, params.AddMetadata)

	inv, err := api.Invoices.New(params)
	return inv, wrapError("create invoice", err)
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*stripe.Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	inv, err := api.Invoices.Get(id, params)
	return inv, wrapError("get invoice", err)
}

func (s *InvoiceService) Finalize(ctx context.Context, id string) (*stripe.Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.InvoiceFinalizeInvoiceParams{}
	params.Context = ctx
	inv, err := api.Invoices.FinalizeInvoice(id, params)
	return inv, wrapError("finalize invoice", err)
}

func (s *InvoiceService) Pay(ctx context.Context, id string) (*stripe.Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.InvoicePayParams{}
	params.Context = ctx
	inv, err := api.Invoices.Pay(id, params)
	return inv, wrapError("pay invoice", err)
}

func (s *InvoiceService) Send(ctx context.Context, id string) (*stripe.Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.InvoiceSendInvoiceParams{}
	params.Context = ctx
	inv, err := api.Invoices.SendInvoice(id, params)
	return inv, wrapError("send invoice", err)
}

func (s *InvoiceService) Void(ctx context.Context, id string) (*stripe.Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.InvoiceVoidInvoiceParams{}
	params.Context = ctx
	inv, err := api.Invoices.VoidInvoice(id, params)
	return inv, wrapError("void invoice", err)
}

// Delete removes a draft invoice.
func (s *InvoiceService) Delete(ctx context.Context, id string) (*stripe.Invoice, error) {
	if err := requireID("invoice", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	inv, err := api.Invoices.Del(id, params)
	return inv, wrapError("delete invoice", err)
}

func (s *InvoiceService) listParams(req *models.ListInvoicesRequest) *stripe.InvoiceListParams {
	return &stripe.InvoiceListParams{
		Customer:     optString(req.Customer),
		Subscription: optString(req.Subscription),
		Status:       optString(req.Status),
	}
}

func (s *InvoiceService) List(ctx context.Context, req *models.ListInvoicesRequest) (*Page[*stripe.Invoice], error) {
	if req == nil {
		req = &models.ListInvoicesRequest{}
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
	return collectPage("list invoices", api.Invoices.List(params), func(i *stripe.Invoice) string { return i.ID })
}

func (s *InvoiceService) ListAll(ctx context.Context, req *models.ListInvoicesRequest, maxItems int) ([]*stripe.Invoice, error) {
	if req == nil {
		req = &models.ListInvoicesRequest{}
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.Invoice]("list invoices", api.Invoices.List(params), maxItems)
}

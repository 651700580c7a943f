package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

type BalanceTransactionService struct {
	client *StripeClient
}

func NewBalanceTransactionService(c *StripeClient) *BalanceTransactionService {
	return &BalanceTransactionService{client: c}
}

func (s *BalanceTransactionService) Get(ctx context.Context, id string) (*stripe.BalanceTransaction, error) {
	if err := requireID("balance_transaction", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.BalanceTransactionParams{}
	params.Context = ctx
	bt, err := api.BalanceTransactions.Get(id, params)
	return bt, wrapError("get balance transaction", err)
}

func (s *BalanceTransactionService) listParams(req *models.ListBalanceTransactionsRequest) *stripe.BalanceTransactionListParams {
	params := &stripe.BalanceTransactionListParams{
		Type:   optString(req.Type),
		Payout: optString(req.Payout),
		Source: optString(req.Source),
	}
	if req.Currency != "" {
		params.Currency = stripe.String(normalizeCurrency(req.Currency))
	}
	return params
}

func (s *BalanceTransactionService) List(ctx context.Context, req *models.ListBalanceTransactionsRequest) (*Page[*stripe.BalanceTransaction], error) {
	if req == nil {
		req = &models.ListBalanceTransactionsRequest{}
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
	return collectPage("list balance transactions", api.BalanceTransactions.List(params),
		func(bt *stripe.BalanceTransaction) string { return bt.ID })
}

func (s *BalanceTransactionService) ListAll(ctx context.Context, req *models.ListBalanceTransactionsRequest, maxItems int) ([]*stripe.BalanceTransaction, error) {
	if req == nil {
		req = &models.ListBalanceTransactionsRequest{}
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := s.listParams(req)
	allParams(ctx, &params.ListParams)
	return collectAll[*stripe.BalanceTransaction]("list balance transactions", api.BalanceTransactions.List(params), maxItems)
}

// EventService reads events back from Stripe. The admin reprocess endpoint
// uses it to fetch an event by ID.
type EventService struct {
	client *StripeClient
}

func NewEventService(c *StripeClient) *EventService {
	return &EventService{client: c}
}

func (s *EventService) Get(ctx context.Context, id string) (*stripe.Event, error) {
	if err := requireID("event", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EventParams{}
	params.Context = ctx
	evt, err := api.Events.Get(id, params)
	return evt, wrapError("get event", err)
}

// List filters by a single type (wildcards such as "invoice.*" allowed) or
// by up to 20 types.
func (s *EventService) List(ctx context.Context, req *models.ListEventsRequest) (*Page[*stripe.Event], error) {
	if req == nil {
		req = &models.ListEventsRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.EventListParams{Type: optString(req.Type)}
	if len(req.Types) > 0 {
		params.Types = stripe.StringSlice(req.Types)
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list events", api.Events.List(params), func(e *stripe.Event) string { return e.ID })
}

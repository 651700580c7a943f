package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

// RadarService covers early fraud warnings and the value lists used by
// Radar rules.
type RadarService struct {
	client *StripeClient
}

func NewRadarService(c *StripeClient) *RadarService {
	return &RadarService{client: c}
}

func (s *RadarService) GetEarlyFraudWarning(ctx context.Context, id string) (*stripe.RadarEarlyFraudWarning, error) {
	if err := requireID("early_fraud_warning", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RadarEarlyFraudWarningParams{}
	params.Context = ctx
	w, err := api.RadarEarlyFraudWarnings.Get(id, params)
	return w, wrapError("get early fraud warning", err)
}

func (s *RadarService) ListEarlyFraudWarnings(ctx context.Context, req *models.ListEarlyFraudWarningsRequest) (*Page[*stripe.RadarEarlyFraudWarning], error) {
	if req == nil {
		req = &models.ListEarlyFraudWarningsRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RadarEarlyFraudWarningListParams{
		Charge:        optString(req.Charge),
		PaymentIntent: optString(req.PaymentIntent),
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list early fraud warnings", api.RadarEarlyFraudWarnings.List(params),
		func(w *stripe.RadarEarlyFraudWarning) string { return w.ID })
}

func (s *RadarService) CreateValueList(ctx context.Context, req *models.CreateValueListRequest) (*stripe.RadarValueList, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RadarValueListParams{
		Alias:    stripe.String(req.Alias),
		Name:     stripe.String(req.Name),
		ItemType: optString(req.ItemType),
	}
	params.Context = ctx
	vl, err := api.RadarValueLists.New(params)
	return vl, wrapError("create value list", err)
}

func (s *RadarService) DeleteValueList(ctx context.Context, id string) (*stripe.RadarValueList, error) {
	if err := requireID("value_list", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RadarValueListParams{}
	params.Context = ctx
	vl, err := api.RadarValueLists.Del(id, params)
	return vl, wrapError("delete value list", err)
}

// AddValueListItem appends value to the list, e.g. an email to block.
func (s *RadarService) AddValueListItem(ctx context.Context, valueList, value string) (*stripe.RadarValueListItem, error) {
	if err := requireID("value_list", valueList); err != nil {
		return nil, err
	}
	if err := requireID("value", value); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RadarValueListItemParams{
		ValueList: stripe.String(valueList),
		Value:     stripe.String(value),
	}
	params.Context = ctx
	item, err := api.RadarValueListItems.New(params)
	return item, wrapError("add value list item", err)
}

func (s *RadarService) RemoveValueListItem(ctx context.Context, id string) (*stripe.RadarValueListItem, error) {
	if err := requireID("value_list_item", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RadarValueListItemParams{}
	params.Context = ctx
	item, err := api.RadarValueListItems.Del(id, params)
	return item, wrapError("remove value list item", err)
}

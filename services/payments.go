package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

// RefundService wraps the Refunds API.
type RefundService struct {
	client *StripeClient
}

func NewRefundService(c *StripeClient) *RefundService {
	return &RefundService{client: c}
}

// Create refunds a payment intent or charge; a zero amount refunds in full.
func (s *RefundService) Create(ctx context.Context, req *models.CreateRefundRequest) (*stripe.Refund, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RefundParams{
		PaymentIntent: optString(req.PaymentIntent),
		Charge:        optString(req.Charge),
		Reason:        optString(req.Reason),
	}
	params.Context = ctx
	if req.Amount > 0 {
		params.Amount = stripe.Int64(req.Amount)
	}
	metadata(req.Metadata, params.AddMetadata)

	r, err := api.Refunds.New(params)
	return r, wrapError("create refund", err)
}

func (s *RefundService) Get(ctx context.Context, id string) (*stripe.Refund, error) {
	if err := requireID("refund", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RefundParams{}
	params.Context = ctx
	r, err := api.Refunds.Get(id, params)
	return r, wrapError("get refund", err)
}

// Cancel cancels a refund still in requires_action.
func (s *RefundService) Cancel(ctx context.Context, id string) (*stripe.Refund, error) {
	if err := requireID("refund", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RefundCancelParams{}
	params.Context = ctx
	r, err := api.Refunds.Cancel(id, params)
	return r, wrapError("cancel refund", err)
}

func (s *RefundService) List(ctx context.Context, req *models.ListRefundsRequest) (*Page[*stripe.Refund], error) {
	if req == nil {
		req = &models.ListRefundsRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.RefundListParams{
		PaymentIntent: optString(req.PaymentIntent),
		Charge:        optString(req.Charge),
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list refunds", api.Refunds.List(params), func(r *stripe.Refund) string { return r.ID })
}

// DisputeService wraps the Disputes API.
type DisputeService struct {
	client *StripeClient
}

func NewDisputeService(c *StripeClient) *DisputeService {
	return &DisputeService{client: c}
}

func (s *DisputeService) Get(ctx context.Context, id string) (*stripe.Dispute, error) {
	if err := requireID("dispute", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.DisputeParams{}
	params.Context = ctx
	d, err := api.Disputes.Get(id, params)
	return d, wrapError("get dispute", err)
}

// SubmitEvidence stages evidence on a dispute, submitting it to the bank
// when req.Submit is set.
func (s *DisputeService) SubmitEvidence(ctx context.Context, id string, req *models.DisputeEvidenceRequest) (*stripe.Dispute, error) {
	if err := requireID("dispute", id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.DisputeParams{
		Evidence: &stripe.DisputeEvidenceParams{
			ProductDescription:     optString(req.ProductDescription),
			CustomerName:           optString(req.CustomerName),
			CustomerEmailAddress:   optString(req.CustomerEmailAddress),
			ShippingCarrier:        optString(req.ShippingCarrier),
			ShippingTrackingNumber: optString(req.ShippingTrackingNumber),
			RefundPolicyDisclosure: optString(req.RefundPolicyDisclosure),
			UncategorizedText:      optString(req.UncategorizedText),
		},
		Submit: stripe.Bool(req.Submit),
	}
	params.Context = ctx
	d, err := api.Disputes.Update(id, params)
	return d, wrapError("submit dispute evidence", err)
}

// Close accepts the dispute as lost.
func (s *DisputeService) Close(ctx context.Context, id string) (*stripe.Dispute, error) {
	if err := requireID("dispute", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.DisputeParams{}
	params.Context = ctx
	d, err := api.Disputes.Close(id, params)
	return d, wrapError("close dispute", err)
}

func (s *DisputeService) List(ctx context.Context, req *models.ListDisputesRequest) (*Page[*stripe.Dispute], error) {
	if req == nil {
		req = &models.ListDisputesRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.DisputeListParams{
		PaymentIntent: optString(req.PaymentIntent),
		Charge:        optString(req.Charge),
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list disputes", api.Disputes.List(params), func(d *stripe.Dispute) string { return d.ID })
}

// TransferService wraps the Transfers API for Connect payouts.
type TransferService struct {
	client *StripeClient
}

func NewTransferService(c *StripeClient) *TransferService {
	return &TransferService{client: c}
}

func (s *TransferService) Create(ctx context.Context, req *models.CreateTransferRequest) (*stripe.Transfer, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TransferParams{
		Amount:            stripe.Int64(req.Amount),
		Currency:          stripe.String(normalizeCurrency(req.Currency)),
		Destination:       stripe.String(req.Destination),
		Description:       optString(req.Description),
		TransferGroup:     optString(req.TransferGroup),
		SourceTransaction: optString(req.SourceTransaction),
	}
	params.Context = ctx
	metadata(req.Metadata, params.AddMetadata)

	t, err := api.Transfers.New(params)
	return t, wrapError("create transfer", err)
}

func (s *TransferService) Get(ctx context.Context, id string) (*stripe.Transfer, error) {
	if err := requireID("transfer", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TransferParams{}
	params.Context = ctx
	t, err := api.Transfers.Get(id, params)
	return t, wrapError("get transfer", err)
}

func (s *TransferService) List(ctx context.Context, req *models.ListTransfersRequest) (*Page[*stripe.Transfer], error) {
	if req == nil {
		req = &models.ListTransfersRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.TransferListParams{
		Destination:   optString(req.Destination),
		TransferGroup: optString(req.TransferGroup),
	}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list transfers", api.Transfers.List(params), func(t *stripe.Transfer) string { return t.ID })
}

// PaymentLinkService wraps the Payment Links API.
type PaymentLinkService struct {
	client *StripeClient
}

func NewPaymentLinkService(c *StripeClient) *PaymentLinkService {
	return &PaymentLinkService{client: c}
}

func (s *PaymentLinkService) Create(ctx context.Context, req *models.CreatePaymentLinkRequest) (*stripe.PaymentLink, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentLinkParams{}
	params.Context = ctx
	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.PaymentLinkLineItemParams{
			Price:    stripe.String(li.Price),
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	if req.AllowPromotionCodes {
		params.AllowPromotionCodes = stripe.Bool(true)
	}
	if req.RedirectURL != "" {
		params.AfterCompletion = &stripe.PaymentLinkAfterCompletionParams{
			Type:     stripe.String(string(stripe.PaymentLinkAfterCompletionTypeRedirect)),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{URL: stripe.String(req.RedirectURL)},
		}
	}
	metadata(req.Metadata, params.AddMetadata)

	pl, err := api.PaymentLinks.New(params)
	return pl, wrapError("create payment link", err)
}

func (s *PaymentLinkService) Get(ctx context.Context, id string) (*stripe.PaymentLink, error) {
	if err := requireID("payment_link", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentLinkParams{}
	params.Context = ctx
	pl, err := api.PaymentLinks.Get(id, params)
	return pl, wrapError("get payment link", err)
}

// Deactivate stops a link from accepting new payments.
func (s *PaymentLinkService) Deactivate(ctx context.Context, id string) (*stripe.PaymentLink, error) {
	if err := requireID("payment_link", id); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentLinkParams{Active: stripe.Bool(false)}
	params.Context = ctx
	pl, err := api.PaymentLinks.Update(id, params)
	return pl, wrapError("deactivate payment link", err)
}

func (s *PaymentLinkService) List(ctx context.Context, req *models.ListPaymentLinksRequest) (*Page[*stripe.PaymentLink], error) {
	if req == nil {
		req = &models.ListPaymentLinksRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	api, err := s.client.API(ctx)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentLinkListParams{Active: req.Active}
	pageParams(ctx, &params.ListParams, req.ListRequest)
	return collectPage("list payment links", api.PaymentLinks.List(params), func(pl *stripe.PaymentLink) string { return pl.ID })
}

package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/models"
	"github.com/yashrajoria/stripe-bridge/services"
)

func TestDisputeService_SubmitEvidence(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/disputes/dp_1", http.StatusOK, map[string]interface{}{"id": "dp_1", "object": "dispute", "status": "under_review"})
	svc := services.NewDisputeService(c)

	_, err := svc.SubmitEvidence(context.Background(), "dp_1", &models.DisputeEvidenceRequest{CustomerEmailAddress: "not-an-email"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())

	d, err := svc.SubmitEvidence(context.Background(), "dp_1", &models.DisputeEvidenceRequest{
		CustomerName:           "Ada Lovelace",
		CustomerEmailAddress:   "ada@example.com",
		ShippingTrackingNumber: "1Z999",
		Submit:                 true,
	})
	require.NoError(t, err)
	assert.Equal(t, stripe.DisputeStatusUnderReview, d.Status)

	form := fake.last().Form
	assert.Equal(t, "Ada Lovelace", form["evidence[customer_name]"][0])
	assert.Equal(t, "ada@example.com", form["evidence[customer_email_address]"][0])
	assert.Equal(t, "1Z999", form["evidence[shipping_tracking_number]"][0])
	assert.Equal(t, "true", form["submit"][0])
	assert.NotContains(t, form, "evidence[product_description]")
}

func TestDisputeService_CloseAndList(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/disputes/dp_1/close", http.StatusOK, map[string]interface{}{"id": "dp_1", "object": "dispute", "status": "lost"})
	fake.handle("GET /v1/disputes", http.StatusOK, list("/v1/disputes", false,
		map[string]interface{}{"id": "dp_1", "object": "dispute"},
	))
	svc := services.NewDisputeService(c)

	d, err := svc.Close(context.Background(), "dp_1")
	require.NoError(t, err)
	assert.Equal(t, stripe.DisputeStatusLost, d.Status)

	page, err := svc.List(context.Background(), &models.ListDisputesRequest{PaymentIntent: "pi_1"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "pi_1", fake.last().Query["payment_intent"][0])
}

func TestTransferService_CreateAndList(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/transfers", http.StatusOK, map[string]interface{}{"id": "tr_1", "object": "transfer", "amount": 2500})
	fake.handle("GET /v1/transfers", http.StatusOK, list("/v1/transfers", false,
		map[string]interface{}{"id": "tr_1", "object": "transfer"},
	))
	svc := services.NewTransferService(c)

	_, err := svc.Create(context.Background(), &models.CreateTransferRequest{Amount: 2500, Currency: "USD"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())

	tr, err := svc.Create(context.Background(), &models.CreateTransferRequest{
		Amount:        2500,
		Currency:      "USD",
		Destination:   "acct_1",
		TransferGroup: "order_42",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), tr.Amount)

	form := fake.last().Form
	assert.Equal(t, "2500", form["amount"][0])
	assert.Equal(t, "usd", form["currency"][0])
	assert.Equal(t, "acct_1", form["destination"][0])
	assert.Equal(t, "order_42", form["transfer_group"][0])

	page, err := svc.List(context.Background(), &models.ListTransfersRequest{Destination: "acct_1"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "acct_1", fake.last().Query["destination"][0])
}

func TestPaymentLinkService_CreateDeactivateList(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/payment_links", http.StatusOK, map[string]interface{}{"id": "plink_1", "object": "payment_link", "active": true})
	fake.handle("POST /v1/payment_links/plink_1", http.StatusOK, map[string]interface{}{"id": "plink_1", "object": "payment_link", "active": false})
	fake.handle("GET /v1/payment_links", http.StatusOK, list("/v1/payment_links", false))
	svc := services.NewPaymentLinkService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.CreatePaymentLinkRequest{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())

	pl, err := svc.Create(ctx, &models.CreatePaymentLinkRequest{
		LineItems:           []models.LineItem{{Price: "price_1", Quantity: 1}},
		AllowPromotionCodes: true,
		RedirectURL:         "https://shop.example.com/thanks",
	})
	require.NoError(t, err)
	assert.True(t, pl.Active)

	form := fake.last().Form
	assert.Equal(t, "price_1", form["line_items[0][price]"][0])
	assert.Equal(t, "true", form["allow_promotion_codes"][0])
	assert.Equal(t, "redirect", form["after_completion[type]"][0])
	assert.Equal(t, "https://shop.example.com/thanks", form["after_completion[redirect][url]"][0])

	pl, err = svc.Deactivate(ctx, "plink_1")
	require.NoError(t, err)
	assert.False(t, pl.Active)
	assert.Equal(t, "false", fake.last().Form["active"][0])

	_, err = svc.List(ctx, &models.ListPaymentLinksRequest{Active: stripe.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, "true", fake.last().Query["active"][0])
}

func TestRadarService_ValueLists(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/radar/value_lists", http.StatusOK, map[string]interface{}{"id": "rsl_1", "object": "radar.value_list", "alias": "blocked_emails"})
	fake.handle("POST /v1/radar/value_list_items", http.StatusOK, map[string]interface{}{"id": "rsli_1", "object": "radar.value_list_item", "value": "fraud@example.com"})
	fake.handle("DELETE /v1/radar/value_list_items/rsli_1", http.StatusOK, map[string]interface{}{"id": "rsli_1", "object": "radar.value_list_item", "deleted": true})
	svc := services.NewRadarService(c)
	ctx := context.Background()

	_, err := svc.CreateValueList(ctx, &models.CreateValueListRequest{Alias: "blocked_emails", Name: "Blocked", ItemType: "phone"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	vl, err := svc.CreateValueList(ctx, &models.CreateValueListRequest{Alias: "blocked_emails", Name: "Blocked", ItemType: "email"})
	require.NoError(t, err)
	assert.Equal(t, "blocked_emails", vl.Alias)
	form := fake.last().Form
	assert.Equal(t, "blocked_emails", form["alias"][0])
	assert.Equal(t, "email", form["item_type"][0])

	_, err = svc.AddValueListItem(ctx, "rsl_1", " ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	item, err := svc.AddValueListItem(ctx, "rsl_1", "fraud@example.com")
	require.NoError(t, err)
	assert.Equal(t, "fraud@example.com", item.Value)
	form = fake.last().Form
	assert.Equal(t, "rsl_1", form["value_list"][0])
	assert.Equal(t, "fraud@example.com", form["value"][0])

	item, err = svc.RemoveValueListItem(ctx, "rsli_1")
	require.NoError(t, err)
	assert.True(t, item.Deleted)
}

func TestRadarService_ListEarlyFraudWarnings(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("GET /v1/radar/early_fraud_warnings", http.StatusOK, list("/v1/radar/early_fraud_warnings", true,
		map[string]interface{}{"id": "issfr_1", "object": "radar.early_fraud_warning", "actionable": true},
	))

	page, err := services.NewRadarService(c).ListEarlyFraudWarnings(context.Background(), &models.ListEarlyFraudWarningsRequest{
		Charge:      "ch_1",
		ListRequest: models.ListRequest{Limit: 5},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].Actionable)
	assert.Equal(t, "issfr_1", page.NextCursor)

	query := fake.last().Query
	assert.Equal(t, "ch_1", query["charge"][0])
	assert.Equal(t, "5", query["limit"][0])
}

func TestShippingRateService_CreateAndList(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/shipping_rates", http.StatusOK, map[string]interface{}{"id": "shr_1", "object": "shipping_rate", "type": "fixed_amount"})
	fake.handle("POST /v1/shipping_rates/shr_1", http.StatusOK, map[string]interface{}{"id": "shr_1", "object": "shipping_rate", "active": false})
	fake.handle("GET /v1/shipping_rates", http.StatusOK, list("/v1/shipping_rates", false))
	svc := services.NewShippingRateService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.CreateShippingRateRequest{
		DisplayName: "Ground",
		Amount:      599,
		Currency:    "EUR",
		TaxBehavior: "exclusive",
	})
	require.NoError(t, err)
	form := fake.last().Form
	assert.Equal(t, "Ground", form["display_name"][0])
	assert.Equal(t, "fixed_amount", form["type"][0])
	assert.Equal(t, "599", form["fixed_amount[amount]"][0])
	assert.Equal(t, "eur", form["fixed_amount[currency]"][0])
	assert.Equal(t, "exclusive", form["tax_behavior"][0])

	sr, err := svc.Archive(ctx, "shr_1")
	require.NoError(t, err)
	assert.False(t, sr.Active)

	_, err = svc.List(ctx, &models.ListShippingRatesRequest{Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "eur", fake.last().Query["currency"][0])
}

func TestFeatureService_CreateArchiveList(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/entitlements/features", http.StatusOK, map[string]interface{}{"id": "feat_1", "object": "entitlements.feature", "lookup_key": "api_access", "active": true})
	fake.handle("POST /v1/entitlements/features/feat_1", http.StatusOK, map[string]interface{}{"id": "feat_1", "object": "entitlements.feature", "active": false})
	fake.handle("GET /v1/entitlements/features", http.StatusOK, list("/v1/entitlements/features", false,
		map[string]interface{}{"id": "feat_1", "object": "entitlements.feature", "lookup_key": "api_access"},
	))
	svc := services.NewFeatureService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.CreateFeatureRequest{Name: "API access"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())

	f, err := svc.Create(ctx, &models.CreateFeatureRequest{Name: "API access", LookupKey: "api_access"})
	require.NoError(t, err)
	assert.Equal(t, "api_access", f.LookupKey)
	form := fake.last().Form
	assert.Equal(t, "API access", form["name"][0])
	assert.Equal(t, "api_access", form["lookup_key"][0])

	f, err = svc.Archive(ctx, "feat_1")
	require.NoError(t, err)
	assert.False(t, f.Active)
	assert.Equal(t, "false", fake.last().Form["active"][0])

	page, err := svc.List(ctx, &models.ListFeaturesRequest{LookupKey: "api_access"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "api_access", fake.last().Query["lookup_key"][0])
}

func TestBalanceTransactionService_ListAndListAll(t *testing.T) {
	c, fake := newClient(t)
	fake.routes["GET /v1/balance_transactions"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("starting_after") == "" {
			_, _ = w.Write([]byte(`{"object":"list","url":"/v1/balance_transactions","has_more":true,"data":[{"id":"txn_1","object":"balance_transaction","amount":1000}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","url":"/v1/balance_transactions","has_more":false,"data":[{"id":"txn_2","object":"balance_transaction","amount":-30}]}`))
	}
	fake.handle("GET /v1/balance_transactions/txn_1", http.StatusOK, map[string]interface{}{"id": "txn_1", "object": "balance_transaction", "amount": 1000})
	svc := services.NewBalanceTransactionService(c)
	ctx := context.Background()

	page, err := svc.List(ctx, &models.ListBalanceTransactionsRequest{Type: "charge", Currency: "USD"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.HasMore)
	query := fake.last().Query
	assert.Equal(t, "charge", query["type"][0])
	assert.Equal(t, "usd", query["currency"][0])

	all, err := svc.ListAll(ctx, &models.ListBalanceTransactionsRequest{Payout: "po_1"}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(-30), all[1].Amount)
	assert.Equal(t, "po_1", fake.last().Query["payout"][0])
	assert.Equal(t, "txn_1", fake.last().Query["starting_after"][0])

	bt, err := svc.Get(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bt.Amount)
}

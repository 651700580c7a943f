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

func TestProductService_Create(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/products", http.StatusOK, map[string]interface{}{"id": "prod_1", "object": "product", "name": "Mug"})

	p, err := services.NewProductService(c, nil).Create(context.Background(), &models.CreateProductRequest{
		Name:     "Mug",
		Images:   []string{"https://cdn.example.com/mug.png"},
		Metadata: map[string]string{"sku": "MUG-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "prod_1", p.ID)

	req := fake.last()
	assert.Equal(t, "Mug", req.Form["name"][0])
	assert.Equal(t, "https://cdn.example.com/mug.png", req.Form["images[0]"][0])
	assert.Equal(t, "MUG-1", req.Form["metadata[sku]"][0])
}

func TestProductService_CreateValidatesBeforeCalling(t *testing.T) {
	c, fake := newClient(t)

	_, err := services.NewProductService(c, nil).Create(context.Background(), &models.CreateProductRequest{})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "name", appErr.Reason)
	assert.Empty(t, fake.calls())
}

func TestProductService_S3ImageWithoutPresigner(t *testing.T) {
	c, fake := newClient(t)

	_, err := services.NewProductService(c, nil).Create(context.Background(), &models.CreateProductRequest{
		Name:   "Mug",
		Images: []string{"s3://media/mug.png"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
	assert.Empty(t, fake.calls())
}

func TestProductService_ListPage(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("GET /v1/products", http.StatusOK, list("/v1/products", true,
		map[string]interface{}{"id": "prod_1", "object": "product"},
		map[string]interface{}{"id": "prod_2", "object": "product"},
	))

	page, err := services.NewProductService(c, nil).List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "prod_2", page.NextCursor)
	assert.Equal(t, "10", fake.last().Query["limit"][0])
}

func TestProductService_ListRejectsOversizedLimit(t *testing.T) {
	c, _ := newClient(t)
	_, err := services.NewProductService(c, nil).List(context.Background(), &models.ListProductsRequest{
		ListRequest: models.ListRequest{Limit: 101},
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCustomerService_ListAllWalksPages(t *testing.T) {
	c, fake := newClient(t)
	fake.routes["GET /v1/customers"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("starting_after") == "" {
			_, _ = w.Write([]byte(`{"object":"list","url":"/v1/customers","has_more":true,"data":[{"id":"cus_1","object":"customer"},{"id":"cus_2","object":"customer"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","url":"/v1/customers","has_more":false,"data":[{"id":"cus_3","object":"customer"}]}`))
	}
	svc := services.NewCustomerService(c)

	all, err := svc.ListAll(context.Background(), nil, 0)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, cus := range all {
		ids = append(ids, cus.ID)
	}
	assert.Equal(t, []string{"cus_1", "cus_2", "cus_3"}, ids)
	assert.Equal(t, "cus_2", fake.last().Query["starting_after"][0])

	capped, err := svc.ListAll(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestPriceService_GetByLookupKey(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("GET /v1/prices", http.StatusOK, list("/v1/prices", false))

	_, err := services.NewPriceService(c).GetByLookupKey(context.Background(), "pro_monthly")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "pro_monthly", fake.last().Query["lookup_keys[0]"][0])
}

func TestPriceService_CreateRecurring(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/prices", http.StatusOK, map[string]interface{}{"id": "price_1", "object": "price"})

	_, err := services.NewPriceService(c).Create(context.Background(), &models.CreatePriceRequest{
		Product:    "prod_1",
		Currency:   "USD",
		UnitAmount: 1500,
		Interval:   "month",
	})
	require.NoError(t, err)
	form := fake.last().Form
	assert.Equal(t, "usd", form["currency"][0])
	assert.Equal(t, "month", form["recurring[interval]"][0])
	assert.Equal(t, "1500", form["unit_amount"][0])
}

func TestCheckoutService_CreateRules(t *testing.T) {
	c, fake := newClient(t)
	svc := services.NewCheckoutService(c)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.CreateCheckoutSessionRequest{Mode: "payment", SuccessURL: "https://shop.example.com/ok"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Create(ctx, &models.CreateCheckoutSessionRequest{Mode: "setup", SuccessURL: "https://shop.example.com/ok"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Create(ctx, &models.CreateCheckoutSessionRequest{Mode: "refund", SuccessURL: "https://shop.example.com/ok"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())

	fake.handle("POST /v1/checkout/sessions", http.StatusOK, map[string]interface{}{"id": "cs_1", "object": "checkout.session", "url": "https://checkout.stripe.com/c/pay/cs_1"})
	sess, err := svc.Create(ctx, &models.CreateCheckoutSessionRequest{
		Mode:       "payment",
		SuccessURL: "https://shop.example.com/ok",
		LineItems:  []models.LineItem{{Price: "price_1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.ID)
	assert.Equal(t, "2", fake.last().Form["line_items[0][quantity]"][0])
}

func TestSubscriptionService_CancelAtPeriodEnd(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/subscriptions/sub_1", http.StatusOK, map[string]interface{}{"id": "sub_1", "object": "subscription", "cancel_at_period_end": true})

	sub, err := services.NewSubscriptionService(c).Cancel(context.Background(), "sub_1", &models.CancelSubscriptionRequest{AtPeriodEnd: true})
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, "true", fake.last().Form["cancel_at_period_end"][0])
}

func TestSubscriptionService_CancelNow(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("DELETE /v1/subscriptions/sub_1", http.StatusOK, map[string]interface{}{"id": "sub_1", "object": "subscription", "status": "canceled"})

	sub, err := services.NewSubscriptionService(c).Cancel(context.Background(), "sub_1", nil)
	require.NoError(t, err)
	assert.Equal(t, stripe.SubscriptionStatusCanceled, sub.Status)
}

func TestRefundService_RequiresPaymentReference(t *testing.T) {
	c, fake := newClient(t)
	_, err := services.NewRefundService(c).Create(context.Background(), &models.CreateRefundRequest{Amount: 500})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())

	_, err = services.NewRefundService(c).Create(context.Background(), &models.CreateRefundRequest{PaymentIntent: "pi_1", Reason: "because"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestRefundService_PartialRefund(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("POST /v1/refunds", http.StatusOK, map[string]interface{}{"id": "re_1", "object": "refund", "amount": 500})

	r, err := services.NewRefundService(c).Create(context.Background(), &models.CreateRefundRequest{PaymentIntent: "pi_1", Amount: 500, Reason: "requested_by_customer"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), r.Amount)
	form := fake.last().Form
	assert.Equal(t, "pi_1", form["payment_intent"][0])
	assert.Equal(t, "500", form["amount"][0])
	assert.Equal(t, "requested_by_customer", form["reason"][0])
}

func TestTaxRateService_PercentageRange(t *testing.T) {
	c, _ := newClient(t)
	_, err := services.NewTaxRateService(c).Create(context.Background(), &models.CreateTaxRateRequest{DisplayName: "VAT", Percentage: 120})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestEntitlementService_HasFeature(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("GET /v1/entitlements/active_entitlements", http.StatusOK, list("/v1/entitlements/active_entitlements", false,
		map[string]interface{}{"id": "ent_1", "object": "entitlements.active_entitlement", "lookup_key": "api_access"},
	))
	svc := services.NewEntitlementService(c)

	ok, err := svc.HasFeature(context.Background(), "cus_1", "api_access")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cus_1", fake.last().Query["customer"][0])

	ok, err = svc.HasFeature(context.Background(), "cus_1", "sso")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.HasFeature(context.Background(), "", "sso")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestEventService_GetAndListByType(t *testing.T) {
	c, fake := newClient(t)
	fake.handle("GET /v1/events/evt_1", http.StatusOK, map[string]interface{}{"id": "evt_1", "object": "event", "type": "invoice.paid"})
	fake.handle("GET /v1/events", http.StatusOK, list("/v1/events", false))
	svc := services.NewEventService(c)

	evt, err := svc.Get(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, stripe.EventType("invoice.paid"), evt.Type)

	_, err = svc.List(context.Background(), &models.ListEventsRequest{Type: "invoice.*"})
	require.NoError(t, err)
	assert.Equal(t, "invoice.*", fake.last().Query["type"][0])
}

func TestRequireIDRejectsBlank(t *testing.T) {
	c, fake := newClient(t)
	_, err := services.NewInvoiceService(c).Finalize(context.Background(), "  ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, fake.calls())
}

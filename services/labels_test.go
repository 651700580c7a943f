package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yashrajoria/stripe-bridge/services"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Past due", services.Label(services.SubscriptionStatusLabels, "past_due"))
	assert.Equal(t, "Uncollectible", services.Label(services.InvoiceStatusLabels, "uncollectible"))
	assert.Equal(t, "Requires capture", services.Label(services.PaymentIntentStatusLabels, "requires_capture"))
	assert.Equal(t, "Needs response", services.Label(services.DisputeStatusLabels, "needs_response"))
	assert.Equal(t, "Brand new state", services.Label(services.RefundStatusLabels, "brand_new_state"))
	assert.Equal(t, "", services.Label(services.RefundStatusLabels, ""))
}

func TestZeroDecimalAmounts(t *testing.T) {
	assert.True(t, services.IsZeroDecimal("JPY"))
	assert.True(t, services.IsZeroDecimal(" krw "))
	assert.False(t, services.IsZeroDecimal("usd"))

	assert.Equal(t, int64(1234), services.ToMinorUnits(12.34, "usd"))
	assert.Equal(t, int64(500), services.ToMinorUnits(500, "jpy"))
	assert.Equal(t, int64(-1999), services.ToMinorUnits(-19.99, "eur"))
	assert.Equal(t, int64(1234), services.ToMinorUnits(12.34, "USD"))
	assert.Equal(t, 12.34, services.FromMinorUnits(1234, "usd"))
	assert.Equal(t, float64(500), services.FromMinorUnits(500, "jpy"))
}

func TestToMinorUnits_RoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     int64
	}{
		{1.005, "usd", 101},
		{0.285, "usd", 29},
		{2.675, "usd", 268},
		{1.004, "usd", 100},
		{-1.005, "usd", -101},
		{19.999, "eur", 2000},
		{0.1, "usd", 10},
		{12.5, "jpy", 13},
		{12.4, "jpy", 12},
		{0, "usd", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, services.ToMinorUnits(tt.amount, tt.currency), "%v %s", tt.amount, tt.currency)
	}
}

func TestDashboardURL(t *testing.T) {
	assert.Equal(t, "https://dashboard.stripe.com/test/payments/pi_1", services.DashboardURL(false, "payments", "pi_1"))
	assert.Equal(t, "https://dashboard.stripe.com/subscriptions/sub_1", services.DashboardURL(true, "/subscriptions/", "sub_1"))
	assert.Equal(t, "https://dashboard.stripe.com/test/customers", services.DashboardURL(false, "customers", ""))
}

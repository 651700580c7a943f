package services

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// Human-readable labels for Stripe status enums, for dashboards and emails.
var (
	SubscriptionStatusLabels = map[string]string{
		"incomplete":         "Incomplete",
		"incomplete_expired": "Incomplete (expired)",
		"trialing":           "Trialing",
		"active":             "Active",
		"past_due":           "Past due",
		"canceled":           "Canceled",
		"unpaid":             "Unpaid",
		"paused":             "Paused",
	}

	InvoiceStatusLabels = map[string]string{
		"draft":         "Draft",
		"open":          "Open",
		"paid":          "Paid",
		"uncollectible": "Uncollectible",
		"void":          "Void",
	}

	PaymentIntentStatusLabels = map[string]string{
		"requires_payment_method": "Requires payment method",
		"requires_confirmation":   "Requires confirmation",
		"requires_action":         "Requires action",
		"processing":              "Processing",
		"requires_capture":        "Requires capture",
		"canceled":                "Canceled",
		"succeeded":               "Succeeded",
	}

	DisputeStatusLabels = map[string]string{
		"warning_needs_response": "Inquiry needs response",
		"warning_under_review":   "Inquiry under review",
		"warning_closed":         "Inquiry closed",
		"needs_response":         "Needs response",
		"under_review":           "Under review",
		"won":                    "Won",
		"lost":                   "Lost",
	}

	RefundStatusLabels = map[string]string{
		"pending":         "Pending",
		"requires_action": "Requires action",
		"succeeded":       "Succeeded",
		"failed":          "Failed",
		"canceled":        "Canceled",
	}
)

// Label looks status up in labels, falling back to the raw status with
// underscores replaced.
func Label(labels map[string]string, status string) string {
	if l, ok := labels[status]; ok {
		return l
	}
	if status == "" {
		return ""
	}
	s := strings.ReplaceAll(status, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// zeroDecimalCurrencies are charged in whole units: 500 JPY is ¥500, not ¥5.
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {},
	"krw": {}, "mga": {}, "pyg": {}, "rwf": {}, "ugx": {}, "vnd": {},
	"vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

func normalizeCurrency(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func IsZeroDecimal(currency string) bool {
	_, ok := zeroDecimalCurrencies[normalizeCurrency(currency)]
	return ok
}

// ToMinorUnits converts a major-unit amount (12.34 USD) to the integer
// Stripe expects (1234). It rounds half away from zero on the shortest
// decimal form of amount, so 1.005 and 2.675 both round up. Float inputs
// are lossy; pass integer minor units where precision matters.
func ToMinorUnits(amount float64, currency string) int64 {
	scale := 2
	if IsZeroDecimal(currency) {
		scale = 0
	}

	digits := strconv.FormatFloat(math.Abs(amount), 'f', -1, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	for len(frac) <= scale {
		frac += "0"
	}

	n, err := strconv.ParseInt(whole+frac[:scale], 10, 64)
	if err != nil {
		return int64(math.Round(amount * math.Pow10(scale)))
	}
	if frac[scale] >= '5' {
		n++
	}
	if amount < 0 {
		return -n
	}
	return n
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64, currency string) float64 {
	if IsZeroDecimal(currency) {
		return float64(amount)
	}
	return float64(amount) / 100
}

const dashboardBase = "https://dashboard.stripe.com"

// DashboardURL links to a resource in the Stripe dashboard. resource is the
// dashboard path segment, e.g. "customers" or "subscriptions". Test mode
// objects live under /test.
func DashboardURL(live bool, resource, id string) string {
	base := dashboardBase
	if !live {
		base += "/test"
	}
	resource = strings.Trim(resource, "/")
	if id == "" {
		return base + "/" + resource
	}
	return base + "/" + resource + "/" + id
}

// DashboardURL links to a resource in the dashboard for the client's mode.
func (s *StripeClient) DashboardURL(ctx context.Context, resource, id string) string {
	return DashboardURL(s.IsLive(ctx), resource, id)
}

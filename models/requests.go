package models

// ListRequest carries the cursor parameters shared by every list call.
// Limit defaults to 10 when zero.
type ListRequest struct {
	Limit         int64  `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	StartingAfter string `json:"starting_after,omitempty"`
	EndingBefore  string `json:"ending_before,omitempty"`
}

// LineItem is a price and quantity pair used by checkout, subscriptions and
// payment links.
type LineItem struct {
	Price    string `json:"price" validate:"required"`
	Quantity int64  `json:"quantity" validate:"min=1"`
}

// --- Products ---

type CreateProductRequest struct {
	Name        string            `json:"name" validate:"required,max=250"`
	Description string            `json:"description,omitempty"`
	Images      []string          `json:"images,omitempty" validate:"max=8"`
	Active      *bool             `json:"active,omitempty"`
	TaxCode     string            `json:"tax_code,omitempty"`
	URL         string            `json:"url,omitempty" validate:"omitempty,url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,min=1,max=250"`
	Description *string           `json:"description,omitempty"`
	Images      []string          `json:"images,omitempty" validate:"max=8"`
	Active      *bool             `json:"active,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ListProductsRequest struct {
	ListRequest
	Active *bool `json:"active,omitempty"`
}

// --- Prices ---

// CreatePriceRequest creates a one-time price, or a recurring one when
// Interval is set.
type CreatePriceRequest struct {
	Product       string            `json:"product" validate:"required"`
	Currency      string            `json:"currency" validate:"required,len=3"`
	UnitAmount    int64             `json:"unit_amount" validate:"gte=0"`
	Interval      string            `json:"interval,omitempty" validate:"omitempty,oneof=day week month year"`
	IntervalCount int64             `json:"interval_count,omitempty" validate:"omitempty,min=1"`
	LookupKey     string            `json:"lookup_key,omitempty" validate:"max=200"`
	Nickname      string            `json:"nickname,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type UpdatePriceRequest struct {
	Active    *bool             `json:"active,omitempty"`
	Nickname  *string           `json:"nickname,omitempty"`
	LookupKey *string           `json:"lookup_key,omitempty" validate:"omitempty,max=200"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type ListPricesRequest struct {
	ListRequest
	Product string `json:"product,omitempty"`
	Active  *bool  `json:"active,omitempty"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=one_time recurring"`
}

// --- Customers ---

type CreateCustomerRequest struct {
	Email       string            `json:"email,omitempty" validate:"omitempty,email"`
	Name        string            `json:"name,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type UpdateCustomerRequest struct {
	Email       *string           `json:"email,omitempty" validate:"omitempty,email"`
	Name        *string           `json:"name,omitempty"`
	Phone       *string           `json:"phone,omitempty"`
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ListCustomersRequest struct {
	ListRequest
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// --- Checkout sessions ---

type CreateCheckoutSessionRequest struct {
	Mode                string            `json:"mode" validate:"required,oneof=payment subscription setup"`
	SuccessURL          string            `json:"success_url" validate:"required,url"`
	CancelURL           string            `json:"cancel_url,omitempty" validate:"omitempty,url"`
	Customer            string            `json:"customer,omitempty"`
	CustomerEmail       string            `json:"customer_email,omitempty" validate:"omitempty,email"`
	ClientReferenceID   string            `json:"client_reference_id,omitempty"`
	Currency            string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	LineItems           []LineItem        `json:"line_items,omitempty" validate:"dive"`
	AllowPromotionCodes bool              `json:"allow_promotion_codes,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

type ListCheckoutSessionsRequest struct {
	ListRequest
	Customer string `json:"customer,omitempty"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=open complete expired"`
}

// --- Subscriptions ---

type CreateSubscriptionRequest struct {
	Customer             string            `json:"customer" validate:"required"`
	Items                []LineItem        `json:"items" validate:"required,min=1,max=20,dive"`
	TrialPeriodDays      int64             `json:"trial_period_days,omitempty" validate:"gte=0,lte=730"`
	DefaultPaymentMethod string            `json:"default_payment_method,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// UpdateSubscriptionRequest changes the first item's price and/or quantity.
type UpdateSubscriptionRequest struct {
	Price             string            `json:"price,omitempty"`
	Quantity          int64             `json:"quantity,omitempty" validate:"gte=0"`
	ProrationBehavior string            `json:"proration_behavior,omitempty" validate:"omitempty,oneof=create_prorations none always_invoice"`
	CancelAtPeriodEnd *bool             `json:"cancel_at_period_end,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end,omitempty"`
	InvoiceNow  bool `json:"invoice_now,omitempty"`
	Prorate     bool `json:"prorate,omitempty"`
}

type ListSubscriptionsRequest struct {
	ListRequest
	Customer string `json:"customer,omitempty"`
	Price    string `json:"price,omitempty"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=active past_due unpaid canceled incomplete incomplete_expired trialing paused all ended"`
}

// --- Invoices ---

type CreateInvoiceRequest struct {
	Customer         string            `json:"customer" validate:"required"`
	Subscription     string            `json:"subscription,omitempty"`
	CollectionMethod string            `json:"collection_method,omitempty" validate:"omitempty,oneof=charge_automatically send_invoice"`
	DaysUntilDue     int64             `json:"days_until_due,omitempty" validate:"gte=0"`
	Description      string            `json:"description,omitempty"`
	AutoAdvance      *bool             `json:"auto_advance,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type ListInvoicesRequest struct {
	ListRequest
	Customer     string `json:"customer,omitempty"`
	Subscription string `json:"subscription,omitempty"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=draft open paid uncollectible void"`
}

// --- Refunds ---

// CreateRefundRequest refunds a payment intent or a charge. A zero Amount
// refunds in full.
type CreateRefundRequest struct {
	PaymentIntent string            `json:"payment_intent,omitempty" validate:"required_without=Charge"`
	Charge        string            `json:"charge,omitempty" validate:"required_without=PaymentIntent"`
	Amount        int64             `json:"amount,omitempty" validate:"gte=0"`
	Reason        string            `json:"reason,omitempty" validate:"omitempty,oneof=duplicate fraudulent requested_by_customer"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type ListRefundsRequest struct {
	ListRequest
	PaymentIntent string `json:"payment_intent,omitempty"`
	Charge        string `json:"charge,omitempty"`
}

// --- Disputes ---

type DisputeEvidenceRequest struct {
	ProductDescription     string `json:"product_description,omitempty"`
	CustomerName           string `json:"customer_name,omitempty"`
	CustomerEmailAddress   string `json:"customer_email_address,omitempty" validate:"omitempty,email"`
	ShippingCarrier        string `json:"shipping_carrier,omitempty"`
	ShippingTrackingNumber string `json:"shipping_tracking_number,omitempty"`
	RefundPolicyDisclosure string `json:"refund_policy_disclosure,omitempty"`
	UncategorizedText      string `json:"uncategorized_text,omitempty" validate:"max=20000"`
	Submit                 bool   `json:"submit,omitempty"`
}

type ListDisputesRequest struct {
	ListRequest
	PaymentIntent string `json:"payment_intent,omitempty"`
	Charge        string `json:"charge,omitempty"`
}

// --- Transfers ---

type CreateTransferRequest struct {
	Amount            int64             `json:"amount" validate:"required,gt=0"`
	Currency          string            `json:"currency" validate:"required,len=3"`
	Destination       string            `json:"destination" validate:"required"`
	Description       string            `json:"description,omitempty"`
	TransferGroup     string            `json:"transfer_group,omitempty"`
	SourceTransaction string            `json:"source_transaction,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type ListTransfersRequest struct {
	ListRequest
	Destination   string `json:"destination,omitempty"`
	TransferGroup string `json:"transfer_group,omitempty"`
}

// --- Payment links ---

type CreatePaymentLinkRequest struct {
	LineItems           []LineItem        `json:"line_items" validate:"required,min=1,max=20,dive"`
	AllowPromotionCodes bool              `json:"allow_promotion_codes,omitempty"`
	RedirectURL         string            `json:"redirect_url,omitempty" validate:"omitempty,url"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

type ListPaymentLinksRequest struct {
	ListRequest
	Active *bool `json:"active,omitempty"`
}

// --- Radar ---

type ListEarlyFraudWarningsRequest struct {
	ListRequest
	Charge        string `json:"charge,omitempty"`
	PaymentIntent string `json:"payment_intent,omitempty"`
}

type CreateValueListRequest struct {
	Alias    string `json:"alias" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=100"`
	ItemType string `json:"item_type,omitempty" validate:"omitempty,oneof=card_bin card_fingerprint case_sensitive_string country customer_id email ip_address sepa_debit_fingerprint string us_bank_account_fingerprint"`
}

// --- Tax rates ---

type CreateTaxRateRequest struct {
	DisplayName  string            `json:"display_name" validate:"required,max=50"`
	Percentage   float64           `json:"percentage" validate:"gte=0,lte=100"`
	Inclusive    bool              `json:"inclusive"`
	Country      string            `json:"country,omitempty" validate:"omitempty,len=2"`
	State        string            `json:"state,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	Description  string            `json:"description,omitempty"`
	TaxType      string            `json:"tax_type,omitempty" validate:"omitempty,oneof=amusement_tax communications_tax gst hst igst jct lease_tax pst qst retail_delivery_fee rst sales_tax vat"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type ListTaxRatesRequest struct {
	ListRequest
	Active    *bool `json:"active,omitempty"`
	Inclusive *bool `json:"inclusive,omitempty"`
}

// --- Shipping rates ---

type CreateShippingRateRequest struct {
	DisplayName string            `json:"display_name" validate:"required,max=100"`
	Amount      int64             `json:"amount" validate:"gte=0"`
	Currency    string            `json:"currency" validate:"required,len=3"`
	TaxBehavior string            `json:"tax_behavior,omitempty" validate:"omitempty,oneof=inclusive exclusive unspecified"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ListShippingRatesRequest struct {
	ListRequest
	Active   *bool  `json:"active,omitempty"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// --- Entitlement features ---

type CreateFeatureRequest struct {
	Name      string            `json:"name" validate:"required,max=80"`
	LookupKey string            `json:"lookup_key" validate:"required,max=80"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type ListFeaturesRequest struct {
	ListRequest
	LookupKey string `json:"lookup_key,omitempty"`
	Archived  *bool  `json:"archived,omitempty"`
}

// --- Balance transactions ---

type ListBalanceTransactionsRequest struct {
	ListRequest
	Type     string `json:"type,omitempty"`
	Payout   string `json:"payout,omitempty"`
	Source   string `json:"source,omitempty"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// --- Events ---

type ListEventsRequest struct {
	ListRequest
	Type  string   `json:"type,omitempty"`
	Types []string `json:"types,omitempty" validate:"max=20"`
}

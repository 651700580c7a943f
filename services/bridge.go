package services

// Bridge bundles every resource wrapper around one shared client.
type Bridge struct {
	Client *StripeClient

	Products            *ProductService
	Prices              *PriceService
	Customers           *CustomerService
	CheckoutSessions    *CheckoutService
	Subscriptions       *SubscriptionService
	Invoices            *InvoiceService
	Refunds             *RefundService
	Disputes            *DisputeService
	Transfers           *TransferService
	PaymentLinks        *PaymentLinkService
	Radar               *RadarService
	TaxRates            *TaxRateService
	ShippingRates       *ShippingRateService
	Features            *FeatureService
	Entitlements        *EntitlementService
	BalanceTransactions *BalanceTransactionService
	Events              *EventService
}

// NewBridge wires all wrappers. images may be nil when S3 image references
// are not used.
func NewBridge(c *StripeClient, images *ImageResolver) *Bridge {
	return &Bridge{
		Client:              c,
		Products:            NewProductService(c, images),
		Prices:              NewPriceService(c),
		Customers:           NewCustomerService(c),
		CheckoutSessions:    NewCheckoutService(c),
		Subscriptions:       NewSubscriptionService(c),
		Invoices:            NewInvoiceService(c),
		Refunds:             NewRefundService(c),
		Disputes:            NewDisputeService(c),
		Transfers:           NewTransferService(c),
		PaymentLinks:        NewPaymentLinkService(c),
		Radar:               NewRadarService(c),
		TaxRates:            NewTaxRateService(c),
		ShippingRates:       NewShippingRateService(c),
		Features:            NewFeatureService(c),
		Entitlements:        NewEntitlementService(c),
		BalanceTransactions: NewBalanceTransactionService(c),
		Events:              NewEventService(c),
	}
}

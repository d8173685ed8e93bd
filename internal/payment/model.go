package payment

import "time"

// PreferenceItem is one checkout line sent to Mercado Pago.
type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest is the outbound preference-creation payload. The external
// reference carries the order id so payment details can be joined back later.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	BackURLs          BackURLs         `json:"back_urls"`
	NotificationURL   string           `json:"notification_url"`
	ExternalReference string           `json:"external_reference"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

// Preference is the gateway-side checkout session. Its id is handed to the
// buyer's browser to initiate payment.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// PaymentDetails is the authoritative payment record fetched from the
// gateway. Webhook notifications are untrusted; only this is acted on.
type PaymentDetails struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

// Notification is the webhook body Mercado Pago delivers. Only type
// "payment" is actionable; the gateway sends many other event types.
type Notification struct {
	Type     string `json:"type"`
	Action   string `json:"action,omitempty"`
	LiveMode bool   `json:"live_mode,omitempty"`
	Data     struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Payment is the persisted record correlating an order with its gateway
// checkout session.
type Payment struct {
	ID           int64
	OrderID      string
	PreferenceID string
	Status       string
	Amount       float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package payment

import "context"

type Gateway interface {
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
}

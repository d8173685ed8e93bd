package payment

import "errors"

var (
	ErrInvalidLineItem    = errors.New("invalid line item")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrMissingOrderID     = errors.New("order id is required")
	ErrPaymentNotFound    = errors.New("no payment recorded for order")
)

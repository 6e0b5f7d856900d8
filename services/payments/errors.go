package payments

import "errors"

// Failure classes the payment endpoints translate into HTTP responses.
// Guard violations on duplicate webhook deliveries are deliberately not
// here: they resolve as no-ops, never as errors.
var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrForbidden          = errors.New("invoice does not belong to requester")
	ErrAlreadySettled     = errors.New("invoice already settled")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidSignature   = errors.New("webhook signature verification failed")
)

package models

import "time"

// PaymentReconciledEvent is published to the commission queue exactly once
// per settled invoice. RecipientAddress identifies the commission account
// the downstream accrual service credits.
type PaymentReconciledEvent struct {
	InvoiceID        string    `json:"invoiceId"`
	PaymentID        string    `json:"paymentId"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	RecipientAddress string    `json:"recipientAddress"`
	SettledAt        time.Time `json:"settledAt"`
}

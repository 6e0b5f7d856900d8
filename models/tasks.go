package models

// PaymentConfirmationPayload is the queued job emitted after an invoice is
// settled. The worker re-reads the referenced records, so the payload stays
// id-only.
type PaymentConfirmationPayload struct {
	InvoiceID string `json:"invoiceId"`
	PaymentID string `json:"paymentId"`
	UserID    string `json:"userId"`
}

package models

import "time"

// Payment attempt statuses. A pending attempt reaches exactly one of the
// three terminal states, decided by the webhook reconciler.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
)

// Payment is a single settlement attempt against an invoice. The gateway
// checkout session reference is attached once the session is created, so a
// still-pending attempt can be resumed instead of forking a second session.
type Payment struct {
	ID                string     `bson:"id" json:"id"`
	InvoiceID         string     `bson:"invoiceId" json:"invoiceId"`
	UserID            string     `bson:"userId" json:"userId"`
	Amount            int64      `bson:"amount" json:"amount"`
	Currency          string     `bson:"currency" json:"currency"`
	Status            string     `bson:"status" json:"status"`
	Method            string     `bson:"method,omitempty" json:"method,omitempty"` // e.g. "card"
	CheckoutSessionID string     `bson:"checkoutSessionId,omitempty" json:"checkoutSessionId,omitempty"`
	CheckoutURL       string     `bson:"checkoutUrl,omitempty" json:"checkoutUrl,omitempty"`
	PaymentIntentID   string     `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	TransactionID     string     `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	FailureReason     string     `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	ProcessedAt       *time.Time `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// CheckoutSession is what the client receives after initiating payment:
// the hosted gateway page to redirect the guest to.
type CheckoutSession struct {
	PaymentID   string `json:"paymentId"`
	InvoiceID   string `json:"invoiceId"`
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// SessionStatus is the public polling view for a checkout session. The
// session id acts as the access capability, so only settlement state is
// exposed, never owner details.
type SessionStatus struct {
	SessionID     string `json:"sessionId"`
	PaymentID     string `json:"paymentId"`
	InvoiceID     string `json:"invoiceId"`
	PaymentStatus string `json:"paymentStatus"`
	InvoiceStatus string `json:"invoiceStatus"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	FailureReason string `json:"failureReason,omitempty"`
	ReceiptURL    string `json:"receiptUrl,omitempty"`
}

// InvoiceStatus is the owner-facing settlement view: the invoice plus the
// full attempt history.
type InvoiceStatus struct {
	Invoice  Invoice   `json:"invoice"`
	Attempts []Payment `json:"attempts"`
}

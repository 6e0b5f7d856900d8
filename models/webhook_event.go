package models

import "time"

// Webhook delivery outcomes, recorded per verified gateway event.
const (
	WebhookOutcomeApplied         = "applied"          // transition committed to the ledger
	WebhookOutcomeDuplicate       = "duplicate"        // status guard reported a no-op
	WebhookOutcomeUnmatched       = "unmatched"        // no local payment for the reference
	WebhookOutcomeIgnored         = "ignored"          // event type outside the handled set
	WebhookOutcomeSettledConflict = "settled_conflict" // attempt completed after the invoice was already paid
)

// WebhookEvent is the audit record for one verified gateway delivery.
// EventID is unique, so redeliveries keep the first record.
type WebhookEvent struct {
	EventID    string    `bson:"eventId" json:"eventId"`
	Type       string    `bson:"type" json:"type"`
	SessionID  string    `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	PaymentID  string    `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Outcome    string    `bson:"outcome" json:"outcome"`
	Detail     string    `bson:"detail,omitempty" json:"detail,omitempty"`
	ReceivedAt time.Time `bson:"receivedAt" json:"receivedAt"`
}

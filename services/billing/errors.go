package billing

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotReservationOwner = errors.New("reservation does not belong to requester")
	ErrDuplicateInvoice    = errors.New("reservation already has an open invoice")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrNotInvoiceOwner     = errors.New("invoice does not belong to requester")
)

package handlers

import (
	userRepoPkg "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Guest endpoints
	RegisterGuestHandler  gin.HandlerFunc
	LoginGuestHandler     gin.HandlerFunc
	GetProfileHandler     gin.HandlerFunc
	UpdateFCMTokenHandler gin.HandlerFunc

	// Reservation endpoints
	CreateReservationHandler gin.HandlerFunc
	GetReservationHandler    gin.HandlerFunc
	ListReservationsHandler  gin.HandlerFunc

	// Invoice endpoints
	CreateInvoiceHandler gin.HandlerFunc
	GetInvoiceHandler    gin.HandlerFunc
	ListInvoicesHandler  gin.HandlerFunc

	// Payment endpoints
	CreateCheckoutSessionHandler gin.HandlerFunc
	StripeWebhookHandler         gin.HandlerFunc
	GetSessionStatusHandler      gin.HandlerFunc
	GetInvoiceStatusHandler      gin.HandlerFunc
}

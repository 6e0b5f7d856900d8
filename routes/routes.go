package routes

import (
	"net/http"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/handlers"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/middleware"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterGuestRoutes registers account endpoints.
func RegisterGuestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterGuestHandler)
		api.POST("/login", hb.LoginGuestHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthGuestMiddleware(hb.UserRepo))
		api.GET("/profile", hb.GetProfileHandler)
		api.PUT("/fcm-token", hb.UpdateFCMTokenHandler)
	}
}

// RegisterBillingRoutes registers reservation and invoice endpoints.
func RegisterBillingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	reservations := r.Group("/api/reservations")
	{
		reservations.Use(middleware.JWTAuthGuestMiddleware(hb.UserRepo))
		reservations.POST("", hb.CreateReservationHandler)
		reservations.GET("", hb.ListReservationsHandler)
		reservations.GET("/:id", hb.GetReservationHandler)
	}

	invoices := r.Group("/api/invoices")
	{
		invoices.Use(middleware.JWTAuthGuestMiddleware(hb.UserRepo))
		invoices.POST("", hb.CreateInvoiceHandler)
		invoices.GET("", hb.ListInvoicesHandler)
		invoices.GET("/:id", hb.GetInvoiceHandler)
	}
}

// RegisterPaymentRoutes registers checkout, webhook and status endpoints.
// The webhook is authenticated by its Stripe signature and the session
// status poll by the unguessable session id, so neither carries JWT auth.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.StripeWebhookHandler)
		api.GET("/sessions/:id/status", hb.GetSessionStatusHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthGuestMiddleware(hb.UserRepo))
		protected.POST("/invoices/:id/checkout", hb.CreateCheckoutSessionHandler)
		protected.GET("/invoices/:id/status", hb.GetInvoiceStatusHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterGuestRoutes(r, hb)
	RegisterBillingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}

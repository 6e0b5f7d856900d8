package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/payments"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe event payloads stay well below this; anything larger is not a
// webhook we want to parse.
const maxWebhookBody = 65536

// PaymentHandler exposes checkout, webhook and status endpoints.
type PaymentHandler struct {
	Checkout   payments.CheckoutService
	Reconciler payments.ReconcilerService
	Status     payments.StatusService
}

func NewPaymentHandler(checkout payments.CheckoutService, reconciler payments.ReconcilerService, status payments.StatusService) *PaymentHandler {
	return &PaymentHandler{
		Checkout:   checkout,
		Reconciler: reconciler,
		Status:     status,
	}
}

// CreateCheckoutSessionHandler handles POST /payments/invoices/:id/checkout.
func (h *PaymentHandler) CreateCheckoutSessionHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	invoiceID := c.Param("id")

	session, err := h.Checkout.CreateCheckoutSession(c.Request.Context(), invoiceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvoiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		case errors.Is(err, payments.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invoice does not belong to you"})
		case errors.Is(err, payments.ErrAlreadySettled):
			c.JSON(http.StatusConflict, gin.H{"error": "Invoice is already settled"})
		case errors.Is(err, payments.ErrGatewayUnavailable):
			logger.Error("Payment gateway unavailable", zap.String("invoiceID", invoiceID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable, try again later"})
		default:
			logger.Error("Failed to create checkout session", zap.String("invoiceID", invoiceID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// StripeWebhookHandler handles POST /payments/webhook. The response code
// is the delivery contract with Stripe: 200 acknowledges the event once
// it is safely reconciled (or recognized as a no-op), 400 rejects a
// payload that fails signature verification, and anything else returns
// 500 so Stripe redelivers.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	logger := getLogger(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", zap.Error(err), zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := h.Reconciler.ProcessWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			logger.Warn("Webhook signature verification failed",
				zap.Error(err), zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		logger.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetSessionStatusHandler handles GET /payments/sessions/:id/status. The
// session id is the access capability here, so no auth is required: the
// redirect page polls this right after checkout.
func (h *PaymentHandler) GetSessionStatusHandler(c *gin.Context) {
	logger := getLogger(c)
	sessionID := c.Param("id")

	status, err := h.Status.GetSessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown checkout session"})
			return
		}
		logger.Error("Failed to load session status", zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetInvoiceStatusHandler handles GET /payments/invoices/:id/status.
func (h *PaymentHandler) GetInvoiceStatusHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	invoiceID := c.Param("id")

	status, err := h.Status.GetInvoiceStatus(c.Request.Context(), invoiceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvoiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		case errors.Is(err, payments.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invoice does not belong to you"})
		default:
			logger.Error("Failed to load invoice status", zap.String("invoiceID", invoiceID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoice status"})
		}
		return
	}
	c.JSON(http.StatusOK, status)
}

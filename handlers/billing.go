package handlers

import (
	"errors"
	"net/http"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BillingHandler exposes reservation and invoice endpoints.
type BillingHandler struct {
	Invoices     billing.InvoiceService
	Reservations billing.ReservationService
}

func NewBillingHandler(invoices billing.InvoiceService, reservations billing.ReservationService) *BillingHandler {
	return &BillingHandler{
		Invoices:     invoices,
		Reservations: reservations,
	}
}

// CreateReservationHandler handles POST /reservations.
func (h *BillingHandler) CreateReservationHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid reservation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	res, err := h.Reservations.CreateReservation(c.Request.Context(), userID, req)
	if err != nil {
		logger.Error("Failed to create reservation", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetReservationHandler handles GET /reservations/:id.
func (h *BillingHandler) GetReservationHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	reservationID := c.Param("id")

	res, err := h.Reservations.GetReservation(c.Request.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		case errors.Is(err, billing.ErrNotReservationOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Reservation does not belong to you"})
		default:
			logger.Error("Failed to load reservation", zap.String("reservationID", reservationID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reservation"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListReservationsHandler handles GET /reservations.
func (h *BillingHandler) ListReservationsHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservations, err := h.Reservations.ListUserReservations(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list reservations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// CreateInvoiceHandler handles POST /invoices.
func (h *BillingHandler) CreateInvoiceHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid invoice request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	inv, err := h.Invoices.CreateInvoice(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		case errors.Is(err, billing.ErrNotReservationOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Reservation does not belong to you"})
		case errors.Is(err, billing.ErrDuplicateInvoice):
			c.JSON(http.StatusConflict, gin.H{"error": "Reservation already has an open invoice"})
		default:
			logger.Error("Failed to create invoice", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// GetInvoiceHandler handles GET /invoices/:id.
func (h *BillingHandler) GetInvoiceHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	invoiceID := c.Param("id")

	inv, err := h.Invoices.GetInvoice(c.Request.Context(), invoiceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvoiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		case errors.Is(err, billing.ErrNotInvoiceOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invoice does not belong to you"})
		default:
			logger.Error("Failed to load invoice", zap.String("invoiceID", invoiceID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoice"})
		}
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ListInvoicesHandler handles GET /invoices.
func (h *BillingHandler) ListInvoicesHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoices, err := h.Invoices.ListUserInvoices(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list invoices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

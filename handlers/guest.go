package handlers

import (
	"errors"
	"net/http"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/guest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GuestHandler exposes account registration, login and profile endpoints.
type GuestHandler struct {
	Account guest.AccountService
}

func NewGuestHandler(account guest.AccountService) *GuestHandler {
	return &GuestHandler{Account: account}
}

// RegisterGuestHandler handles POST /auth/register.
func (h *GuestHandler) RegisterGuestHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.GuestRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid registration request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.Account.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, guest.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		logger.Error("Guest registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LoginGuestHandler handles POST /auth/login.
func (h *GuestHandler) LoginGuestHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.Account.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, guest.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		logger.Error("Guest login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfileHandler returns the authenticated guest's profile.
func (h *GuestHandler) GetProfileHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	usr, err := h.Account.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, guest.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error("Failed to load profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateFCMTokenHandler handles PUT /auth/fcm-token, storing the device
// token used for payment confirmation pushes.
func (h *GuestHandler) UpdateFCMTokenHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		FCMToken string `json:"fcmToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid FCM token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Account.UpdateFCMToken(c.Request.Context(), userID, req.FCMToken); err != nil {
		logger.Error("Failed to update FCM token", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update FCM token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}

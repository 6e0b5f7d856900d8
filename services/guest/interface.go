package guest

import (
	"context"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
)

// AccountService handles guest accounts and token issuance. Issuing a new
// token replaces the stored token hash, so older sessions stop
// authenticating.
type AccountService interface {
	Register(ctx context.Context, req models.GuestRegistration) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

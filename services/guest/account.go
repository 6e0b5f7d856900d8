package guest

import (
	"context"
	"fmt"

	userRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/user"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAccountService is the production guest account implementation.
// AuthCache is optional; when set, issued token hashes are primed into the
// auth cache so middleware lookups skip the database.
type DefaultAccountService struct {
	Repo      userRepo.UserRepository
	AuthCache *redis.Client
	Logger    *zap.Logger
}

// Register creates a guest account and signs it in.
func (s *DefaultAccountService) Register(ctx context.Context, req models.GuestRegistration) (*models.AuthResponse, error) {
	existing, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("guest: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("guest: failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("guest: %w", err)
	}

	s.Logger.Info("guest registered", zap.String("userID", user.ID))
	return s.issueToken(ctx, user)
}

// Login authenticates a guest by email and password.
func (s *DefaultAccountService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("guest: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(ctx, user)
}

// GetByID returns the guest account for an authenticated ID.
func (s *DefaultAccountService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("guest: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateFCMToken stores the device push token for payment notifications.
func (s *DefaultAccountService) UpdateFCMToken(ctx context.Context, id, token string) error {
	if err := s.Repo.SetFCMToken(ctx, id, token); err != nil {
		return fmt.Errorf("guest: %w", err)
	}
	return nil
}

// issueToken signs a fresh JWT, stores its hash on the account and primes
// the auth cache.
func (s *DefaultAccountService) issueToken(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, utils.AuthTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("guest: failed to sign token: %w", err)
	}

	hash := utils.HashToken(token)
	if err := s.Repo.SetTokenHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("guest: %w", err)
	}
	user.TokenHash = hash

	if s.AuthCache != nil {
		if err := s.AuthCache.Set(ctx, utils.AuthCachePrefix+user.ID, hash, utils.AuthCacheTTL).Err(); err != nil {
			s.Logger.Warn("failed to prime auth cache", zap.String("userID", user.ID), zap.Error(err))
		}
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

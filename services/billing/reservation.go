package billing

import (
	"context"
	"fmt"

	reservationRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/reservation"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"go.uber.org/zap"
)

// DefaultReservationService records hotel stays for later billing.
type DefaultReservationService struct {
	Reservations reservationRepo.ReservationRepository
	Logger       *zap.Logger
}

// CreateReservation validates the stay window and persists a pending
// reservation.
func (s *DefaultReservationService) CreateReservation(ctx context.Context, userID string, req models.CreateReservationRequest) (*models.Reservation, error) {
	if !req.CheckOut.After(req.CheckIn) {
		return nil, fmt.Errorf("check-out must be after check-in")
	}
	if req.Guests <= 0 {
		return nil, fmt.Errorf("invalid guest count: %d", req.Guests)
	}

	nights := int(req.CheckOut.Sub(req.CheckIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	res := &models.Reservation{
		UserID:    userID,
		HotelName: req.HotelName,
		RoomType:  req.RoomType,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Nights:    nights,
		Guests:    req.Guests,
		Status:    models.ReservationStatusPending,
	}
	if err := s.Reservations.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}

	s.Logger.Info("reservation recorded",
		zap.String("reservationID", res.ID),
		zap.String("hotel", res.HotelName),
		zap.Int("nights", res.Nights))
	return res, nil
}

// GetReservation returns a reservation to its owner.
func (s *DefaultReservationService) GetReservation(ctx context.Context, reservationID, userID string) (*models.Reservation, error) {
	res, err := s.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}
	if res.UserID != userID {
		return nil, ErrNotReservationOwner
	}
	return res, nil
}

// ListUserReservations returns all reservations belonging to a user.
func (s *DefaultReservationService) ListUserReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	reservations, err := s.Reservations.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}
	return reservations, nil
}

package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newReservationService() (*billing.DefaultReservationService, *MockReservationRepo) {
	reservations := new(MockReservationRepo)
	s := &billing.DefaultReservationService{
		Reservations: reservations,
		Logger:       zap.NewNop(),
	}
	return s, reservations
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	checkIn := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	t.Run("rejects an inverted stay window", func(t *testing.T) {
		s, reservations := newReservationService()

		res, err := s.CreateReservation(ctx, "usr-1", models.CreateReservationRequest{
			HotelName: "Jeddah Hilton",
			RoomType:  "Double",
			CheckIn:   checkIn,
			CheckOut:  checkIn.Add(-24 * time.Hour),
			Guests:    2,
		})

		assert.Nil(t, res)
		assert.Error(t, err)
		reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a non-positive guest count", func(t *testing.T) {
		s, _ := newReservationService()

		res, err := s.CreateReservation(ctx, "usr-1", models.CreateReservationRequest{
			HotelName: "Jeddah Hilton",
			RoomType:  "Double",
			CheckIn:   checkIn,
			CheckOut:  checkIn.Add(72 * time.Hour),
			Guests:    0,
		})

		assert.Nil(t, res)
		assert.Error(t, err)
	})

	t.Run("records a pending stay with the night count derived", func(t *testing.T) {
		s, reservations := newReservationService()
		reservations.On("Create", ctx, mock.MatchedBy(func(res *models.Reservation) bool {
			return res.UserID == "usr-1" &&
				res.HotelName == "Jeddah Hilton" &&
				res.Nights == 3 &&
				res.Status == models.ReservationStatusPending
		})).Return(nil)

		res, err := s.CreateReservation(ctx, "usr-1", models.CreateReservationRequest{
			HotelName: "Jeddah Hilton",
			RoomType:  "Double",
			CheckIn:   checkIn,
			CheckOut:  checkIn.Add(72 * time.Hour),
			Guests:    2,
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, res.Nights)
		assert.Equal(t, models.ReservationStatusPending, res.Status)
		reservations.AssertExpectations(t)
	})

	t.Run("a same-day stay still counts one night", func(t *testing.T) {
		s, reservations := newReservationService()
		reservations.On("Create", ctx, mock.Anything).Return(nil)

		res, err := s.CreateReservation(ctx, "usr-1", models.CreateReservationRequest{
			HotelName: "Jeddah Hilton",
			RoomType:  "Double",
			CheckIn:   checkIn,
			CheckOut:  checkIn.Add(8 * time.Hour),
			Guests:    1,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Nights)
	})
}

func TestGetReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown reservation", func(t *testing.T) {
		s, reservations := newReservationService()
		reservations.On("GetByID", ctx, "res-missing").Return(nil, nil)

		res, err := s.GetReservation(ctx, "res-missing", "usr-1")

		assert.Nil(t, res)
		assert.ErrorIs(t, err, billing.ErrReservationNotFound)
	})

	t.Run("only the owner can read it", func(t *testing.T) {
		s, reservations := newReservationService()
		reservations.On("GetByID", ctx, "res-1").Return(pendingReservation(), nil)

		res, err := s.GetReservation(ctx, "res-1", "usr-2")

		assert.Nil(t, res)
		assert.ErrorIs(t, err, billing.ErrNotReservationOwner)
	})

	t.Run("returns the owner's reservation", func(t *testing.T) {
		s, reservations := newReservationService()
		reservations.On("GetByID", ctx, "res-1").Return(pendingReservation(), nil)

		res, err := s.GetReservation(ctx, "res-1", "usr-1")

		assert.NoError(t, err)
		assert.Equal(t, "Jeddah Hilton", res.HotelName)
	})
}

func TestListUserReservations(t *testing.T) {
	ctx := context.Background()

	s, reservations := newReservationService()
	reservations.On("ListByUserID", ctx, "usr-1").Return([]models.Reservation{
		{ID: "res-1"}, {ID: "res-2"},
	}, nil)

	list, err := s.ListUserReservations(ctx, "usr-1")

	assert.NoError(t, err)
	assert.Len(t, list, 2)
}

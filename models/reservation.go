package models

import "time"

// Reservation statuses. A reservation is confirmed by the payment
// confirmation worker once its invoice has been settled.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// Reservation is a hotel-stay record. Billing references it through the
// invoice; availability and pricing are handled upstream.
type Reservation struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	HotelName string    `bson:"hotelName" json:"hotelName"`
	RoomType  string    `bson:"roomType" json:"roomType"`
	CheckIn   time.Time `bson:"checkIn" json:"checkIn"`
	CheckOut  time.Time `bson:"checkOut" json:"checkOut"`
	Nights    int       `bson:"nights" json:"nights"`
	Guests    int       `bson:"guests" json:"guests"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateReservationRequest is the payload for recording a new stay.
type CreateReservationRequest struct {
	HotelName string    `json:"hotelName" binding:"required"`
	RoomType  string    `json:"roomType" binding:"required"`
	CheckIn   time.Time `json:"checkIn" binding:"required"`
	CheckOut  time.Time `json:"checkOut" binding:"required"`
	Guests    int       `json:"guests" binding:"required"`
}

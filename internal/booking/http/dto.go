package http

import (
	"time"

	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/request"
	turfHttp "github.com/nekogravitycat/turf-booking-backend/internal/turf/http"
	userHttp "github.com/nekogravitycat/turf-booking-backend/internal/user/http"
)

type TurfURIRequest struct {
	TurfID string `uri:"turfId" binding:"required,uuid"`
}

// CreateBookingRequest names the weekly slot to reserve.
type CreateBookingRequest struct {
	Day  string `json:"day" binding:"required,weekday"`
	Time string `json:"time" binding:"required,timerange"`
}

// ListMyBookingsRequest defines query parameters for the caller's own bookings.
type ListMyBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=booked cancelled expired"`
}

// ListBookingsRequest defines query parameters for the owner/admin listing.
type ListBookingsRequest struct {
	request.ListParams
	TurfID string `form:"turf" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=booked cancelled expired"`
	Day    string `form:"day" binding:"omitempty,weekday"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending paid refunding refunded failed"`
}

type BookingResponse struct {
	ID            string                `json:"id"`
	User          userHttp.UserTag      `json:"user"`
	Turf          turfHttp.TurfTag      `json:"turf"`
	Day           string                `json:"day"`
	Time          string                `json:"time"`
	PricePaid     float64               `json:"price_paid"`
	Status        booking.Status        `json:"status"`
	PaymentStatus booking.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		User:          userHttp.UserTag{ID: b.UserID, Name: b.UserName},
		Turf:          turfHttp.TurfTag{ID: b.TurfID, Name: b.TurfName},
		Day:           b.Day,
		Time:          b.TimeRange,
		PricePaid:     b.PricePaid,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func NewBookingResponses(bs []*booking.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bs))
	for i, b := range bs {
		out[i] = NewBookingResponse(b)
	}
	return out
}

type SweepResponse struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

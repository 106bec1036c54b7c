package booking

import (
	"net/http"
	"slices"
	"time"

	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound                 = apperror.New(http.StatusNotFound, "booking not found")
	ErrTurfNotFound             = apperror.New(http.StatusNotFound, "turf not found")
	ErrSlotUnavailable          = apperror.New(http.StatusBadRequest, "slot not available")
	ErrPastSlot                 = apperror.New(http.StatusBadRequest, "cannot book a slot in the past")
	ErrSlotAlreadyBooked        = apperror.New(http.StatusBadRequest, "slot already booked")
	ErrPriceNotFound            = apperror.New(http.StatusBadRequest, "price not found for slot")
	ErrPermissionDenied         = apperror.New(http.StatusForbidden, "permission denied")
	ErrAlreadyCancelled         = apperror.New(http.StatusBadRequest, "booking already cancelled")
	ErrBookingExpired           = apperror.New(http.StatusBadRequest, "booking already expired")
	ErrInvalidPaymentTransition = apperror.New(http.StatusBadRequest, "invalid payment status transition")
	ErrInvalidStatus            = apperror.New(http.StatusBadRequest, "invalid booking status")
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunding PaymentStatus = "refunding"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentFailed    PaymentStatus = "failed"
)

// paymentTransitions lists the moves an admin may record by hand.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentPaid, PaymentFailed},
	PaymentRefunding: {PaymentRefunded},
	PaymentFailed:    {PaymentPaid},
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	return slices.Contains(paymentTransitions[from], to)
}

// Booking is one reservation of a weekly slot. Day is stored lower case;
// PricePaid is the slot price at reservation time and is never rewritten.
type Booking struct {
	ID            string
	UserID        string
	UserName      string
	TurfID        string
	TurfName      string
	TurfOwnerID   string
	Day           string
	TimeRange     string
	PricePaid     float64
	Status        Status
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Filter struct {
	UserID   string
	TurfID   string
	OwnerID  string // bookings of turfs owned by this user
	Status   Status
	Day      string
	Page     int
	PageSize int
}

// SweepResult summarizes one expiry pass.
type SweepResult struct {
	Scanned int
	Expired int
	Failed  int
}

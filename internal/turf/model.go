package turf

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "turf not found")
	ErrSlotNotFound          = apperror.New(http.StatusNotFound, "slot not found")
	ErrDuplicateSlot         = apperror.New(http.StatusBadRequest, "a slot already exists for this day and time")
	ErrInvalidPrice          = apperror.New(http.StatusBadRequest, "price must be greater than zero")
	ErrEmptyName             = apperror.New(http.StatusBadRequest, "name is required")
	ErrEmptyCity             = apperror.New(http.StatusBadRequest, "city is required")
	ErrNoSlots               = apperror.New(http.StatusBadRequest, "at least one slot is required")
	ErrPermissionDenied      = apperror.New(http.StatusForbidden, "permission denied")
	ErrTurfHasActiveBookings = apperror.New(http.StatusBadRequest, "turf has active bookings")
	ErrSlotHasActiveBooking  = apperror.New(http.StatusBadRequest, "slot has an active booking and cannot be moved or removed")
)

// Turf is a bookable venue together with its weekly slot schedule.
type Turf struct {
	ID           string
	OwnerID      string
	OwnerName    string
	Name         string
	City         string
	Address      string
	SportTypes   []string
	PricePerHour float64
	Images       []string
	IsVerified   bool
	Slots        []Slot
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Grid returns a working copy of the turf's schedule.
func (t *Turf) Grid() *Grid {
	return NewGrid(t.Slots)
}

// Slot is one bookable weekday/time-range cell.
type Slot struct {
	ID        string
	Day       string
	TimeRange string
	Price     float64
	IsBooked  bool
}

// SlotPatch carries the fields to replace on one slot. Nil fields stay as they are.
type SlotPatch struct {
	Day       *string
	TimeRange *string
	Price     *float64
	IsBooked  *bool
}

// SlotUpdate addresses a slot by ID, or by Day and TimeRange when ID is empty.
type SlotUpdate struct {
	SlotID    string
	Day       string
	TimeRange string
	IsBooked  bool
	Price     *float64
	NewDay    *string
	NewTime   *string
}

type Filter struct {
	OwnerID   string
	City      string
	SportType string
	MinPrice  *float64
	MaxPrice  *float64
	Page      int
	PageSize  int
}

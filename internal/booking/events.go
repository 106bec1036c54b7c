package booking

import (
	"context"
	"time"
)

const (
	EventReserved  = "booking.reserved"
	EventCancelled = "booking.cancelled"
	EventExpired   = "booking.expired"
)

// Event is the payload published after a booking changes state.
type Event struct {
	BookingID     string        `json:"booking_id"`
	UserID        string        `json:"user_id"`
	TurfID        string        `json:"turf_id"`
	Day           string        `json:"day"`
	TimeRange     string        `json:"time"`
	PricePaid     float64       `json:"price_paid"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

func newEvent(b *Booking, at time.Time) Event {
	return Event{
		BookingID:     b.ID,
		UserID:        b.UserID,
		TurfID:        b.TurfID,
		Day:           b.Day,
		TimeRange:     b.TimeRange,
		PricePaid:     b.PricePaid,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		OccurredAt:    at.UTC(),
	}
}

// EventPublisher delivers booking events to whoever listens. Publishing
// happens after commit and never undoes a state change.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

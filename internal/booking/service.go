package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	"github.com/nekogravitycat/turf-booking-backend/internal/policy"
	"github.com/nekogravitycat/turf-booking-backend/internal/schedule"
	"github.com/nekogravitycat/turf-booking-backend/internal/turf"
)

// TurfReader is the read side of the turf module that booking depends on.
type TurfReader interface {
	GetByID(ctx context.Context, id string) (*turf.Turf, error)
}

type ReserveRequest struct {
	UserID    string
	TurfID    string
	Day       string
	TimeRange string
}

type Service interface {
	Reserve(ctx context.Context, req ReserveRequest) (*Booking, error)
	Cancel(ctx context.Context, id string, actor auth.Actor) (*Booking, error)
	GetByID(ctx context.Context, id string, actor auth.Actor) (*Booking, error)
	// ListMine returns the caller's own bookings; filter.UserID is overwritten.
	ListMine(ctx context.Context, actor auth.Actor, filter Filter) ([]*Booking, int, error)
	// List is the owner/admin view: admins see everything, owners their turfs' bookings.
	List(ctx context.Context, actor auth.Actor, filter Filter) ([]*Booking, int, error)
	UpdatePaymentStatus(ctx context.Context, id string, actor auth.Actor, to PaymentStatus) (*Booking, error)
	// ExpireElapsed marks every booked booking whose occurrence has passed as expired.
	ExpireElapsed(ctx context.Context) (SweepResult, error)
}

type service struct {
	repo      Repository
	turfs     TurfReader
	clock     schedule.Clock
	publisher EventPublisher
	log       zerolog.Logger
	tracer    trace.Tracer
}

func NewService(repo Repository, turfs TurfReader, clock schedule.Clock, publisher EventPublisher, log zerolog.Logger) Service {
	return &service{
		repo:      repo,
		turfs:     turfs,
		clock:     clock,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer("booking"),
	}
}

func (s *service) Reserve(ctx context.Context, req ReserveRequest) (b *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Reserve", trace.WithAttributes(
		attribute.String("turf.id", req.TurfID),
		attribute.String("slot.day", req.Day),
		attribute.String("slot.time", req.TimeRange),
	))
	defer func() { endSpan(span, err) }()

	now := s.clock.Now()

	t, err := s.turfs.GetByID(ctx, req.TurfID)
	if err != nil {
		if errors.Is(err, turf.ErrNotFound) {
			return nil, ErrTurfNotFound
		}
		return nil, err
	}

	grid := t.Grid()
	unit, ok := grid.Find(req.Day, req.TimeRange)
	if !ok || unit.IsBooked {
		return nil, ErrSlotUnavailable
	}

	if schedule.IsInPast(unit.Day, unit.TimeRange, now) {
		return nil, ErrPastSlot
	}

	active, err := s.repo.HasActive(ctx, t.ID, unit.Day, unit.TimeRange)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrSlotAlreadyBooked
	}

	if _, ok := grid.PriceOf(unit.Day, unit.TimeRange); !ok {
		return nil, ErrPriceNotFound
	}

	// The checks above read a snapshot; Reserve re-checks the slot atomically.
	b = &Booking{
		UserID:      req.UserID,
		TurfID:      t.ID,
		TurfName:    t.Name,
		TurfOwnerID: t.OwnerID,
		Day:         unit.Day,
		TimeRange:   unit.TimeRange,
		CreatedAt:   now,
	}
	if err := s.repo.Reserve(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("booking_id", b.ID).
		Str("turf_id", b.TurfID).
		Str("user_id", b.UserID).
		Str("day", b.Day).
		Str("time", b.TimeRange).
		Msg("booking reserved")
	s.publish(ctx, EventReserved, b)

	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string, actor auth.Actor) (b *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Cancel", trace.WithAttributes(attribute.String("booking.id", id)))
	defer func() { endSpan(span, err) }()

	b, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanCancelBooking(actor, b.UserID, b.TurfOwnerID) {
		return nil, ErrPermissionDenied
	}
	if err := terminalErr(b.Status); err != nil {
		return nil, err
	}

	changed, err := s.repo.Cancel(ctx, b)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost a race with another cancel or the sweeper.
		latest, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := terminalErr(latest.Status); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("booking %s not cancelled in status %s", id, latest.Status)
	}

	s.log.Info().
		Str("booking_id", b.ID).
		Str("turf_id", b.TurfID).
		Str("actor_id", actor.UserID).
		Str("payment_status", string(b.PaymentStatus)).
		Msg("booking cancelled")
	s.publish(ctx, EventCancelled, b)

	return b, nil
}

func terminalErr(status Status) error {
	switch status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusExpired:
		return ErrBookingExpired
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id string, actor auth.Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewBooking(actor, b.UserID, b.TurfOwnerID) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) ListMine(ctx context.Context, actor auth.Actor, filter Filter) ([]*Booking, int, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, 0, err
	}
	filter.UserID = actor.UserID
	filter.OwnerID = ""
	return s.repo.List(ctx, filter)
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter Filter) ([]*Booking, int, error) {
	if !policy.CanListBookings(actor) {
		return nil, 0, ErrPermissionDenied
	}
	if err := normalizeFilter(&filter); err != nil {
		return nil, 0, err
	}
	filter.OwnerID = ""
	if !policy.IsAdmin(actor) {
		filter.OwnerID = actor.UserID
	}
	return s.repo.List(ctx, filter)
}

func normalizeFilter(f *Filter) error {
	if f.Status != "" && !f.Status.Valid() {
		return ErrInvalidStatus
	}
	if f.Day != "" {
		day, err := schedule.NormalizeDay(f.Day)
		if err != nil {
			return err
		}
		f.Day = day
	}
	return nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id string, actor auth.Actor, to PaymentStatus) (*Booking, error) {
	if !policy.CanManagePayments(actor) {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransitionPayment(b.PaymentStatus, to) {
		return nil, ErrInvalidPaymentTransition
	}

	changed, err := s.repo.UpdatePaymentStatus(ctx, id, b.PaymentStatus, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrInvalidPaymentTransition
	}

	s.log.Info().
		Str("booking_id", id).
		Str("from", string(b.PaymentStatus)).
		Str("to", string(to)).
		Str("actor_id", actor.UserID).
		Msg("payment status updated")

	return s.repo.GetByID(ctx, id)
}

func (s *service) ExpireElapsed(ctx context.Context) (res SweepResult, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.ExpireElapsed")
	defer func() {
		span.SetAttributes(
			attribute.Int("sweep.scanned", res.Scanned),
			attribute.Int("sweep.expired", res.Expired),
			attribute.Int("sweep.failed", res.Failed),
		)
		endSpan(span, err)
	}()

	now := s.clock.Now()

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return res, err
	}
	res.Scanned = len(active)

	for _, b := range active {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !elapsed(b, now) {
			continue
		}

		changed, err := s.repo.Expire(ctx, b)
		if err != nil {
			res.Failed++
			s.log.Error().Err(err).Str("booking_id", b.ID).Msg("failed to expire booking")
			continue
		}
		if !changed {
			continue
		}

		res.Expired++
		s.log.Info().
			Str("booking_id", b.ID).
			Str("turf_id", b.TurfID).
			Str("day", b.Day).
			Str("time", b.TimeRange).
			Msg("booking expired")
		s.publish(ctx, EventExpired, b)
	}

	return res, nil
}

// elapsed resolves the booking's occurrence from its creation time, seen in
// now's timezone. Unresolvable day or time counts as elapsed.
func elapsed(b *Booking, now time.Time) bool {
	occ, err := schedule.NextOccurrence(b.Day, b.TimeRange, b.CreatedAt.In(now.Location()))
	if err != nil {
		return true
	}
	return occ.Before(now)
}

func (s *service) publish(ctx context.Context, key string, b *Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(ctx, key, newEvent(b, s.clock.Now())); err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Str("event", key).Msg("failed to publish booking event")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

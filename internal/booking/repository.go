package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/turf-booking-backend/internal/db"
	"github.com/nekogravitycat/turf-booking-backend/internal/turf"
)

const activeSlotConstraint = "bookings_active_slot_uq"

type Repository interface {
	// Reserve claims the slot and inserts the booking in one transaction.
	// It fills in ID, UserName, PricePaid, Status, PaymentStatus and timestamps.
	Reserve(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// HasActive reports whether a booked booking holds the slot. It is a
	// fast pre-check; bookings_active_slot_uq is what enforces uniqueness.
	HasActive(ctx context.Context, turfID, day, timeRange string) (bool, error)
	// ListActive returns every booking still in status booked.
	ListActive(ctx context.Context) ([]*Booking, error)

	// Cancel and Expire move a booked booking to a terminal status and free
	// its slot. They report false when the booking was no longer booked.
	Cancel(ctx context.Context, b *Booking) (bool, error)
	Expire(ctx context.Context, b *Booking) (bool, error)

	// UpdatePaymentStatus changes the payment status only if it is still from.
	UpdatePaymentStatus(ctx context.Context, id string, from, to PaymentStatus) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Reserve(ctx context.Context, b *Booking) error {
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := turf.LockForBooking(ctx, tx, b.TurfID); err != nil {
			if errors.Is(err, turf.ErrNotFound) {
				return ErrTurfNotFound
			}
			return err
		}

		price, claimed, err := turf.ClaimSlot(ctx, tx, b.TurfID, b.Day, b.TimeRange)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrSlotUnavailable
		}

		const query = `
			INSERT INTO bookings (user_id, turf_id, day, time_range, price_paid, status, payment_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'booked', 'pending', $6, $6)
			RETURNING id, price_paid, status, payment_status, created_at, updated_at,
			          (SELECT name FROM users WHERE id = $1)
		`
		return tx.QueryRow(ctx, query, b.UserID, b.TurfID, b.Day, b.TimeRange, price, b.CreatedAt).
			Scan(&b.ID, &b.PricePaid, &b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt, &b.UserName)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == activeSlotConstraint {
			return ErrSlotAlreadyBooked
		}
		if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrTurfNotFound) {
			return err
		}
		return fmt.Errorf("reserve booking failed: %w", err)
	}
	return nil
}

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(
		"b.id", "b.user_id", "u.name", "b.turf_id", "t.name", "t.owner_id",
		"b.day", "b.time_range", "b.price_paid", "b.status", "b.payment_status",
		"b.created_at", "b.updated_at",
	).
		From("bookings b").
		Join("users u ON u.id = b.user_id").
		Join("turfs t ON t.id = b.turf_id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.UserID, &b.UserName, &b.TurfID, &b.TurfName, &b.TurfOwnerID,
		&b.Day, &b.TimeRange, &b.PricePaid, &b.Status, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	q := selectBookings().Column("count(*) OVER() AS total_count")

	if filter.UserID != "" {
		q = q.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.TurfID != "" {
		q = q.Where(squirrel.Eq{"b.turf_id": filter.TurfID})
	}
	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"t.owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.Day != "" {
		q = q.Where(squirrel.Eq{"b.day": filter.Day})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	q = q.OrderBy("b.created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) HasActive(ctx context.Context, turfID, day, timeRange string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE turf_id = $1 AND day = $2 AND time_range = $3 AND status = 'booked'
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, turfID, day, timeRange).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active booking failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListActive(ctx context.Context) ([]*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.status": StatusBooked}).
		OrderBy("b.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active bookings failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) Cancel(ctx context.Context, b *Booking) (bool, error) {
	const query = `
		UPDATE bookings
		SET status = 'cancelled',
		    payment_status = CASE WHEN payment_status = 'paid' THEN 'refunding' ELSE payment_status END,
		    updated_at = now()
		WHERE id = $1 AND status = 'booked'
		RETURNING status, payment_status, updated_at
	`
	return r.finish(ctx, b, query)
}

func (r *pgxRepository) Expire(ctx context.Context, b *Booking) (bool, error) {
	const query = `
		UPDATE bookings
		SET status = 'expired', updated_at = now()
		WHERE id = $1 AND status = 'booked'
		RETURNING status, payment_status, updated_at
	`
	return r.finish(ctx, b, query)
}

// finish runs a conditional status update and releases the slot in the same
// transaction. A booking whose labels match no slot row has nothing to release.
func (r *pgxRepository) finish(ctx context.Context, b *Booking, query string) (bool, error) {
	changed := false
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Waits for a schedule change on the same turf to commit first.
		if err := turf.LockForBooking(ctx, tx, b.TurfID); err != nil && !errors.Is(err, turf.ErrNotFound) {
			return err
		}

		err := tx.QueryRow(ctx, query, b.ID).Scan(&b.Status, &b.PaymentStatus, &b.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("update booking status failed: %w", err)
		}
		changed = true

		if err := turf.SetSlotBooked(ctx, tx, b.TurfID, b.Day, b.TimeRange, false); err != nil && !errors.Is(err, turf.ErrSlotNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (r *pgxRepository) UpdatePaymentStatus(ctx context.Context, id string, from, to PaymentStatus) (bool, error) {
	const query = `
		UPDATE bookings
		SET payment_status = $3, updated_at = now()
		WHERE id = $1 AND payment_status = $2
	`
	ct, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update payment status failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

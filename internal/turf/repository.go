package turf

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
)

const slotUniqueConstraint = "turf_slots_unit_uq"

type Repository interface {
	// Create inserts the turf together with its initial slots.
	Create(ctx context.Context, t *Turf) error
	// GetByID returns the turf with its slots.
	GetByID(ctx context.Context, id string) (*Turf, error)
	// List returns turfs without slots.
	List(ctx context.Context, filter Filter) ([]*Turf, int, error)
	Update(ctx context.Context, t *Turf) error
	// Delete hides the turf and drops its slots, failing while a booking is active.
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, id, fileID string) error
	// ModifyGrid locks the turf, hands its grid to fn, and persists whatever fn changed.
	ModifyGrid(ctx context.Context, turfID string, fn func(ownerID string, g *Grid) error) ([]Slot, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Create(ctx context.Context, t *Turf) error {
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO turfs (owner_id, name, city, address, sport_types, price_per_hour)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, images, is_verified, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query, t.OwnerID, t.Name, t.City, t.Address, t.SportTypes, t.PricePerHour).
			Scan(&t.ID, &t.Images, &t.IsVerified, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create turf failed: %w", err)
		}
		return insertSlots(ctx, tx, t.ID, t.Slots)
	})
	return mapSlotErr(err)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Turf, error) {
	query, args, err := psql.Select(
		"t.id", "t.owner_id", "u.name", "t.name", "t.city", "t.address", "t.sport_types",
		"t.price_per_hour", "t.images", "t.is_verified", "t.created_at", "t.updated_at",
	).
		From("turfs t").
		Join("users u ON u.id = t.owner_id").
		Where(squirrel.Eq{"t.id": id}).
		Where("t.deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get turf query failed: %w", err)
	}

	var t Turf
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.OwnerID, &t.OwnerName, &t.Name, &t.City, &t.Address, &t.SportTypes,
		&t.PricePerHour, &t.Images, &t.IsVerified, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get turf failed: %w", err)
	}

	slots, err := loadSlots(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	t.Slots = slots
	return &t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Turf, int, error) {
	q := psql.Select(
		"t.id", "t.owner_id", "u.name", "t.name", "t.city", "t.address", "t.sport_types",
		"t.price_per_hour", "t.images", "t.is_verified", "t.created_at", "t.updated_at",
		"count(*) OVER() AS total_count",
	).
		From("turfs t").
		Join("users u ON u.id = t.owner_id").
		Where("t.deleted_at IS NULL")

	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"t.owner_id": filter.OwnerID})
	}
	if filter.City != "" {
		q = q.Where("lower(t.city) = lower(?)", filter.City)
	}
	if filter.SportType != "" {
		q = q.Where("? = ANY(t.sport_types)", filter.SportType)
	}
	if filter.MinPrice != nil {
		q = q.Where(squirrel.GtOrEq{"t.price_per_hour": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		q = q.Where(squirrel.LtOrEq{"t.price_per_hour": *filter.MaxPrice})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	q = q.OrderBy("t.created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list turfs query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list turfs failed: %w", err)
	}
	defer rows.Close()

	var result []*Turf
	var total int
	for rows.Next() {
		var t Turf
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.OwnerName, &t.Name, &t.City, &t.Address, &t.SportTypes,
			&t.PricePerHour, &t.Images, &t.IsVerified, &t.CreatedAt, &t.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan turf failed: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate turfs failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Turf) error {
	const query = `
		UPDATE turfs
		SET name = $2, city = $3, address = $4, sport_types = $5, price_per_hour = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query, t.ID, t.Name, t.City, t.Address, t.SportTypes, t.PricePerHour).
		Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update turf failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockTurf(ctx, tx, id); err != nil {
			return err
		}

		// Slots go first: a Reserve holding a slot row lock finishes before
		// this statement proceeds, so the check below sees its booking.
		if _, err := tx.Exec(ctx, `DELETE FROM turf_slots WHERE turf_id = $1`, id); err != nil {
			return fmt.Errorf("delete turf slots failed: %w", err)
		}

		var active bool
		const activeQuery = `SELECT EXISTS (SELECT 1 FROM bookings WHERE turf_id = $1 AND status = 'booked')`
		if err := tx.QueryRow(ctx, activeQuery, id).Scan(&active); err != nil {
			return fmt.Errorf("check active bookings failed: %w", err)
		}
		if active {
			return ErrTurfHasActiveBookings
		}

		if _, err := tx.Exec(ctx, `UPDATE turfs SET deleted_at = now(), updated_at = now() WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete turf failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) AddImage(ctx context.Context, id, fileID string) error {
	const query = `
		UPDATE turfs
		SET images = array_append(images, $2), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	ct, err := r.pool.Exec(ctx, query, id, fileID)
	if err != nil {
		return fmt.Errorf("add turf image failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ModifyGrid(ctx context.Context, turfID string, fn func(ownerID string, g *Grid) error) ([]Slot, error) {
	var result []Slot
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		ownerID, err := lockTurf(ctx, tx, turfID)
		if err != nil {
			return err
		}

		before, err := loadSlots(ctx, tx, turfID)
		if err != nil {
			return err
		}

		g := NewGrid(before)
		if err := fn(ownerID, g); err != nil {
			return err
		}
		after := g.Slots()

		if err := checkVacated(ctx, tx, turfID, vacatedKeys(before, after)); err != nil {
			return err
		}

		diff := diffSlots(before, after)
		if !diff.empty() {
			if err := writeDiff(ctx, tx, turfID, diff); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `UPDATE turfs SET updated_at = now() WHERE id = $1`, turfID); err != nil {
				return fmt.Errorf("touch turf failed: %w", err)
			}
		}

		result = after
		return nil
	})
	if err != nil {
		return nil, mapSlotErr(err)
	}
	return result, nil
}

// lockTurf takes the row lock that serializes schedule changes of one turf.
func lockTurf(ctx context.Context, tx pgx.Tx, id string) (string, error) {
	var ownerID string
	const query = `SELECT owner_id FROM turfs WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	if err := tx.QueryRow(ctx, query, id).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lock turf failed: %w", err)
	}
	return ownerID, nil
}

// LockForBooking takes a shared lock on the turf row. Booking transactions
// call it first so they queue behind a schedule change holding lockTurf,
// and a schedule change queues behind them.
func LockForBooking(ctx context.Context, q db.Querier, id string) error {
	var one int
	if err := q.QueryRow(ctx, `SELECT 1 FROM turfs WHERE id = $1 FOR SHARE`, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock turf for booking failed: %w", err)
	}
	return nil
}

// checkVacated fails when a removed or moved slot still has a booked booking.
func checkVacated(ctx context.Context, tx pgx.Tx, turfID string, keys []unitKey) error {
	if len(keys) == 0 {
		return nil
	}
	days := make([]string, len(keys))
	times := make([]string, len(keys))
	for i, k := range keys {
		days[i], times[i] = k.day, k.timeRange
	}

	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM bookings b
			JOIN unnest($2::text[], $3::text[]) AS v(day, time_range)
			  ON b.day = v.day AND b.time_range = v.time_range
			WHERE b.turf_id = $1 AND b.status = 'booked'
		)
	`
	var busy bool
	if err := tx.QueryRow(ctx, query, turfID, days, times).Scan(&busy); err != nil {
		return fmt.Errorf("check slot bookings failed: %w", err)
	}
	if busy {
		return ErrSlotHasActiveBooking
	}
	return nil
}

func loadSlots(ctx context.Context, q db.Querier, turfID string) ([]Slot, error) {
	const query = `
		SELECT id, day, time_range, price, is_booked
		FROM turf_slots
		WHERE turf_id = $1
	`
	rows, err := q.Query(ctx, query, turfID)
	if err != nil {
		return nil, fmt.Errorf("load slots failed: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.Day, &s.TimeRange, &s.Price, &s.IsBooked); err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots failed: %w", err)
	}

	SortSlots(slots)
	return slots, nil
}

func insertSlots(ctx context.Context, tx pgx.Tx, turfID string, slots []Slot) error {
	if len(slots) == 0 {
		return nil
	}
	q := psql.Insert("turf_slots").Columns("id", "turf_id", "day", "time_range", "price", "is_booked")
	for _, s := range slots {
		q = q.Values(s.ID, turfID, s.Day, s.TimeRange, s.Price, s.IsBooked)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert slots query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert slots failed: %w", err)
	}
	return nil
}

func writeDiff(ctx context.Context, tx pgx.Tx, turfID string, d slotDiff) error {
	if len(d.deleted) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM turf_slots WHERE turf_id = $1 AND id = ANY($2)`, turfID, d.deleted); err != nil {
			return fmt.Errorf("delete slots failed: %w", err)
		}
	}

	if len(d.updated) > 0 {
		batch := &pgx.Batch{}
		for _, s := range d.updated {
			batch.Queue(`
				UPDATE turf_slots
				SET day = $3, time_range = $4, price = $5, is_booked = $6
				WHERE id = $1 AND turf_id = $2
			`, s.ID, turfID, s.Day, s.TimeRange, s.Price, s.IsBooked)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("update slots failed: %w", err)
		}
	}

	return insertSlots(ctx, tx, turfID, d.inserted)
}

// The slot unique constraint is deferred, so violations surface on commit.
func mapSlotErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == slotUniqueConstraint {
		return ErrDuplicateSlot
	}
	return err
}

// ClaimSlot marks a free slot as booked and returns its price. claimed is
// false when the slot does not exist or is already booked. It runs on q so
// callers can make it part of a larger transaction.
func ClaimSlot(ctx context.Context, q db.Querier, turfID, day, timeRange string) (price float64, claimed bool, err error) {
	k, ok := keyOf(day, timeRange)
	if !ok {
		return 0, false, nil
	}
	const query = `
		UPDATE turf_slots
		SET is_booked = true
		WHERE turf_id = $1 AND day = $2 AND time_range = $3 AND is_booked = false
		RETURNING price
	`
	if err := q.QueryRow(ctx, query, turfID, k.day, k.timeRange).Scan(&price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("claim slot failed: %w", err)
	}
	return price, true, nil
}

// SetSlotBooked sets the booked flag of a slot. Setting the current value again is a no-op.
func SetSlotBooked(ctx context.Context, q db.Querier, turfID, day, timeRange string, booked bool) error {
	k, ok := keyOf(day, timeRange)
	if !ok {
		return ErrSlotNotFound
	}
	const query = `
		UPDATE turf_slots
		SET is_booked = $4
		WHERE turf_id = $1 AND day = $2 AND time_range = $3
	`
	ct, err := q.Exec(ctx, query, turfID, k.day, k.timeRange, booked)
	if err != nil {
		return fmt.Errorf("set slot booked failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

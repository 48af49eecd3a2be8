package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	ListConsuming(ctx context.Context, propertyID string) ([]domain.Booking, error)
	ListUnsynced(ctx context.Context) ([]domain.Booking, error)
	MarkCompleted(ctx context.Context, reference string) (*domain.Booking, bool, error)
	MarkFailed(ctx context.Context, reference string) (*domain.Booking, bool, error)
	Deactivate(ctx context.Context, reference string) (*domain.Booking, error)
	SetAvailabilitySynced(ctx context.Context, reference string, synced bool) error
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	FindCompleted(ctx context.Context, reference, email, propertyID string) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, property_id, reference, name, email, phone, check_in, check_out, guests, amount, payment_status, is_active, availability_synced, created_at, updated_at`

func scanBooking(row scanner) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.PropertyID, &b.Reference, &b.Name, &b.Email, &b.Phone, &b.CheckIn, &b.CheckOut,
		&b.Guests, &b.Amount, &b.PaymentStatus, &b.IsActive, &b.AvailabilitySynced, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func oneBooking(row pgx.Row) (*domain.Booking, error) {
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, property_id, reference, name, email, phone, check_in, check_out, guests, amount, payment_status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		b.ID, b.PropertyID, b.Reference, b.Name, b.Email, b.Phone, b.CheckIn, b.CheckOut, b.Guests, b.Amount, b.PaymentStatus, b.IsActive).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return oneBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return oneBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference))
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if filter.PropertyID != "" {
		args = append(args, filter.PropertyID)
		conds = append(conds, fmt.Sprintf("property_id=$%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status=$%d", len(args)))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListConsuming(ctx context.Context, propertyID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE property_id=$1 AND is_active AND payment_status=$2 ORDER BY check_in`,
		propertyID, domain.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListUnsynced(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE is_active AND payment_status=$1 AND NOT availability_synced ORDER BY updated_at`,
		domain.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// MarkCompleted moves a booking to completed only if it is not already
// there. The bool reports whether this call made the transition.
func (r *PGBookingRepository) MarkCompleted(ctx context.Context, reference string) (*domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now()
		WHERE reference=$2 AND payment_status<>$1
		RETURNING `+bookingColumns, domain.PaymentStatusCompleted, reference))
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// MarkFailed moves a booking to failed unless it is already failed or
// completed. A completed booking is never downgraded, whatever the caller
// read before.
func (r *PGBookingRepository) MarkFailed(ctx context.Context, reference string) (*domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now()
		WHERE reference=$2 AND payment_status NOT IN ($1, $3)
		RETURNING `+bookingColumns, domain.PaymentStatusFailed, reference, domain.PaymentStatusCompleted))
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PGBookingRepository) Deactivate(ctx context.Context, reference string) (*domain.Booking, error) {
	return oneBooking(r.db.QueryRow(ctx, `UPDATE bookings SET is_active=false, updated_at=now() WHERE reference=$1 RETURNING `+bookingColumns,
		reference))
}

func (r *PGBookingRepository) SetAvailabilitySynced(ctx context.Context, reference string, synced bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET availability_synced=$1, updated_at=now() WHERE reference=$2`, synced, reference)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now() WHERE payment_status=$2 AND created_at <= $3 RETURNING `+bookingColumns,
		domain.PaymentStatusFailed, domain.PaymentStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) FindCompleted(ctx context.Context, reference, email, propertyID string) (*domain.Booking, error) {
	return oneBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1 AND email=$2 AND property_id=$3 AND payment_status=$4`,
		reference, email, propertyID, domain.PaymentStatusCompleted))
}

func (r *PGBookingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)

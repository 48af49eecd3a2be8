package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE foreign_key_violation
const foreignKeyViolation = "23503"

type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, property *domain.Property) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context) ([]domain.Property, error)
	GetAvailability(ctx context.Context, id string) (*domain.Property, error)
	UpsertOverrides(ctx context.Context, id string, overrides []domain.DateOverride) error
	ApplyAvailability(ctx context.Context, id string, bookable *bool, overrides []domain.DateOverride) error
}

type PGPropertyRepository struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &PGPropertyRepository{db: db}
}

const propertyColumns = `id, slug, title, description, thumbnail, price_per_night, currency, location, images, features, airbnb_link, bedrooms, bathrooms, size, type, is_bookable, created_at, updated_at`

func scanProperty(row scanner) (*domain.Property, error) {
	var p domain.Property
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Thumbnail, &p.PricePerNight, &p.Currency, &p.Location,
		&p.Images, &p.Features, &p.AirbnbLink, &p.Specifications.Bedrooms, &p.Specifications.Bathrooms,
		&p.Specifications.Size, &p.Specifications.Type, &p.IsBookable, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	return r.db.QueryRow(ctx, `INSERT INTO properties (id, slug, title, description, thumbnail, price_per_night, currency, location, images, features, airbnb_link, bedrooms, bathrooms, size, type, is_bookable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`,
		p.ID, p.Slug, p.Title, p.Description, p.Thumbnail, p.PricePerNight, p.Currency, p.Location, p.Images, p.Features,
		p.AirbnbLink, p.Specifications.Bedrooms, p.Specifications.Bathrooms, p.Specifications.Size, p.Specifications.Type, p.IsBookable).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGPropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	err := r.db.QueryRow(ctx, `UPDATE properties SET slug=$2, title=$3, description=$4, thumbnail=$5, price_per_night=$6, currency=$7, location=$8,
		images=$9, features=$10, airbnb_link=$11, bedrooms=$12, bathrooms=$13, size=$14, type=$15, updated_at=now()
		WHERE id=$1 RETURNING is_bookable, created_at, updated_at`,
		p.ID, p.Slug, p.Title, p.Description, p.Thumbnail, p.PricePerNight, p.Currency, p.Location, p.Images, p.Features,
		p.AirbnbLink, p.Specifications.Bedrooms, p.Specifications.Bathrooms, p.Specifications.Size, p.Specifications.Type).
		Scan(&p.IsBookable, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPropertyNotFound
	}
	return err
}

// Delete removes a property and its overrides. Bookings keep their property
// reference, so a property with bookings reports ErrPropertyHasBookings.
func (r *PGPropertyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.ErrPropertyHasBookings
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PGPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	if p.Availability, err = r.overrides(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGPropertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.Query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

func (r *PGPropertyRepository) GetAvailability(ctx context.Context, id string) (*domain.Property, error) {
	p := domain.Property{ID: id}
	if err := r.db.QueryRow(ctx, `SELECT is_bookable FROM properties WHERE id=$1`, id).Scan(&p.IsBookable); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	overrides, err := r.overrides(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Availability = overrides
	return &p, nil
}

// UpsertOverrides writes every override in one transaction. The primary key
// on (property_id, day) keeps a single entry per day.
func (r *PGPropertyRepository) UpsertOverrides(ctx context.Context, id string, overrides []domain.DateOverride) error {
	return r.ApplyAvailability(ctx, id, nil, overrides)
}

// ApplyAvailability writes the overrides and, when bookable is set, the
// property switch in the same transaction.
func (r *PGPropertyRepository) ApplyAvailability(ctx context.Context, id string, bookable *bool, overrides []domain.DateOverride) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, o := range overrides {
		if _, err := tx.Exec(ctx, `INSERT INTO property_availability (property_id, day, is_available) VALUES ($1, $2, $3)
			ON CONFLICT (property_id, day) DO UPDATE SET is_available = EXCLUDED.is_available`,
			id, o.Date, o.IsAvailable); err != nil {
			return fmt.Errorf("upsert override %s: %w", o.Date.Format("2006-01-02"), err)
		}
	}

	var cmd pgconn.CommandTag
	if bookable != nil {
		cmd, err = tx.Exec(ctx, `UPDATE properties SET is_bookable=$1, updated_at=now() WHERE id=$2`, *bookable, id)
	} else {
		cmd, err = tx.Exec(ctx, `UPDATE properties SET updated_at=now() WHERE id=$1`, id)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return tx.Commit(ctx)
}

func (r *PGPropertyRepository) overrides(ctx context.Context, id string) ([]domain.DateOverride, error) {
	rows, err := r.db.Query(ctx, `SELECT day, is_available FROM property_availability WHERE property_id=$1 ORDER BY day`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make([]domain.DateOverride, 0)
	for rows.Next() {
		var o domain.DateOverride
		if err := rows.Scan(&o.Date, &o.IsAvailable); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

var _ PropertyRepository = (*PGPropertyRepository)(nil)

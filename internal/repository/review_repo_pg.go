package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)
	AverageRating(ctx context.Context, propertyID string) (*float64, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
}

type PGReviewRepository struct {
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	return &PGReviewRepository{db: db}
}

const reviewColumns = `id, property_id, name, email, rating, comment, booking_reference, status, is_verified_stay, created_at, updated_at`

func scanReview(row scanner) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(&rv.ID, &rv.PropertyID, &rv.Name, &rv.Email, &rv.Rating, &rv.Comment, &rv.BookingReference,
		&rv.Status, &rv.IsVerifiedStay, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

func (r *PGReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.QueryRow(ctx, `INSERT INTO reviews (id, property_id, name, email, rating, comment, booking_reference, status, is_verified_stay)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		rv.ID, rv.PropertyID, rv.Name, rv.Email, rv.Rating, rv.Comment, rv.BookingReference, rv.Status, rv.IsVerifiedStay).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
}

func (r *PGReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	return scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id=$1`, id))
}

func (r *PGReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	var (
		conds []string
		args  []any
	)
	if filter.PropertyID != "" {
		args = append(args, filter.PropertyID)
		conds = append(conds, fmt.Sprintf("property_id=$%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews`
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
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

// AverageRating averages approved reviews only. It returns nil when there
// are none.
func (r *PGReviewRepository) AverageRating(ctx context.Context, propertyID string) (*float64, error) {
	var avg *float64
	if err := r.db.QueryRow(ctx, `SELECT AVG(rating)::float8 FROM reviews WHERE property_id=$1 AND status=$2`,
		propertyID, domain.ReviewStatusApproved).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *PGReviewRepository) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error) {
	return scanReview(r.db.QueryRow(ctx, `UPDATE reviews SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+reviewColumns, status, id))
}

func (r *PGReviewRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

var _ ReviewRepository = (*PGReviewRepository)(nil)

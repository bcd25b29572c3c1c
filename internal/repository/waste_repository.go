package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reciclamais/waste-service/internal/domain"
)

// WasteRepository persists waste records. Records are append-only.
type WasteRepository interface {
	Create(ctx context.Context, waste *domain.Waste) error
	ListAll(ctx context.Context) ([]domain.Waste, error)
	// ListByPeriod returns records whose date falls in [from, to], both inclusive.
	ListByPeriod(ctx context.Context, from, to time.Time) ([]domain.Waste, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Waste, error)
}

type wasteRepository struct {
	pool *pgxpool.Pool
}

// NewWasteRepository returns a Postgres-backed implementation.
func NewWasteRepository(pool *pgxpool.Pool) WasteRepository {
	return &wasteRepository{pool: pool}
}

const selectWaste = `
        SELECT w.id, w.type, w.weight, w.date, w.recycled, w.description, w.user_id, u.name, w.created_at
        FROM waste_records w
        JOIN users u ON u.id = w.user_id`

func (r *wasteRepository) Create(ctx context.Context, waste *domain.Waste) error {
	const query = `
        INSERT INTO waste_records (type, weight, date, recycled, description, user_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		waste.Type,
		waste.Weight,
		waste.Date,
		waste.Recycled,
		waste.Description,
		waste.UserID,
	).Scan(&waste.ID, &waste.CreatedAt)
}

func (r *wasteRepository) ListAll(ctx context.Context) ([]domain.Waste, error) {
	return r.list(ctx, selectWaste+` ORDER BY w.date, w.created_at`)
}

func (r *wasteRepository) ListByPeriod(ctx context.Context, from, to time.Time) ([]domain.Waste, error) {
	return r.list(ctx, selectWaste+` WHERE w.date BETWEEN $1 AND $2 ORDER BY w.date, w.created_at`,
		domain.Day(from), domain.Day(to))
}

func (r *wasteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Waste, error) {
	return r.list(ctx, selectWaste+` WHERE w.user_id=$1 ORDER BY w.date, w.created_at`, userID)
}

func (r *wasteRepository) list(ctx context.Context, query string, args ...any) ([]domain.Waste, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWaste(rows)
}

func scanWaste(rows pgx.Rows) ([]domain.Waste, error) {
	result := []domain.Waste{}
	for rows.Next() {
		var w domain.Waste
		if err := rows.Scan(
			&w.ID,
			&w.Type,
			&w.Weight,
			&w.Date,
			&w.Recycled,
			&w.Description,
			&w.UserID,
			&w.UserName,
			&w.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

package adjustment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the adjustment does not exist.
var ErrNotFound = errors.New("adjustment: not found")

// Repository provides PostgreSQL backed persistence for adjustments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const adjustmentColumns = `id, type, date, amount, description, recorded_by, created_at`

func scanAdjustment(row pgx.Row) (Adjustment, error) {
	var a Adjustment
	err := row.Scan(&a.ID, &a.Type, &a.Date, &a.Amount, &a.Description, &a.RecordedBy, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Adjustment{}, ErrNotFound
	}
	if err != nil {
		return Adjustment{}, err
	}
	return a, nil
}

// InsertAdjustment creates a new adjustment.
func (r *Repository) InsertAdjustment(ctx context.Context, input CreateAdjustmentInput) (Adjustment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO adjustments (type, date, amount, description, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING `+adjustmentColumns,
		input.Type, input.Date, input.Amount, input.Description, input.RecordedBy)
	return scanAdjustment(row)
}

// GetAdjustment retrieves an adjustment by ID.
func (r *Repository) GetAdjustment(ctx context.Context, id int64) (Adjustment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adjustmentColumns+` FROM adjustments WHERE id = $1`, id)
	return scanAdjustment(row)
}

// ListAdjustments returns adjustments newest first with optional filters.
func (r *Repository) ListAdjustments(ctx context.Context, req ListAdjustmentsRequest) ([]Adjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, req.Type)
		argNum++
	}
	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d", argNum)
		args = append(args, req.From)
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argNum)
		args = append(args, req.To)
		argNum++
	}

	query += " ORDER BY date DESC, id DESC"

	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

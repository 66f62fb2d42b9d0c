package cashbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the cash entry does not exist.
var ErrNotFound = errors.New("cashbook: not found")

// Repository provides PostgreSQL backed persistence for cash entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, kind, date, category, subcategory, amount, description, recorded_by, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Kind, &e.Date, &e.Category, &e.Subcategory, &e.Amount, &e.Description, &e.RecordedBy, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// InsertEntry creates a new cash entry.
func (r *Repository) InsertEntry(ctx context.Context, input CreateEntryInput) (Entry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cash_entries (kind, date, category, subcategory, amount, description, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING `+entryColumns,
		input.Kind, input.Date, input.Category, input.Subcategory, input.Amount, input.Description, input.RecordedBy)
	return scanEntry(row)
}

// GetEntry retrieves a cash entry by ID.
func (r *Repository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM cash_entries WHERE id = $1`, id)
	return scanEntry(row)
}

// ListEntries returns cash entries newest first with optional filters.
func (r *Repository) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM cash_entries WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, req.Kind)
		argNum++
	}
	if req.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, req.Category)
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

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes a cash entry. Reserved for admin corrections.
func (r *Repository) DeleteEntry(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cash_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

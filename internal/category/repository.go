package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the category does not exist.
var ErrNotFound = errors.New("category: not found")

// Repository provides PostgreSQL backed persistence for categories.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertCategory(ctx context.Context, input CreateCategoryInput) (Category, error)
	GetCategoryForUpdate(ctx context.Context, id int64) (Category, error)
	UpdateSubcategories(ctx context.Context, id int64, subcategories []string) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// type reads through COALESCE so rows predating the NOT NULL default
// still scan into a plain string.
const categoryColumns = `id, name, kind, COALESCE(type, ''), subcategories, is_active, description, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.Type, &c.Subcategories, &c.IsActive, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// GetCategory retrieves a category by ID.
func (r *Repository) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

// GetCategoryByName retrieves a category by kind and exact name.
func (r *Repository) GetCategoryByName(ctx context.Context, kind Kind, name string) (Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE kind = $1 AND name = $2`, kind, name)
	return scanCategory(row)
}

// ListCategories returns active categories, optionally filtered by kind and type.
func (r *Repository) ListCategories(ctx context.Context, filter ListFilter) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE is_active = TRUE`
	args := []any{}
	argNum := 1

	if filter.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filter.Kind)
		argNum++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, filter.Type)
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertCategory(ctx context.Context, input CreateCategoryInput) (Category, error) {
	subs := input.Subcategories
	if subs == nil {
		subs = []string{}
	}
	row := r.tx.QueryRow(ctx, `
		INSERT INTO categories (name, kind, type, subcategories, is_active, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, NOW(), NOW())
		RETURNING `+categoryColumns,
		input.Name, input.Kind, input.Type, subs, input.Description)
	c, err := scanCategory(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, DuplicateCategoryError{Name: input.Name}
		}
		return Category{}, err
	}
	return c, nil
}

func (r *txRepository) GetCategoryForUpdate(ctx context.Context, id int64) (Category, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, id)
	return scanCategory(row)
}

func (r *txRepository) UpdateSubcategories(ctx context.Context, id int64, subcategories []string) error {
	tag, err := r.tx.Exec(ctx, `UPDATE categories SET subcategories = $2, updated_at = NOW() WHERE id = $1`, id, subcategories)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.tx.Exec(ctx, `UPDATE categories SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

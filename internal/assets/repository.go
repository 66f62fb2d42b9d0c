package assets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the asset does not exist.
var ErrNotFound = errors.New("assets: not found")

// Repository provides PostgreSQL backed persistence for fixed assets.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assetColumns = `id, name, purchase_date, purchase_cost, salvage_value, useful_life_years, method, is_retired, created_at, updated_at`

func scanAsset(row pgx.Row) (Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.Name, &a.PurchaseDate, &a.PurchaseCost, &a.SalvageValue,
		&a.UsefulLifeYears, &a.Method, &a.IsRetired, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrNotFound
	}
	if err != nil {
		return Asset{}, err
	}
	return a, nil
}

// InsertAsset creates a new asset.
func (r *Repository) InsertAsset(ctx context.Context, input CreateAssetInput) (Asset, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO assets (name, purchase_date, purchase_cost, salvage_value, useful_life_years, method, is_retired, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
		RETURNING `+assetColumns,
		input.Name, input.PurchaseDate, input.PurchaseCost, input.SalvageValue, input.UsefulLifeYears, MethodStraightLine)
	return scanAsset(row)
}

// GetAsset retrieves an asset by ID.
func (r *Repository) GetAsset(ctx context.Context, id int64) (Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	return scanAsset(row)
}

// UpdateAsset rewrites the mutable fields of an asset.
func (r *Repository) UpdateAsset(ctx context.Context, id int64, input UpdateAssetInput) (Asset, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE assets
		SET name = $2, purchase_date = $3, purchase_cost = $4, salvage_value = $5, useful_life_years = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+assetColumns,
		id, input.Name, input.PurchaseDate, input.PurchaseCost, input.SalvageValue, input.UsefulLifeYears)
	return scanAsset(row)
}

// SetRetired flips the retirement flag.
func (r *Repository) SetRetired(ctx context.Context, id int64, retired bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assets SET is_retired = $2, updated_at = NOW() WHERE id = $1`, id, retired)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssets returns assets oldest purchase first.
func (r *Repository) ListAssets(ctx context.Context, includeRetired bool) ([]Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	if !includeRetired {
		query += ` WHERE is_retired = FALSE`
	}
	query += ` ORDER BY purchase_date ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

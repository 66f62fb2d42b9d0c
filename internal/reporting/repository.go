package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/adjustment"
	"github.com/scholaris-erp/scholaris-erp/internal/assets"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
	"github.com/scholaris-erp/scholaris-erp/internal/category"
)

// Repository aggregates over every ledger store. Read-only.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *Repository) breakdown(ctx context.Context, query string, args ...any) ([]CategoryAmount, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryAmount
	for rows.Next() {
		var line CategoryAmount
		if err := rows.Scan(&line.Category, &line.Amount); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// SumCash totals cash entries of one kind in [from, to]. With
// operatingOnly set, entries classified under capital-type registry
// categories are excluded.
func (r *Repository) SumCash(ctx context.Context, kind cashbook.EntryKind, from, to time.Time, operatingOnly bool) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(e.amount), 0)
		FROM cash_entries e
		WHERE e.kind = $1 AND e.date >= $2 AND e.date <= $3`
	if operatingOnly {
		query += `
		AND NOT EXISTS (
			SELECT 1 FROM categories c
			WHERE c.name = e.category AND c.type = $4
		)`
		return r.sum(ctx, query, kind, from, to, category.TypeCapital)
	}
	return r.sum(ctx, query, kind, from, to)
}

// CashBreakdown groups cash entries of one kind by category.
func (r *Repository) CashBreakdown(ctx context.Context, kind cashbook.EntryKind, from, to time.Time, operatingOnly bool) ([]CategoryAmount, error) {
	query := `
		SELECT e.category, COALESCE(SUM(e.amount), 0)
		FROM cash_entries e
		WHERE e.kind = $1 AND e.date >= $2 AND e.date <= $3`
	args := []any{kind, from, to}
	if operatingOnly {
		query += `
		AND NOT EXISTS (
			SELECT 1 FROM categories c
			WHERE c.name = e.category AND c.type = $4
		)`
		args = append(args, category.TypeCapital)
	}
	query += `
		GROUP BY e.category
		ORDER BY 2 DESC, e.category`
	return r.breakdown(ctx, query, args...)
}

// SumCashInCategory totals cash entries of one kind and category up to a date.
func (r *Repository) SumCashInCategory(ctx context.Context, kind cashbook.EntryKind, categoryName string, asOf time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_entries
		WHERE kind = $1 AND category = $2 AND date <= $3`,
		kind, categoryName, asOf)
}

// SumCashInSubcategory totals cash entries of one kind and subcategory up to a date.
func (r *Repository) SumCashInSubcategory(ctx context.Context, kind cashbook.EntryKind, subcategory string, asOf time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_entries
		WHERE kind = $1 AND subcategory = $2 AND date <= $3`,
		kind, subcategory, asOf)
}

// SumCapitalIncome totals cash income classified under capital-type
// registry categories up to a date.
func (r *Repository) SumCapitalIncome(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(e.amount), 0)
		FROM cash_entries e
		JOIN categories c ON c.name = e.category AND c.kind = $1
		WHERE e.kind = $2 AND c.type = $3 AND e.date <= $4`,
		category.KindIncome, cashbook.KindIncome, category.TypeCapital, asOf)
}

// SumOperatingIncome totals cash income up to a date, excluding
// capital-type categories and the named liability and reserve categories.
func (r *Repository) SumOperatingIncome(ctx context.Context, asOf time.Time, excluded []string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(e.amount), 0)
		FROM cash_entries e
		WHERE e.kind = $1 AND e.date <= $2
		AND e.category != ALL($3)
		AND NOT EXISTS (
			SELECT 1 FROM categories c
			WHERE c.name = e.category AND c.type = $4
		)`,
		cashbook.KindIncome, asOf, excluded, category.TypeCapital)
}

// SumOperatingExpense totals cash expense up to a date, excluding the
// named capital-expenditure categories.
func (r *Repository) SumOperatingExpense(ctx context.Context, asOf time.Time, excluded []string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_entries
		WHERE kind = $1 AND date <= $2 AND category != ALL($3)`,
		cashbook.KindExpense, asOf, excluded)
}

// SumCashIncomeExcludingCategory totals cash income up to a date leaving
// out one category.
func (r *Repository) SumCashIncomeExcludingCategory(ctx context.Context, categoryName string, asOf time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_entries
		WHERE kind = $1 AND date <= $2 AND category != $3`,
		cashbook.KindIncome, asOf, categoryName)
}

// SumAdjustments totals adjustments of one type in [from, to].
func (r *Repository) SumAdjustments(ctx context.Context, typ adjustment.Type, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM adjustments
		WHERE type = $1 AND date >= $2 AND date <= $3`,
		typ, from, to)
}

// SumAccrual totals accrual entries of one kind in [from, to].
func (r *Repository) SumAccrual(ctx context.Context, kind accrual.EntryKind, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM accrual_entries
		WHERE kind = $1 AND date >= $2 AND date <= $3`,
		kind, from, to)
}

// AccrualBreakdown groups accrual entries of one kind by category.
func (r *Repository) AccrualBreakdown(ctx context.Context, kind accrual.EntryKind, from, to time.Time) ([]CategoryAmount, error) {
	return r.breakdown(ctx, `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM accrual_entries
		WHERE kind = $1 AND date >= $2 AND date <= $3
		GROUP BY category
		ORDER BY 2 DESC, category`,
		kind, from, to)
}

// SumOutstanding totals unpaid obligation balances of one kind.
func (r *Repository) SumOutstanding(ctx context.Context, kind accrual.ObligationKind) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(balance), 0)
		FROM obligations
		WHERE kind = $1 AND balance > 0`,
		kind)
}

// ListActiveAssets returns every asset still in service.
func (r *Repository) ListActiveAssets(ctx context.Context) ([]assets.Asset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, purchase_date, purchase_cost, salvage_value, useful_life_years, method, is_retired, created_at, updated_at
		FROM assets
		WHERE is_retired = FALSE
		ORDER BY purchase_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Asset
	for rows.Next() {
		var a assets.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.PurchaseDate, &a.PurchaseCost, &a.SalvageValue,
			&a.UsefulLifeYears, &a.Method, &a.IsRetired, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CapitalContributions lists capital-type cash income grouped by the
// entry description, which carries the contributor's name.
func (r *Repository) CapitalContributions(ctx context.Context) ([]Contribution, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.description, COALESCE(SUM(e.amount), 0)
		FROM cash_entries e
		JOIN categories c ON c.name = e.category AND c.kind = $1
		WHERE e.kind = $2 AND c.type = $3
		GROUP BY e.description
		ORDER BY 2 DESC, e.description`,
		category.KindIncome, cashbook.KindIncome, category.TypeCapital)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.Contributor, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

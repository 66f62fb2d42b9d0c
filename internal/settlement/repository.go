package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
)

// Repository provides PostgreSQL backed persistence for settlements. The
// transactional surface spans the obligation, cash-entry, and settlement
// tables so a settlement commits as one unit.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the settlement unit's transactional steps.
type TxRepository interface {
	// GetObligationForUpdate row-locks the obligation so concurrent
	// settlements against it serialize.
	GetObligationForUpdate(ctx context.Context, id int64) (accrual.Obligation, error)
	UpdateObligation(ctx context.Context, id int64, paid, balance decimal.Decimal, status accrual.ObligationStatus) error
	GetSourceClassification(ctx context.Context, entryID int64) (string, string, error)
	InsertCashEntry(ctx context.Context, input cashbook.CreateEntryInput) (int64, error)
	InsertSettlement(ctx context.Context, input RecordSettlementInput, category, subcategory string, cashEntryID int64) (Settlement, error)
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

const settlementColumns = `id, kind, date, amount, linked_obligation_id, payment_mode, document_type, document_number, category, subcategory, cash_entry_id, recorded_by, created_at`

func scanSettlement(row pgx.Row) (Settlement, error) {
	var s Settlement
	err := row.Scan(&s.ID, &s.Kind, &s.Date, &s.Amount, &s.LinkedObligationID, &s.PaymentMode,
		&s.DocumentType, &s.DocumentNumber, &s.Category, &s.Subcategory, &s.CashEntryID, &s.RecordedBy, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settlement{}, ErrNotFound
	}
	if err != nil {
		return Settlement{}, err
	}
	return s, nil
}

// GetSettlement retrieves a settlement by ID.
func (r *Repository) GetSettlement(ctx context.Context, id int64) (Settlement, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id)
	return scanSettlement(row)
}

// ListSettlements returns settlements newest first with optional filters.
func (r *Repository) ListSettlements(ctx context.Context, req ListSettlementsRequest) ([]Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, req.Kind)
		argNum++
	}
	if req.RecordedBy != 0 {
		query += fmt.Sprintf(" AND recorded_by = $%d", argNum)
		args = append(args, req.RecordedBy)
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

	var settlements []Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetObligationForUpdate(ctx context.Context, id int64) (accrual.Obligation, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, kind, source_entry_id, counterparty_name, original_amount, paid_amount, balance, due_date, status, description, created_at, updated_at
		FROM obligations WHERE id = $1 FOR UPDATE`, id)
	var o accrual.Obligation
	err := row.Scan(&o.ID, &o.Kind, &o.SourceEntryID, &o.CounterpartyName, &o.OriginalAmount,
		&o.PaidAmount, &o.Balance, &o.DueDate, &o.Status, &o.Description, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return accrual.Obligation{}, accrual.ErrNotFound
	}
	if err != nil {
		return accrual.Obligation{}, err
	}
	return o, nil
}

func (r *txRepository) UpdateObligation(ctx context.Context, id int64, paid, balance decimal.Decimal, status accrual.ObligationStatus) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE obligations SET paid_amount = $2, balance = $3, status = $4, updated_at = NOW() WHERE id = $1`,
		id, paid, balance, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return accrual.ErrNotFound
	}
	return nil
}

func (r *txRepository) GetSourceClassification(ctx context.Context, entryID int64) (string, string, error) {
	var cat, sub string
	err := r.tx.QueryRow(ctx, `SELECT category, subcategory FROM accrual_entries WHERE id = $1`, entryID).Scan(&cat, &sub)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", accrual.ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	return cat, sub, nil
}

func (r *txRepository) InsertCashEntry(ctx context.Context, input cashbook.CreateEntryInput) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO cash_entries (kind, date, category, subcategory, amount, description, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id`,
		input.Kind, input.Date, input.Category, input.Subcategory, input.Amount, input.Description, input.RecordedBy).Scan(&id)
	return id, err
}

func (r *txRepository) InsertSettlement(ctx context.Context, input RecordSettlementInput, category, subcategory string, cashEntryID int64) (Settlement, error) {
	var obligationID *int64
	if input.LinkedObligationID != 0 {
		obligationID = &input.LinkedObligationID
	}
	row := r.tx.QueryRow(ctx, `
		INSERT INTO settlements (kind, date, amount, linked_obligation_id, payment_mode, document_type, document_number, category, subcategory, cash_entry_id, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING `+settlementColumns,
		input.Kind, input.Date, input.Amount, obligationID, input.PaymentMode,
		input.DocumentType, input.DocumentNumber, category, subcategory, cashEntryID, input.RecordedBy)
	return scanSettlement(row)
}

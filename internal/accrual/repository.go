package accrual

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the entry or obligation does not exist.
var ErrNotFound = errors.New("accrual: not found")

// Repository provides PostgreSQL backed persistence for accrual entries
// and their obligations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional steps of entry creation.
type TxRepository interface {
	InsertEntry(ctx context.Context, input CreateEntryInput) (Entry, error)
	InsertObligation(ctx context.Context, entry Entry) (Obligation, error)
	SetEntryObligation(ctx context.Context, entryID, obligationID int64) error
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

const entryColumns = `id, kind, date, counterparty_name, category, subcategory, amount, due_date, description, linked_obligation_id, source_ref, recorded_by, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var obligationID *int64
	err := row.Scan(&e.ID, &e.Kind, &e.Date, &e.CounterpartyName, &e.Category, &e.Subcategory,
		&e.Amount, &e.DueDate, &e.Description, &obligationID, &e.SourceRef, &e.RecordedBy, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	if obligationID != nil {
		e.LinkedObligationID = *obligationID
	}
	return e, nil
}

const obligationColumns = `id, kind, source_entry_id, counterparty_name, original_amount, paid_amount, balance, due_date, status, description, created_at, updated_at`

func scanObligation(row pgx.Row) (Obligation, error) {
	var o Obligation
	err := row.Scan(&o.ID, &o.Kind, &o.SourceEntryID, &o.CounterpartyName, &o.OriginalAmount,
		&o.PaidAmount, &o.Balance, &o.DueDate, &o.Status, &o.Description, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Obligation{}, ErrNotFound
	}
	if err != nil {
		return Obligation{}, err
	}
	return o, nil
}

// GetEntry retrieves an accrual entry by ID.
func (r *Repository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM accrual_entries WHERE id = $1`, id)
	return scanEntry(row)
}

// ListEntries returns accrual entries newest first with optional filters.
func (r *Repository) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM accrual_entries WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, req.Kind)
		argNum++
	}
	if req.Counterparty != "" {
		query += fmt.Sprintf(" AND counterparty_name ILIKE $%d", argNum)
		args = append(args, "%"+req.Counterparty+"%")
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

// GetObligation retrieves an obligation by ID.
func (r *Repository) GetObligation(ctx context.Context, id int64) (Obligation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+obligationColumns+` FROM obligations WHERE id = $1`, id)
	return scanObligation(row)
}

// ListObligations returns obligations due-date ascending, nulls last.
func (r *Repository) ListObligations(ctx context.Context, req ListObligationsRequest) ([]Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, req.Kind)
		argNum++
	}
	if req.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, req.Status)
		argNum++
	}
	if req.Counterparty != "" {
		query += fmt.Sprintf(" AND counterparty_name ILIKE $%d", argNum)
		args = append(args, "%"+req.Counterparty+"%")
		argNum++
	}

	query += " ORDER BY due_date ASC NULLS LAST, id ASC"

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

	var obligations []Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, o)
	}
	return obligations, rows.Err()
}

// ListOutstanding returns obligations with a positive balance.
func (r *Repository) ListOutstanding(ctx context.Context, kind ObligationKind) ([]Obligation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE kind = $1 AND balance > 0 ORDER BY due_date ASC NULLS LAST, id ASC`,
		kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obligations []Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, o)
	}
	return obligations, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertEntry(ctx context.Context, input CreateEntryInput) (Entry, error) {
	row := r.tx.QueryRow(ctx, `
		INSERT INTO accrual_entries (kind, date, counterparty_name, category, subcategory, amount, due_date, description, source_ref, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, gen_random_uuid(), $9, NOW())
		RETURNING `+entryColumns,
		input.Kind, input.Date, input.CounterpartyName, input.Category, input.Subcategory,
		input.Amount, input.DueDate, input.Description, input.RecordedBy)
	return scanEntry(row)
}

func (r *txRepository) InsertObligation(ctx context.Context, entry Entry) (Obligation, error) {
	row := r.tx.QueryRow(ctx, `
		INSERT INTO obligations (kind, source_entry_id, counterparty_name, original_amount, paid_amount, balance, due_date, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+obligationColumns,
		entry.Kind.ObligationKind(), entry.ID, entry.CounterpartyName, entry.Amount,
		entry.DueDate, StatusUnpaid, entry.Description)
	return scanObligation(row)
}

func (r *txRepository) SetEntryObligation(ctx context.Context, entryID, obligationID int64) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE accrual_entries SET linked_obligation_id = $2 WHERE id = $1 AND linked_obligation_id IS NULL`,
		entryID, obligationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("accrual: entry missing or already linked")
	}
	return nil
}

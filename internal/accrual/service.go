package accrual

import (
	"context"
	"fmt"
	"time"

	"github.com/scholaris-erp/scholaris-erp/internal/category"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RepositoryPort defines data access methods for accrual tracking.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetEntry(ctx context.Context, id int64) (Entry, error)
	ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error)
	GetObligation(ctx context.Context, id int64) (Obligation, error)
	ListObligations(ctx context.Context, req ListObligationsRequest) ([]Obligation, error)
	ListOutstanding(ctx context.Context, kind ObligationKind) ([]Obligation, error)
}

// ClassificationPort validates category/subcategory pairs against the registry.
type ClassificationPort interface {
	ValidateSelection(ctx context.Context, kind category.Kind, name, subcategory string) error
}

// AuditPort records ledger events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CachePort invalidates derived report caches after a write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Service creates accrual entries paired with obligations and exposes the
// obligation read queries.
type Service struct {
	repo       RepositoryPort
	categories ClassificationPort
	audit      AuditPort
	cache      CachePort
	now        func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, categories ClassificationPort, audit AuditPort, cache CachePort) *Service {
	return &Service{repo: repo, categories: categories, audit: audit, cache: cache, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func taxonomyFor(kind EntryKind) category.Kind {
	if kind == KindRevenue {
		return category.KindIncome
	}
	return category.KindExpense
}

// CreateEntry persists an accrual entry, spawns its obligation, and
// back-links the entry, as one atomic unit.
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (CreatedAccrual, error) {
	if !input.Kind.Valid() {
		return CreatedAccrual{}, shared.NewValidationError("kind", "must be REVENUE or EXPENSE")
	}
	if input.Date.IsZero() {
		return CreatedAccrual{}, shared.NewValidationError("date", "required")
	}
	if input.CounterpartyName == "" {
		return CreatedAccrual{}, shared.NewValidationError("counterparty_name", "required")
	}
	if input.Category == "" {
		return CreatedAccrual{}, shared.NewValidationError("category", "required")
	}
	if !input.Amount.IsPositive() {
		return CreatedAccrual{}, shared.NewValidationError("amount", "must be positive")
	}
	if input.DueDate != nil && input.DueDate.Before(input.Date) {
		return CreatedAccrual{}, shared.NewValidationError("due_date", "before entry date")
	}
	if input.RecordedBy == 0 {
		return CreatedAccrual{}, shared.ErrActorRequired
	}
	if s.categories != nil {
		if err := s.categories.ValidateSelection(ctx, taxonomyFor(input.Kind), input.Category, input.Subcategory); err != nil {
			return CreatedAccrual{}, err
		}
	}

	var created CreatedAccrual
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.InsertEntry(ctx, input)
		if err != nil {
			return err
		}
		obligation, err := tx.InsertObligation(ctx, entry)
		if err != nil {
			return err
		}
		if err := tx.SetEntryObligation(ctx, entry.ID, obligation.ID); err != nil {
			return err
		}
		entry.LinkedObligationID = obligation.ID
		created = CreatedAccrual{Entry: entry, Obligation: obligation}
		return nil
	})
	if err != nil {
		return CreatedAccrual{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.RecordedBy,
			Action:   "accrual.create",
			Entity:   "accrual_entry",
			EntityID: fmt.Sprintf("%d", created.Entry.ID),
			Meta: map[string]any{
				"kind":          created.Entry.Kind,
				"amount":        created.Entry.Amount.String(),
				"obligation_id": created.Obligation.ID,
			},
			At: s.now(),
		})
	}
	s.bump(ctx)
	return created, nil
}

// GetEntry retrieves one accrual entry.
func (s *Service) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListEntries returns accrual entries newest first.
func (s *Service) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error) {
	if req.Kind != "" && !req.Kind.Valid() {
		return nil, shared.NewValidationError("kind", "must be REVENUE or EXPENSE")
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return nil, shared.NewValidationError("to", "end date before start date")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListEntries(ctx, req)
}

// GetObligation retrieves one obligation.
func (s *Service) GetObligation(ctx context.Context, id int64) (Obligation, error) {
	return s.repo.GetObligation(ctx, id)
}

// ListObligations returns obligations due-date ascending, nulls last.
func (s *Service) ListObligations(ctx context.Context, req ListObligationsRequest) ([]Obligation, error) {
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListObligations(ctx, req)
}

// CalculateAging groups outstanding balances by days overdue as of a date.
func (s *Service) CalculateAging(ctx context.Context, kind ObligationKind, asOf time.Time) (AgingBucket, error) {
	if kind != Receivable && kind != Payable {
		return AgingBucket{}, shared.NewValidationError("kind", "must be RECEIVABLE or PAYABLE")
	}
	outstanding, err := s.repo.ListOutstanding(ctx, kind)
	if err != nil {
		return AgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	var bucket AgingBucket
	for _, obligation := range outstanding {
		due := asOf
		if obligation.DueDate != nil {
			due = *obligation.DueDate
		}
		days := int(asOf.Sub(due).Hours() / 24)
		switch {
		case days <= 0:
			bucket.Current = bucket.Current.Add(obligation.Balance)
		case days <= 30:
			bucket.Bucket30 = bucket.Bucket30.Add(obligation.Balance)
		case days <= 60:
			bucket.Bucket60 = bucket.Bucket60.Add(obligation.Balance)
		case days <= 90:
			bucket.Bucket90 = bucket.Bucket90.Add(obligation.Balance)
		default:
			bucket.Bucket120 = bucket.Bucket120.Add(obligation.Balance)
		}
	}
	return bucket, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

package cashbook

import (
	"context"
	"fmt"

	"github.com/scholaris-erp/scholaris-erp/internal/category"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RepositoryPort defines data access methods for the cash book.
type RepositoryPort interface {
	InsertEntry(ctx context.Context, input CreateEntryInput) (Entry, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
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

// Service handles cash book business logic.
type Service struct {
	repo       RepositoryPort
	categories ClassificationPort
	audit      AuditPort
	cache      CachePort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, categories ClassificationPort, audit AuditPort, cache CachePort) *Service {
	return &Service{repo: repo, categories: categories, audit: audit, cache: cache}
}

func taxonomyFor(kind EntryKind) category.Kind {
	if kind == KindIncome {
		return category.KindIncome
	}
	return category.KindExpense
}

// CreateEntry records a raw cash movement.
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (Entry, error) {
	if !input.Kind.Valid() {
		return Entry{}, shared.NewValidationError("kind", "must be INCOME or EXPENSE")
	}
	if input.Date.IsZero() {
		return Entry{}, shared.NewValidationError("date", "required")
	}
	if input.Category == "" {
		return Entry{}, shared.NewValidationError("category", "required")
	}
	if !input.Amount.IsPositive() {
		return Entry{}, shared.NewValidationError("amount", "must be positive")
	}
	if input.RecordedBy == 0 {
		return Entry{}, shared.ErrActorRequired
	}
	if s.categories != nil {
		if err := s.categories.ValidateSelection(ctx, taxonomyFor(input.Kind), input.Category, input.Subcategory); err != nil {
			return Entry{}, err
		}
	}

	entry, err := s.repo.InsertEntry(ctx, input)
	if err != nil {
		return Entry{}, err
	}
	s.bump(ctx)
	return entry, nil
}

// GetEntry retrieves one cash entry.
func (s *Service) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListEntries returns cash entries newest first.
func (s *Service) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error) {
	if req.Kind != "" && !req.Kind.Valid() {
		return nil, shared.NewValidationError("kind", "must be INCOME or EXPENSE")
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return nil, shared.NewValidationError("to", "end date before start date")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListEntries(ctx, req)
}

// DeleteEntry removes a cash entry as an audited admin correction.
func (s *Service) DeleteEntry(ctx context.Context, id, actorID int64) error {
	if actorID == 0 {
		return shared.ErrActorRequired
	}
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "cashbook.delete",
			Entity:   "cash_entry",
			EntityID: fmt.Sprintf("%d", id),
			Meta: map[string]any{
				"kind":     entry.Kind,
				"amount":   entry.Amount.String(),
				"category": entry.Category,
			},
		})
	}
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RepositoryPort defines data access methods for settlements.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSettlement(ctx context.Context, id int64) (Settlement, error)
	ListSettlements(ctx context.Context, req ListSettlementsRequest) ([]Settlement, error)
}

// IdempotencyPort guards against double-applied resubmissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditPort records ledger events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CachePort invalidates derived report caches after a write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Result pairs a created settlement with the obligation state it left behind.
type Result struct {
	Settlement Settlement          `json:"settlement"`
	Obligation *accrual.Obligation `json:"obligation,omitempty"`
}

// Service is the single writer that clears obligations and mirrors their
// cash effect into the cash book. Every call commits at most one
// obligation mutation, exactly one cash entry, and exactly one settlement
// record, or nothing at all.
type Service struct {
	repo        RepositoryPort
	defaults    Defaults
	idempotency IdempotencyPort
	audit       AuditPort
	cache       CachePort
	now         func() time.Time
}

// NewService builds Service instance. Defaults must name the fallback
// classifications; they are configuration, never compiled-in literals.
func NewService(repo RepositoryPort, defaults Defaults, idempotency IdempotencyPort, audit AuditPort, cache CachePort) (*Service, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		repo:        repo,
		defaults:    defaults,
		idempotency: idempotency,
		audit:       audit,
		cache:       cache,
		now:         time.Now,
	}, nil
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Record validates and applies one settlement as a single atomic unit.
func (s *Service) Record(ctx context.Context, input RecordSettlementInput) (Result, error) {
	if !input.Kind.Valid() {
		return Result{}, shared.NewValidationError("kind", "must be RECEIPT, PAYMENT, or CAPITAL_INJECTION")
	}
	if input.Date.IsZero() {
		return Result{}, shared.NewValidationError("date", "required")
	}
	if !input.Amount.IsPositive() {
		return Result{}, shared.NewValidationError("amount", "must be positive")
	}
	if input.PaymentMode == "" {
		return Result{}, shared.NewValidationError("payment_mode", "required")
	}
	if input.RecordedBy == 0 {
		return Result{}, shared.ErrActorRequired
	}
	switch input.Kind {
	case KindReceipt, KindPayment:
		if input.LinkedObligationID == 0 {
			return Result{}, shared.NewValidationError("linked_obligation_id", "required")
		}
	case KindCapitalInjection:
		if input.LinkedObligationID != 0 {
			return Result{}, shared.NewValidationError("linked_obligation_id", "capital injections carry no obligation")
		}
	}
	// Document rules are checked before any store access.
	if input.Kind == KindPayment {
		if input.DocumentType == "" {
			return Result{}, MissingDocumentTypeError{}
		}
		if input.DocumentType == DocumentTypeReceipt && input.DocumentNumber == "" {
			return Result{}, MissingDocumentNumberError{DocumentType: input.DocumentType}
		}
	}

	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "settlement"); err != nil {
			return Result{}, err
		}
	}

	var result Result
	var err error
	switch input.Kind {
	case KindCapitalInjection:
		result, err = s.recordCapitalInjection(ctx, input)
	default:
		result, err = s.recordObligationSettlement(ctx, input)
	}
	if err != nil {
		if s.idempotency != nil && input.IdempotencyKey != "" {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return Result{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.RecordedBy,
			Action:   "settlement.record",
			Entity:   "settlement",
			EntityID: fmt.Sprintf("%d", result.Settlement.ID),
			Meta: map[string]any{
				"kind":          result.Settlement.Kind,
				"amount":        result.Settlement.Amount.String(),
				"obligation_id": input.LinkedObligationID,
			},
			At: s.now(),
		})
	}
	s.bump(ctx)
	return result, nil
}

func (s *Service) recordObligationSettlement(ctx context.Context, input RecordSettlementInput) (Result, error) {
	wantKind := accrual.Receivable
	cashKind := cashbook.KindIncome
	fallback := s.defaults.Receivable
	if input.Kind == KindPayment {
		wantKind = accrual.Payable
		cashKind = cashbook.KindExpense
		fallback = s.defaults.Payable
	}

	var result Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		obligation, err := tx.GetObligationForUpdate(ctx, input.LinkedObligationID)
		if err != nil {
			return err
		}
		if obligation.Kind != wantKind {
			return ObligationKindMismatchError{SettlementKind: input.Kind, ObligationKind: obligation.Kind}
		}
		if input.Amount.GreaterThan(obligation.Balance) {
			return InsufficientBalanceError{
				ObligationID: obligation.ID,
				Balance:      obligation.Balance,
				Requested:    input.Amount,
			}
		}

		paid := obligation.PaidAmount.Add(input.Amount)
		balance := obligation.OriginalAmount.Sub(paid)
		status := accrual.StatusFor(obligation.OriginalAmount, balance)
		if err := tx.UpdateObligation(ctx, obligation.ID, paid, balance, status); err != nil {
			return err
		}

		// The mirrored cash entry inherits its classification from the
		// source accrual entry, falling back to the configured pair when
		// the source was purged.
		category, subcategory, err := tx.GetSourceClassification(ctx, obligation.SourceEntryID)
		if err != nil {
			if !errors.Is(err, accrual.ErrNotFound) {
				return err
			}
			category, subcategory = fallback.Category, fallback.Subcategory
		}

		description := fmt.Sprintf("Receipt from %s", obligation.CounterpartyName)
		if input.Kind == KindPayment {
			description = fmt.Sprintf("Payment to %s", obligation.CounterpartyName)
		}
		cashEntryID, err := tx.InsertCashEntry(ctx, cashbook.CreateEntryInput{
			Kind:        cashKind,
			Date:        input.Date,
			Category:    category,
			Subcategory: subcategory,
			Amount:      input.Amount,
			Description: description,
			RecordedBy:  input.RecordedBy,
		})
		if err != nil {
			return err
		}

		created, err := tx.InsertSettlement(ctx, input, category, subcategory, cashEntryID)
		if err != nil {
			return err
		}

		obligation.PaidAmount = paid
		obligation.Balance = balance
		obligation.Status = status
		result = Result{Settlement: created, Obligation: &obligation}
		return nil
	})
	return result, err
}

func (s *Service) recordCapitalInjection(ctx context.Context, input RecordSettlementInput) (Result, error) {
	category, subcategory := input.Category, input.Subcategory
	if category == "" {
		category, subcategory = s.defaults.Capital.Category, s.defaults.Capital.Subcategory
	}

	var result Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cashEntryID, err := tx.InsertCashEntry(ctx, cashbook.CreateEntryInput{
			Kind:        cashbook.KindIncome,
			Date:        input.Date,
			Category:    category,
			Subcategory: subcategory,
			Amount:      input.Amount,
			Description: "Capital injection",
			RecordedBy:  input.RecordedBy,
		})
		if err != nil {
			return err
		}
		created, err := tx.InsertSettlement(ctx, input, category, subcategory, cashEntryID)
		if err != nil {
			return err
		}
		result = Result{Settlement: created}
		return nil
	})
	return result, err
}

// Get retrieves one settlement.
func (s *Service) Get(ctx context.Context, id int64) (Settlement, error) {
	return s.repo.GetSettlement(ctx, id)
}

// List returns settlements newest first.
func (s *Service) List(ctx context.Context, req ListSettlementsRequest) ([]Settlement, error) {
	if req.Kind != "" && !req.Kind.Valid() {
		return nil, shared.NewValidationError("kind", "unknown settlement kind")
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return nil, shared.NewValidationError("to", "end date before start date")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListSettlements(ctx, req)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

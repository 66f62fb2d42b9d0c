package adjustment

import (
	"context"
	"fmt"
	"time"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RepositoryPort defines data access methods for adjustments.
type RepositoryPort interface {
	InsertAdjustment(ctx context.Context, input CreateAdjustmentInput) (Adjustment, error)
	GetAdjustment(ctx context.Context, id int64) (Adjustment, error)
	ListAdjustments(ctx context.Context, req ListAdjustmentsRequest) ([]Adjustment, error)
}

// AuditPort records adjustment writes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CachePort invalidates derived report caches after a write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Service manages manual profit-and-loss adjustments.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	cache CachePort
	now   func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditPort, cache CachePort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

// Create records an adjustment.
func (s *Service) Create(ctx context.Context, input CreateAdjustmentInput) (Adjustment, error) {
	if !input.Type.Valid() {
		return Adjustment{}, shared.NewValidationError("type", "unknown adjustment type")
	}
	if input.Date.IsZero() {
		return Adjustment{}, shared.NewValidationError("date", "required")
	}
	if !input.Amount.IsPositive() {
		return Adjustment{}, shared.NewValidationError("amount", "must be positive")
	}
	if input.Description == "" {
		return Adjustment{}, shared.NewValidationError("description", "required")
	}
	if input.RecordedBy == 0 {
		return Adjustment{}, shared.ErrActorRequired
	}

	adj, err := s.repo.InsertAdjustment(ctx, input)
	if err != nil {
		return Adjustment{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.RecordedBy,
			Action:   "adjustment.create",
			Entity:   "adjustment",
			EntityID: fmt.Sprintf("%d", adj.ID),
			Meta: map[string]any{
				"type":   adj.Type,
				"amount": adj.Amount.String(),
			},
			At: s.now(),
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return adj, nil
}

// Get retrieves one adjustment.
func (s *Service) Get(ctx context.Context, id int64) (Adjustment, error) {
	return s.repo.GetAdjustment(ctx, id)
}

// List returns adjustments in a range.
func (s *Service) List(ctx context.Context, req ListAdjustmentsRequest) ([]Adjustment, error) {
	if req.Type != "" && !req.Type.Valid() {
		return nil, shared.NewValidationError("type", "unknown adjustment type")
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return nil, shared.NewValidationError("to", "end date before start date")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	return s.repo.ListAdjustments(ctx, req)
}

package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RepositoryPort defines data access methods for assets.
type RepositoryPort interface {
	InsertAsset(ctx context.Context, input CreateAssetInput) (Asset, error)
	GetAsset(ctx context.Context, id int64) (Asset, error)
	UpdateAsset(ctx context.Context, id int64, input UpdateAssetInput) (Asset, error)
	SetRetired(ctx context.Context, id int64, retired bool) error
	ListAssets(ctx context.Context, includeRetired bool) ([]Asset, error)
}

// AuditPort records asset register changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CachePort invalidates derived report caches after a write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Service manages the fixed-asset register.
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

func validateAssetFields(name string, purchaseDate time.Time, input UpdateAssetInput) error {
	if name == "" {
		return shared.NewValidationError("name", "required")
	}
	if purchaseDate.IsZero() {
		return shared.NewValidationError("purchase_date", "required")
	}
	if input.PurchaseCost.IsNegative() || input.PurchaseCost.IsZero() {
		return shared.NewValidationError("purchase_cost", "must be positive")
	}
	if input.SalvageValue.IsNegative() {
		return shared.NewValidationError("salvage_value", "cannot be negative")
	}
	if input.SalvageValue.GreaterThan(input.PurchaseCost) {
		return shared.NewValidationError("salvage_value", "cannot exceed purchase cost")
	}
	if input.UsefulLifeYears <= 0 {
		return shared.NewValidationError("useful_life_years", "must be positive")
	}
	return nil
}

// Create registers a new asset.
func (s *Service) Create(ctx context.Context, input CreateAssetInput) (Asset, error) {
	if input.RecordedBy == 0 {
		return Asset{}, shared.ErrActorRequired
	}
	if err := validateAssetFields(input.Name, input.PurchaseDate, UpdateAssetInput(input)); err != nil {
		return Asset{}, err
	}
	asset, err := s.repo.InsertAsset(ctx, input)
	if err != nil {
		return Asset{}, err
	}
	s.recordAudit(ctx, input.RecordedBy, "assets.create", asset)
	s.bump(ctx)
	return asset, nil
}

// Update rewrites an asset's descriptive fields.
func (s *Service) Update(ctx context.Context, id int64, input UpdateAssetInput) (Asset, error) {
	if input.RecordedBy == 0 {
		return Asset{}, shared.ErrActorRequired
	}
	if err := validateAssetFields(input.Name, input.PurchaseDate, input); err != nil {
		return Asset{}, err
	}
	asset, err := s.repo.UpdateAsset(ctx, id, input)
	if err != nil {
		return Asset{}, err
	}
	s.recordAudit(ctx, input.RecordedBy, "assets.update", asset)
	s.bump(ctx)
	return asset, nil
}

// Retire marks an asset as out of service. Retired assets keep their
// history but stop accruing depreciation in new reports.
func (s *Service) Retire(ctx context.Context, id int64, actorID int64) error {
	if actorID == 0 {
		return shared.ErrActorRequired
	}
	if err := s.repo.SetRetired(ctx, id, true); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "assets.retire",
			Entity:   "asset",
			EntityID: fmt.Sprintf("%d", id),
			At:       s.now(),
		})
	}
	s.bump(ctx)
	return nil
}

// Get retrieves one asset.
func (s *Service) Get(ctx context.Context, id int64) (Asset, error) {
	return s.repo.GetAsset(ctx, id)
}

// List returns assets, optionally including retired ones.
func (s *Service) List(ctx context.Context, includeRetired bool) ([]Asset, error) {
	return s.repo.ListAssets(ctx, includeRetired)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, asset Asset) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "asset",
		EntityID: fmt.Sprintf("%d", asset.ID),
		Meta: map[string]any{
			"name":         asset.Name,
			"purchase_cost": asset.PurchaseCost.String(),
		},
		At: s.now(),
	})
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

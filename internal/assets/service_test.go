package assets

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

type memoryAssetRepo struct {
	nextID int64
	assets map[int64]Asset
}

func newMemoryAssetRepo() *memoryAssetRepo {
	return &memoryAssetRepo{nextID: 1, assets: make(map[int64]Asset)}
}

func (r *memoryAssetRepo) InsertAsset(_ context.Context, input CreateAssetInput) (Asset, error) {
	asset := Asset{
		ID:              r.nextID,
		Name:            input.Name,
		PurchaseDate:    input.PurchaseDate,
		PurchaseCost:    input.PurchaseCost,
		SalvageValue:    input.SalvageValue,
		UsefulLifeYears: input.UsefulLifeYears,
		Method:          MethodStraightLine,
		CreatedAt:       time.Now(),
	}
	r.nextID++
	r.assets[asset.ID] = asset
	return asset, nil
}

func (r *memoryAssetRepo) GetAsset(_ context.Context, id int64) (Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	return asset, nil
}

func (r *memoryAssetRepo) UpdateAsset(_ context.Context, id int64, input UpdateAssetInput) (Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	asset.Name = input.Name
	asset.PurchaseDate = input.PurchaseDate
	asset.PurchaseCost = input.PurchaseCost
	asset.SalvageValue = input.SalvageValue
	asset.UsefulLifeYears = input.UsefulLifeYears
	asset.UpdatedAt = time.Now()
	r.assets[id] = asset
	return asset, nil
}

func (r *memoryAssetRepo) SetRetired(_ context.Context, id int64, retired bool) error {
	asset, ok := r.assets[id]
	if !ok {
		return ErrNotFound
	}
	asset.IsRetired = retired
	r.assets[id] = asset
	return nil
}

func (r *memoryAssetRepo) ListAssets(_ context.Context, includeRetired bool) ([]Asset, error) {
	var out []Asset
	for _, asset := range r.assets {
		if asset.IsRetired && !includeRetired {
			continue
		}
		out = append(out, asset)
	}
	return out, nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type memoryCache struct {
	bumps int
}

func (c *memoryCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

func validAssetInput() CreateAssetInput {
	return CreateAssetInput{
		Name:            "School Bus",
		PurchaseDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PurchaseCost:    decimal.NewFromInt(100000),
		SalvageValue:    decimal.NewFromInt(10000),
		UsefulLifeYears: 9,
		RecordedBy:      1,
	}
}

func TestCreateAsset(t *testing.T) {
	repo := newMemoryAssetRepo()
	audit := &memoryAudit{}
	cache := &memoryCache{}
	svc := NewService(repo, audit, cache)

	asset, err := svc.Create(context.Background(), validAssetInput())
	require.NoError(t, err)
	require.NotZero(t, asset.ID)
	require.Equal(t, MethodStraightLine, asset.Method)
	require.False(t, asset.IsRetired)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "assets.create", audit.logs[0].Action)
	require.Equal(t, 1, cache.bumps)
}

func TestCreateAssetValidation(t *testing.T) {
	svc := NewService(newMemoryAssetRepo(), nil, nil)
	ctx := context.Background()

	input := validAssetInput()
	input.Name = ""
	_, err := svc.Create(ctx, input)
	require.Error(t, err)

	input = validAssetInput()
	input.PurchaseDate = time.Time{}
	_, err = svc.Create(ctx, input)
	require.Error(t, err)

	input = validAssetInput()
	input.PurchaseCost = decimal.Zero
	_, err = svc.Create(ctx, input)
	require.Error(t, err)

	input = validAssetInput()
	input.SalvageValue = decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, input)
	require.Error(t, err)

	// Salvage above cost would produce a negative depreciable base.
	input = validAssetInput()
	input.SalvageValue = input.PurchaseCost.Add(decimal.NewFromInt(1))
	_, err = svc.Create(ctx, input)
	require.Error(t, err)

	input = validAssetInput()
	input.UsefulLifeYears = 0
	_, err = svc.Create(ctx, input)
	require.Error(t, err)

	input = validAssetInput()
	input.RecordedBy = 0
	_, err = svc.Create(ctx, input)
	require.ErrorIs(t, err, shared.ErrActorRequired)
}

func TestUpdateAsset(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := NewService(repo, &memoryAudit{}, nil)
	ctx := context.Background()

	asset, err := svc.Create(ctx, validAssetInput())
	require.NoError(t, err)

	update := UpdateAssetInput(validAssetInput())
	update.Name = "School Bus (rebuilt engine)"
	update.SalvageValue = decimal.NewFromInt(15000)

	updated, err := svc.Update(ctx, asset.ID, update)
	require.NoError(t, err)
	require.Equal(t, "School Bus (rebuilt engine)", updated.Name)
	require.True(t, updated.SalvageValue.Equal(decimal.NewFromInt(15000)))

	_, err = svc.Update(ctx, 999, update)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRetireAsset(t *testing.T) {
	repo := newMemoryAssetRepo()
	audit := &memoryAudit{}
	svc := NewService(repo, audit, nil)
	ctx := context.Background()

	asset, err := svc.Create(ctx, validAssetInput())
	require.NoError(t, err)

	require.NoError(t, svc.Retire(ctx, asset.ID, 7))

	got, err := svc.Get(ctx, asset.ID)
	require.NoError(t, err)
	require.True(t, got.IsRetired)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.Equal(t, "assets.retire", audit.logs[len(audit.logs)-1].Action)
	require.ErrorIs(t, svc.Retire(ctx, asset.ID, 0), shared.ErrActorRequired)
}

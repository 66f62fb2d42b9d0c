package assets

import (
	"time"

	"github.com/shopspring/decimal"
)

// MethodStraightLine is the only supported depreciation method.
const MethodStraightLine = "StraightLine"

// Asset is a depreciable fixed asset. Depreciation figures are derived,
// never stored.
type Asset struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	PurchaseCost    decimal.Decimal `json:"purchase_cost"`
	SalvageValue    decimal.Decimal `json:"salvage_value"`
	UsefulLifeYears int             `json:"useful_life_years"`
	Method          string          `json:"method"`
	IsRetired       bool            `json:"is_retired"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AnnualDepreciation is the straight-line yearly charge.
func (a Asset) AnnualDepreciation() decimal.Decimal {
	if a.UsefulLifeYears <= 0 {
		return decimal.Zero
	}
	return a.PurchaseCost.Sub(a.SalvageValue).Div(decimal.NewFromInt(int64(a.UsefulLifeYears)))
}

// PeriodDepreciation apportions the annual charge over the slice of
// [start, end] the asset was in service. Both endpoints count as days in
// service; an asset purchased after end depreciates nothing.
func (a Asset) PeriodDepreciation(start, end time.Time) decimal.Decimal {
	if end.Before(a.PurchaseDate) {
		return decimal.Zero
	}
	effectiveStart := start
	if a.PurchaseDate.After(start) {
		effectiveStart = a.PurchaseDate
	}
	if end.Before(effectiveStart) {
		return decimal.Zero
	}
	days := int64(end.Sub(effectiveStart).Hours()/24) + 1
	return a.AnnualDepreciation().
		Mul(decimal.NewFromInt(days)).
		Div(decimal.NewFromInt(365)).
		Round(2)
}

// CreateAssetInput carries fields for a new asset.
type CreateAssetInput struct {
	Name            string
	PurchaseDate    time.Time
	PurchaseCost    decimal.Decimal
	SalvageValue    decimal.Decimal
	UsefulLifeYears int
	RecordedBy      int64
}

// UpdateAssetInput carries mutable asset fields.
type UpdateAssetInput struct {
	Name            string
	PurchaseDate    time.Time
	PurchaseCost    decimal.Decimal
	SalvageValue    decimal.Decimal
	UsefulLifeYears int
	RecordedBy      int64
}

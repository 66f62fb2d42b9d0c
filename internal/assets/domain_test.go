package assets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func schoolBus() Asset {
	return Asset{
		Name:            "School Bus",
		PurchaseDate:    date(2024, time.January, 1),
		PurchaseCost:    decimal.NewFromInt(100000),
		SalvageValue:    decimal.NewFromInt(10000),
		UsefulLifeYears: 9,
		Method:          MethodStraightLine,
	}
}

func TestAnnualDepreciation(t *testing.T) {
	require.True(t, schoolBus().AnnualDepreciation().Equal(decimal.NewFromInt(10000)))

	zeroLife := schoolBus()
	zeroLife.UsefulLifeYears = 0
	require.True(t, zeroLife.AnnualDepreciation().IsZero())
}

func TestPeriodDepreciationSecondHalfOfYear(t *testing.T) {
	// 184 days in service out of 365.
	got := schoolBus().PeriodDepreciation(date(2024, time.July, 1), date(2024, time.December, 31))
	require.True(t, got.Equal(decimal.RequireFromString("5041.10")), got.String())
}

func TestPeriodDepreciationBeforePurchase(t *testing.T) {
	got := schoolBus().PeriodDepreciation(date(2023, time.January, 1), date(2023, time.December, 31))
	require.True(t, got.IsZero())
}

func TestPeriodDepreciationMidPeriodPurchase(t *testing.T) {
	a := schoolBus()
	a.PurchaseDate = date(2024, time.March, 1)

	full := schoolBus().PeriodDepreciation(date(2024, time.January, 1), date(2024, time.June, 30))
	partial := a.PeriodDepreciation(date(2024, time.January, 1), date(2024, time.June, 30))
	require.True(t, partial.LessThan(full))
	require.True(t, partial.IsPositive())
}

func TestPeriodDepreciationClampsToPurchaseDate(t *testing.T) {
	// Asset bought inside the period depreciates only from purchase.
	a := schoolBus()
	a.PurchaseDate = date(2024, time.December, 31)
	got := a.PeriodDepreciation(date(2024, time.July, 1), date(2024, time.December, 31))
	// One day in service.
	want := decimal.NewFromInt(10000).Div(decimal.NewFromInt(365)).Round(2)
	require.True(t, got.Equal(want), got.String())
}

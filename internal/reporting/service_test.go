package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/adjustment"
	"github.com/scholaris-erp/scholaris-erp/internal/assets"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
)

// cashRow is one cash movement as the aggregation queries see it:
// classification names plus whether the category carries the capital
// income type.
type cashRow struct {
	kind        cashbook.EntryKind
	category    string
	subcategory string
	capital     bool
	amount      decimal.Decimal
	date        time.Time
}

type fakeReportRepo struct {
	cash          []cashRow
	adjustments   map[adjustment.Type]decimal.Decimal
	accrual       map[accrual.EntryKind]decimal.Decimal
	outstanding   map[accrual.ObligationKind]decimal.Decimal
	activeAssets  []assets.Asset
	contributions []Contribution
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{
		adjustments: make(map[adjustment.Type]decimal.Decimal),
		accrual:     make(map[accrual.EntryKind]decimal.Decimal),
		outstanding: make(map[accrual.ObligationKind]decimal.Decimal),
	}
}

func (r *fakeReportRepo) addCash(kind cashbook.EntryKind, category, subcategory string, capital bool, amount int64) {
	r.addCashOn(kind, category, subcategory, capital, amount, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
}

func (r *fakeReportRepo) addCashOn(kind cashbook.EntryKind, category, subcategory string, capital bool, amount int64, date time.Time) {
	r.cash = append(r.cash, cashRow{
		kind:        kind,
		category:    category,
		subcategory: subcategory,
		capital:     capital,
		amount:      decimal.NewFromInt(amount),
		date:        date,
	})
}

func inRange(date, from, to time.Time) bool {
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && date.After(to) {
		return false
	}
	return true
}

func (r *fakeReportRepo) SumCash(_ context.Context, kind cashbook.EntryKind, from, to time.Time, operatingOnly bool) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind != kind || !inRange(row.date, from, to) {
			continue
		}
		if operatingOnly && row.capital {
			continue
		}
		total = total.Add(row.amount)
	}
	return total, nil
}

func (r *fakeReportRepo) CashBreakdown(_ context.Context, kind cashbook.EntryKind, from, to time.Time, operatingOnly bool) ([]CategoryAmount, error) {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, row := range r.cash {
		if row.kind != kind || !inRange(row.date, from, to) {
			continue
		}
		if operatingOnly && row.capital {
			continue
		}
		if _, ok := totals[row.category]; !ok {
			order = append(order, row.category)
		}
		totals[row.category] = totals[row.category].Add(row.amount)
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Category: name, Amount: totals[name]})
	}
	return out, nil
}

func (r *fakeReportRepo) SumCashInCategory(_ context.Context, kind cashbook.EntryKind, categoryName string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind == kind && row.category == categoryName && inRange(row.date, time.Time{}, asOf) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func (r *fakeReportRepo) SumCashInSubcategory(_ context.Context, kind cashbook.EntryKind, subcategory string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind == kind && row.subcategory == subcategory && inRange(row.date, time.Time{}, asOf) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func (r *fakeReportRepo) SumCapitalIncome(_ context.Context, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind == cashbook.KindIncome && row.capital && inRange(row.date, time.Time{}, asOf) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func excludedName(name string, excluded []string) bool {
	for _, e := range excluded {
		if e == name {
			return true
		}
	}
	return false
}

func (r *fakeReportRepo) SumOperatingIncome(_ context.Context, asOf time.Time, excluded []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind != cashbook.KindIncome || row.capital || excludedName(row.category, excluded) {
			continue
		}
		if inRange(row.date, time.Time{}, asOf) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func (r *fakeReportRepo) SumOperatingExpense(_ context.Context, asOf time.Time, excluded []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind != cashbook.KindExpense || excludedName(row.category, excluded) {
			continue
		}
		if inRange(row.date, time.Time{}, asOf) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func (r *fakeReportRepo) SumCashIncomeExcludingCategory(_ context.Context, categoryName string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.cash {
		if row.kind == cashbook.KindIncome && row.category != categoryName && inRange(row.date, time.Time{}, asOf) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func (r *fakeReportRepo) SumAdjustments(_ context.Context, typ adjustment.Type, _, _ time.Time) (decimal.Decimal, error) {
	return r.adjustments[typ], nil
}

func (r *fakeReportRepo) SumAccrual(_ context.Context, kind accrual.EntryKind, _, _ time.Time) (decimal.Decimal, error) {
	return r.accrual[kind], nil
}

func (r *fakeReportRepo) AccrualBreakdown(_ context.Context, kind accrual.EntryKind, _, _ time.Time) ([]CategoryAmount, error) {
	if total, ok := r.accrual[kind]; ok {
		return []CategoryAmount{{Category: "All", Amount: total}}, nil
	}
	return nil, nil
}

func (r *fakeReportRepo) SumOutstanding(_ context.Context, kind accrual.ObligationKind) (decimal.Decimal, error) {
	return r.outstanding[kind], nil
}

func (r *fakeReportRepo) ListActiveAssets(context.Context) ([]assets.Asset, error) {
	return r.activeAssets, nil
}

func (r *fakeReportRepo) CapitalContributions(context.Context) ([]Contribution, error) {
	return r.contributions, nil
}

var (
	periodStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)),
		"want %s, got %s", want, got.String())
}

func TestCashProfitLossAdjustmentSigns(t *testing.T) {
	repo := newFakeReportRepo()
	repo.addCash(cashbook.KindIncome, CategoryStudentFees, "Tuition", false, 1000)
	repo.addCash(cashbook.KindExpense, "Utilities", "", false, 400)
	repo.adjustments[adjustment.AccruedIncome] = decimal.NewFromInt(200)
	repo.adjustments[adjustment.UnearnedIncome] = decimal.NewFromInt(50)
	repo.adjustments[adjustment.OutstandingExpense] = decimal.NewFromInt(100)
	repo.adjustments[adjustment.PrepaidExpense] = decimal.NewFromInt(30)

	svc := NewService(repo, nil)
	pl, err := svc.CashProfitLoss(context.Background(), periodStart, periodEnd, false)
	require.NoError(t, err)

	// Accrued income earned but not yet received adds to revenue;
	// unearned income received in advance comes out of it.
	requireAmount(t, "1150", pl.TotalRevenue)
	requireAmount(t, "470", pl.TotalExpenses)
	requireAmount(t, "680", pl.NetProfit)
	require.Len(t, pl.RevenueByCategory, 1)
	require.Equal(t, CategoryStudentFees, pl.RevenueByCategory[0].Category)
}

func TestCashProfitLossIncludesDepreciation(t *testing.T) {
	repo := newFakeReportRepo()
	repo.addCashOn(cashbook.KindIncome, CategoryStudentFees, "Tuition", false, 1000,
		time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC))
	repo.activeAssets = []assets.Asset{{
		ID:              1,
		Name:            "School Bus",
		PurchaseDate:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		PurchaseCost:    decimal.NewFromInt(1100),
		SalvageValue:    decimal.NewFromInt(100),
		UsefulLifeYears: 10,
	}}

	svc := NewService(repo, nil)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	pl, err := svc.CashProfitLoss(context.Background(), start, end, false)
	require.NoError(t, err)

	// A full non-leap year of service charges the whole annual amount.
	requireAmount(t, "100.00", pl.Depreciation)
	requireAmount(t, "100.00", pl.TotalExpenses)
	requireAmount(t, "900.00", pl.NetProfit)
}

func TestCashProfitLossOperatingOnly(t *testing.T) {
	repo := newFakeReportRepo()
	repo.addCash(cashbook.KindIncome, CategoryStudentFees, "Tuition", false, 1000)
	repo.addCash(cashbook.KindIncome, "Capital Introduced", "", true, 20000)

	svc := NewService(repo, nil)
	ctx := context.Background()

	all, err := svc.CashProfitLoss(ctx, periodStart, periodEnd, false)
	require.NoError(t, err)
	requireAmount(t, "21000", all.TotalRevenue)

	operating, err := svc.CashProfitLoss(ctx, periodStart, periodEnd, true)
	require.NoError(t, err)
	requireAmount(t, "1000", operating.TotalRevenue)
	require.Len(t, operating.RevenueByCategory, 1)
}

func TestAccrualProfitLoss(t *testing.T) {
	repo := newFakeReportRepo()
	repo.accrual[accrual.KindRevenue] = decimal.NewFromInt(8000)
	repo.accrual[accrual.KindExpense] = decimal.NewFromInt(3000)

	svc := NewService(repo, nil)
	pl, err := svc.AccrualProfitLoss(context.Background(), periodStart, periodEnd)
	require.NoError(t, err)
	requireAmount(t, "8000", pl.TotalRevenue)
	requireAmount(t, "3000", pl.TotalExpenses)
	requireAmount(t, "5000", pl.NetProfit)
}

func seedBalanceSheetRepo() *fakeReportRepo {
	repo := newFakeReportRepo()
	repo.addCash(cashbook.KindIncome, CategoryStudentFees, "Tuition", false, 5000)
	repo.addCash(cashbook.KindIncome, CategoryStudentFees, "Transport", false, 1000)
	repo.addCash(cashbook.KindIncome, "Capital Introduced", "", true, 20000)
	repo.addCash(cashbook.KindIncome, CategoryCapitalReserves, "", false, 2000)
	repo.addCash(cashbook.KindIncome, CategoryLoansReceived, "", false, 3000)
	repo.addCash(cashbook.KindIncome, CategoryRefundableDeposits, "", false, 500)
	repo.addCash(cashbook.KindIncome, "Other Income", SubcategoryAssetSaleProceeds, false, 800)
	repo.addCash(cashbook.KindExpense, CategoryCapitalExpenditure, "", false, 12000)
	repo.addCash(cashbook.KindExpense, "Utilities", "", false, 700)
	repo.addCash(cashbook.KindExpense, "Salaries", "", false, 4000)
	return repo
}

func TestCashBalanceSheet(t *testing.T) {
	svc := NewService(seedBalanceSheetRepo(), nil)
	bs, err := svc.CashBalanceSheet(context.Background(), periodEnd)
	require.NoError(t, err)

	requireAmount(t, "15600", bs.Cash)
	requireAmount(t, "11200", bs.FixedAssetsNet)
	requireAmount(t, "26800", bs.TotalAssets)
	requireAmount(t, "3500", bs.TotalLiabilities)
	requireAmount(t, "20000", bs.CapitalIntroduced)
	requireAmount(t, "2000", bs.CapitalReserves)
	requireAmount(t, "1300", bs.Surplus)

	// Asset sale proceeds sit in operating income but were folded into
	// fixed assets, so the independently summed books drift by exactly
	// that amount.
	requireAmount(t, "800", bs.Discrepancy)
}

func TestCashBalanceSheetIdentity(t *testing.T) {
	svc := NewService(seedBalanceSheetRepo(), nil)
	bs, err := svc.CashBalanceSheet(context.Background(), periodEnd)
	require.NoError(t, err)

	require.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)),
		"assets %s != liabilities %s + equity %s",
		bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity)
}

func TestAccrualBalanceSheet(t *testing.T) {
	repo := newFakeReportRepo()
	repo.addCash(cashbook.KindIncome, CategoryStudentFees, "Tuition", false, 4000)
	repo.addCash(cashbook.KindIncome, "Capital Introduced", "", true, 1000)
	repo.addCash(cashbook.KindExpense, "Utilities", "", false, 2000)
	repo.outstanding[accrual.Receivable] = decimal.NewFromInt(1200)
	repo.outstanding[accrual.Payable] = decimal.NewFromInt(700)

	svc := NewService(repo, nil)
	bs, err := svc.AccrualBalanceSheet(context.Background(), periodEnd)
	require.NoError(t, err)

	requireAmount(t, "3000", bs.CashBalance)
	requireAmount(t, "1200", bs.Receivables)
	requireAmount(t, "4200", bs.TotalAssets)
	requireAmount(t, "700", bs.TotalLiabilities)
	requireAmount(t, "3500", bs.TotalEquity)
	requireAmount(t, "1000", bs.Capital)
	requireAmount(t, "2500", bs.RetainedEarnings)
	require.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
}

func TestDepreciationSchedule(t *testing.T) {
	repo := newFakeReportRepo()
	repo.activeAssets = []assets.Asset{
		{
			ID:              1,
			Name:            "School Bus",
			PurchaseDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PurchaseCost:    decimal.NewFromInt(100000),
			SalvageValue:    decimal.NewFromInt(10000),
			UsefulLifeYears: 9,
		},
		{
			ID:              2,
			Name:            "Computer Lab",
			PurchaseDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			PurchaseCost:    decimal.NewFromInt(36500),
			SalvageValue:    decimal.Zero,
			UsefulLifeYears: 5,
		},
	}

	svc := NewService(repo, nil)
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	schedule, err := svc.Depreciation(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, schedule.Rows, 2)
	requireAmount(t, "5041.10", schedule.Rows[0].PeriodDepreciation)
	// Purchased after the period ends: listed with a zero charge.
	requireAmount(t, "0", schedule.Rows[1].PeriodDepreciation)
	requireAmount(t, "5041.10", schedule.Total)
}

func TestShareholderFoldsCaseVariantContributors(t *testing.T) {
	repo := newFakeReportRepo()
	repo.addCash(cashbook.KindIncome, CategoryStudentFees, "Tuition", false, 9000)
	repo.addCash(cashbook.KindIncome, "Donations", "", false, 3000)
	repo.addCash(cashbook.KindExpense, "Utilities", "", false, 1000)
	repo.contributions = []Contribution{
		{Contributor: "Aarav Sharma", Total: decimal.NewFromInt(1000)},
		{Contributor: "AARAV SHARMA", Total: decimal.NewFromInt(500)},
		{Contributor: "Beatriz Costa", Total: decimal.NewFromInt(700)},
	}

	svc := NewService(repo, nil)
	view, err := svc.Shareholder(context.Background(), periodEnd)
	require.NoError(t, err)

	// Fee income is excluded from net worth.
	requireAmount(t, "2000", view.NetWorth)

	require.Equal(t, 2, view.BoardMemberCount)
	require.Equal(t, "Aarav Sharma", view.Contributions[0].Contributor)
	requireAmount(t, "1500", view.Contributions[0].Total)
	requireAmount(t, "2200", view.TotalCapitalInvested)
	requireAmount(t, "1000.00", view.ShareValue)
}

func TestShareholderNoContributors(t *testing.T) {
	repo := newFakeReportRepo()
	repo.addCash(cashbook.KindIncome, "Donations", "", false, 3000)

	svc := NewService(repo, nil)
	view, err := svc.Shareholder(context.Background(), periodEnd)
	require.NoError(t, err)
	require.Zero(t, view.BoardMemberCount)
	requireAmount(t, "0", view.ShareValue)
}

func TestOverviewAssemblesBothViews(t *testing.T) {
	repo := seedBalanceSheetRepo()
	repo.accrual[accrual.KindRevenue] = decimal.NewFromInt(8000)
	repo.accrual[accrual.KindExpense] = decimal.NewFromInt(3000)

	svc := NewService(repo, nil)
	overview, err := svc.Overview(context.Background(), periodStart, periodEnd)
	require.NoError(t, err)

	requireAmount(t, "5000", overview.AccrualPL.NetProfit)
	require.Equal(t, periodEnd, overview.CashBS.AsOf)
	require.Equal(t, periodEnd, overview.AccrualBS.AsOf)
	require.True(t, overview.CashBS.TotalAssets.Equal(
		overview.CashBS.TotalLiabilities.Add(overview.CashBS.TotalEquity)))
}

func TestReportsAreDeterministic(t *testing.T) {
	svc := NewService(seedBalanceSheetRepo(), nil)
	ctx := context.Background()

	first, err := svc.CashProfitLoss(ctx, periodStart, periodEnd, false)
	require.NoError(t, err)
	second, err := svc.CashProfitLoss(ctx, periodStart, periodEnd, false)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestReportValidation(t *testing.T) {
	svc := NewService(newFakeReportRepo(), nil)
	ctx := context.Background()

	_, err := svc.CashProfitLoss(ctx, time.Time{}, periodEnd, false)
	require.Error(t, err)

	_, err = svc.AccrualProfitLoss(ctx, periodEnd, periodStart)
	require.Error(t, err)

	_, err = svc.CashBalanceSheet(ctx, time.Time{})
	require.Error(t, err)

	_, err = svc.Shareholder(ctx, time.Time{})
	require.Error(t, err)
}

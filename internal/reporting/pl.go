package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/adjustment"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
)

// computeCashPL derives the cash-basis P&L. Accrued income adds to and
// unearned income subtracts from cash revenue; outstanding expenses add
// to and prepaid expenses subtract from cash expenses. Depreciation is
// apportioned pro rata over the days each asset was in service.
func (s *Service) computeCashPL(ctx context.Context, start, end time.Time, operatingOnly bool) (CashPL, error) {
	pl := CashPL{Start: start, End: end, OperatingOnly: operatingOnly}

	var err error
	if pl.CashRevenue, err = s.repo.SumCash(ctx, cashbook.KindIncome, start, end, operatingOnly); err != nil {
		return CashPL{}, err
	}
	if pl.AccruedIncomeAdj, err = s.repo.SumAdjustments(ctx, adjustment.AccruedIncome, start, end); err != nil {
		return CashPL{}, err
	}
	if pl.UnearnedIncomeAdj, err = s.repo.SumAdjustments(ctx, adjustment.UnearnedIncome, start, end); err != nil {
		return CashPL{}, err
	}
	pl.TotalRevenue = pl.CashRevenue.Add(pl.AccruedIncomeAdj).Sub(pl.UnearnedIncomeAdj)

	if pl.CashExpenses, err = s.repo.SumCash(ctx, cashbook.KindExpense, start, end, operatingOnly); err != nil {
		return CashPL{}, err
	}
	if pl.OutstandingExpenseAdj, err = s.repo.SumAdjustments(ctx, adjustment.OutstandingExpense, start, end); err != nil {
		return CashPL{}, err
	}
	if pl.PrepaidExpenseAdj, err = s.repo.SumAdjustments(ctx, adjustment.PrepaidExpense, start, end); err != nil {
		return CashPL{}, err
	}
	if pl.Depreciation, err = s.periodDepreciation(ctx, start, end); err != nil {
		return CashPL{}, err
	}
	pl.TotalExpenses = pl.CashExpenses.
		Add(pl.OutstandingExpenseAdj).
		Sub(pl.PrepaidExpenseAdj).
		Add(pl.Depreciation)

	pl.NetProfit = pl.TotalRevenue.Sub(pl.TotalExpenses)

	if pl.RevenueByCategory, err = s.repo.CashBreakdown(ctx, cashbook.KindIncome, start, end, operatingOnly); err != nil {
		return CashPL{}, err
	}
	if pl.ExpenseByCategory, err = s.repo.CashBreakdown(ctx, cashbook.KindExpense, start, end, operatingOnly); err != nil {
		return CashPL{}, err
	}
	return pl, nil
}

// computeAccrualPL derives the accrual-basis P&L.
func (s *Service) computeAccrualPL(ctx context.Context, start, end time.Time) (AccrualPL, error) {
	pl := AccrualPL{Start: start, End: end}

	var err error
	if pl.TotalRevenue, err = s.repo.SumAccrual(ctx, accrual.KindRevenue, start, end); err != nil {
		return AccrualPL{}, err
	}
	if pl.TotalExpenses, err = s.repo.SumAccrual(ctx, accrual.KindExpense, start, end); err != nil {
		return AccrualPL{}, err
	}
	pl.NetProfit = pl.TotalRevenue.Sub(pl.TotalExpenses)

	if pl.RevenueByCategory, err = s.repo.AccrualBreakdown(ctx, accrual.KindRevenue, start, end); err != nil {
		return AccrualPL{}, err
	}
	if pl.ExpenseByCategory, err = s.repo.AccrualBreakdown(ctx, accrual.KindExpense, start, end); err != nil {
		return AccrualPL{}, err
	}
	return pl, nil
}

func (s *Service) periodDepreciation(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	activeAssets, err := s.repo.ListActiveAssets(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range activeAssets {
		total = total.Add(a.PeriodDepreciation(start, end))
	}
	return total, nil
}

// computeDepreciation builds the per-asset schedule.
func (s *Service) computeDepreciation(ctx context.Context, start, end time.Time) (DepreciationSchedule, error) {
	activeAssets, err := s.repo.ListActiveAssets(ctx)
	if err != nil {
		return DepreciationSchedule{}, err
	}
	schedule := DepreciationSchedule{Start: start, End: end, Total: decimal.Zero}
	for _, a := range activeAssets {
		period := a.PeriodDepreciation(start, end)
		schedule.Rows = append(schedule.Rows, DepreciationRow{
			AssetID:            a.ID,
			Name:               a.Name,
			PurchaseDate:       a.PurchaseDate,
			PurchaseCost:       a.PurchaseCost,
			SalvageValue:       a.SalvageValue,
			UsefulLifeYears:    a.UsefulLifeYears,
			AnnualDepreciation: a.AnnualDepreciation().Round(2),
			PeriodDepreciation: period,
		})
		schedule.Total = schedule.Total.Add(period)
	}
	return schedule, nil
}

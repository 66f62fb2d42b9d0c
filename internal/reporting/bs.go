package reporting

import (
	"context"
	"time"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
)

var openingOfTime = time.Time{}

// computeCashBS derives the cash-basis balance sheet. Surplus is the
// residual of assets minus liabilities minus capital and reserves, so
// the sheet always balances; Discrepancy is how far the independently
// summed operating books sit from that residual.
func (s *Service) computeCashBS(ctx context.Context, asOf time.Time) (CashBalanceSheet, error) {
	bs := CashBalanceSheet{AsOf: asOf}

	income, err := s.repo.SumCash(ctx, cashbook.KindIncome, openingOfTime, asOf, false)
	if err != nil {
		return CashBalanceSheet{}, err
	}
	expense, err := s.repo.SumCash(ctx, cashbook.KindExpense, openingOfTime, asOf, false)
	if err != nil {
		return CashBalanceSheet{}, err
	}
	bs.Cash = income.Sub(expense)

	capex, err := s.repo.SumCashInCategory(ctx, cashbook.KindExpense, CategoryCapitalExpenditure, asOf)
	if err != nil {
		return CashBalanceSheet{}, err
	}
	saleProceeds, err := s.repo.SumCashInSubcategory(ctx, cashbook.KindIncome, SubcategoryAssetSaleProceeds, asOf)
	if err != nil {
		return CashBalanceSheet{}, err
	}
	bs.FixedAssetsNet = capex.Sub(saleProceeds)
	bs.TotalAssets = bs.Cash.Add(bs.FixedAssetsNet)

	if bs.LoansReceived, err = s.repo.SumCashInCategory(ctx, cashbook.KindIncome, CategoryLoansReceived, asOf); err != nil {
		return CashBalanceSheet{}, err
	}
	if bs.RefundableDeposits, err = s.repo.SumCashInCategory(ctx, cashbook.KindIncome, CategoryRefundableDeposits, asOf); err != nil {
		return CashBalanceSheet{}, err
	}
	bs.TotalLiabilities = bs.LoansReceived.Add(bs.RefundableDeposits)

	if bs.CapitalIntroduced, err = s.repo.SumCapitalIncome(ctx, asOf); err != nil {
		return CashBalanceSheet{}, err
	}
	if bs.CapitalReserves, err = s.repo.SumCashInCategory(ctx, cashbook.KindIncome, CategoryCapitalReserves, asOf); err != nil {
		return CashBalanceSheet{}, err
	}

	bs.Surplus = bs.TotalAssets.
		Sub(bs.TotalLiabilities).
		Sub(bs.CapitalIntroduced).
		Sub(bs.CapitalReserves)
	bs.TotalEquity = bs.CapitalIntroduced.Add(bs.CapitalReserves).Add(bs.Surplus)

	operatingIncome, err := s.repo.SumOperatingIncome(ctx, asOf, []string{
		CategoryLoansReceived, CategoryRefundableDeposits, CategoryCapitalReserves,
	})
	if err != nil {
		return CashBalanceSheet{}, err
	}
	operatingExpense, err := s.repo.SumOperatingExpense(ctx, asOf, []string{CategoryCapitalExpenditure})
	if err != nil {
		return CashBalanceSheet{}, err
	}
	bs.Discrepancy = operatingIncome.Sub(operatingExpense).Sub(bs.Surplus)

	return bs, nil
}

// computeAccrualBS derives the accrual-basis balance sheet. Equity is
// the residual of assets minus liabilities; retained earnings is the
// plug left after subtracting capital.
func (s *Service) computeAccrualBS(ctx context.Context, asOf time.Time) (AccrualBalanceSheet, error) {
	bs := AccrualBalanceSheet{AsOf: asOf}

	income, err := s.repo.SumCash(ctx, cashbook.KindIncome, openingOfTime, asOf, false)
	if err != nil {
		return AccrualBalanceSheet{}, err
	}
	expense, err := s.repo.SumCash(ctx, cashbook.KindExpense, openingOfTime, asOf, false)
	if err != nil {
		return AccrualBalanceSheet{}, err
	}
	bs.CashBalance = income.Sub(expense)

	if bs.Receivables, err = s.repo.SumOutstanding(ctx, accrual.Receivable); err != nil {
		return AccrualBalanceSheet{}, err
	}
	if bs.Payables, err = s.repo.SumOutstanding(ctx, accrual.Payable); err != nil {
		return AccrualBalanceSheet{}, err
	}
	bs.TotalAssets = bs.CashBalance.Add(bs.Receivables)
	bs.TotalLiabilities = bs.Payables

	bs.TotalEquity = bs.TotalAssets.Sub(bs.TotalLiabilities)
	if bs.Capital, err = s.repo.SumCapitalIncome(ctx, asOf); err != nil {
		return AccrualBalanceSheet{}, err
	}
	bs.RetainedEarnings = bs.TotalEquity.Sub(bs.Capital)

	return bs, nil
}

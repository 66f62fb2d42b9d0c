package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/adjustment"
	"github.com/scholaris-erp/scholaris-erp/internal/assets"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RepositoryPort defines the read-only aggregations reports are built from.
type RepositoryPort interface {
	SumCash(ctx context.Context, kind cashbook.EntryKind, from, to time.Time, operatingOnly bool) (decimal.Decimal, error)
	CashBreakdown(ctx context.Context, kind cashbook.EntryKind, from, to time.Time, operatingOnly bool) ([]CategoryAmount, error)
	SumCashInCategory(ctx context.Context, kind cashbook.EntryKind, categoryName string, asOf time.Time) (decimal.Decimal, error)
	SumCashInSubcategory(ctx context.Context, kind cashbook.EntryKind, subcategory string, asOf time.Time) (decimal.Decimal, error)
	SumCapitalIncome(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
	SumOperatingIncome(ctx context.Context, asOf time.Time, excluded []string) (decimal.Decimal, error)
	SumOperatingExpense(ctx context.Context, asOf time.Time, excluded []string) (decimal.Decimal, error)
	SumCashIncomeExcludingCategory(ctx context.Context, categoryName string, asOf time.Time) (decimal.Decimal, error)
	SumAdjustments(ctx context.Context, typ adjustment.Type, from, to time.Time) (decimal.Decimal, error)
	SumAccrual(ctx context.Context, kind accrual.EntryKind, from, to time.Time) (decimal.Decimal, error)
	AccrualBreakdown(ctx context.Context, kind accrual.EntryKind, from, to time.Time) ([]CategoryAmount, error)
	SumOutstanding(ctx context.Context, kind accrual.ObligationKind) (decimal.Decimal, error)
	ListActiveAssets(ctx context.Context) ([]assets.Asset, error)
	CapitalContributions(ctx context.Context) ([]Contribution, error)
}

// Service computes reports, serving repeated requests from the
// versioned cache. It never writes to any ledger store.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService wires the aggregation repository with a cache helper.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() {
		return shared.NewValidationError("start", "required")
	}
	if end.IsZero() {
		return shared.NewValidationError("end", "required")
	}
	if end.Before(start) {
		return shared.NewValidationError("end", "end date before start date")
	}
	return nil
}

const dateKey = "2006-01-02"

func fetch[T any](ctx context.Context, s *Service, keyParts []string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	loader := func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	}
	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return zero, err
		}
		return value, nil
	}
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return zero, err
	}
	var out T
	if err := s.cache.FetchJSON(ctx, key, &out, loader); err != nil {
		return zero, err
	}
	return out, nil
}

// CashProfitLoss builds the cash-basis P&L for [start, end].
func (s *Service) CashProfitLoss(ctx context.Context, start, end time.Time, operatingOnly bool) (CashPL, error) {
	if err := validateRange(start, end); err != nil {
		return CashPL{}, err
	}
	mode := "all"
	if operatingOnly {
		mode = "operating"
	}
	key := []string{"reports", "cashpl", start.Format(dateKey), end.Format(dateKey), mode}
	return fetch(ctx, s, key, func(ctx context.Context) (CashPL, error) {
		return s.computeCashPL(ctx, start, end, operatingOnly)
	})
}

// AccrualProfitLoss builds the accrual-basis P&L for [start, end].
func (s *Service) AccrualProfitLoss(ctx context.Context, start, end time.Time) (AccrualPL, error) {
	if err := validateRange(start, end); err != nil {
		return AccrualPL{}, err
	}
	key := []string{"reports", "accrualpl", start.Format(dateKey), end.Format(dateKey)}
	return fetch(ctx, s, key, func(ctx context.Context) (AccrualPL, error) {
		return s.computeAccrualPL(ctx, start, end)
	})
}

// CashBalanceSheet builds the cash-basis balance sheet as of a date.
func (s *Service) CashBalanceSheet(ctx context.Context, asOf time.Time) (CashBalanceSheet, error) {
	if asOf.IsZero() {
		return CashBalanceSheet{}, shared.NewValidationError("as_of", "required")
	}
	key := []string{"reports", "cashbs", asOf.Format(dateKey)}
	return fetch(ctx, s, key, func(ctx context.Context) (CashBalanceSheet, error) {
		return s.computeCashBS(ctx, asOf)
	})
}

// AccrualBalanceSheet builds the accrual-basis balance sheet as of a date.
func (s *Service) AccrualBalanceSheet(ctx context.Context, asOf time.Time) (AccrualBalanceSheet, error) {
	if asOf.IsZero() {
		return AccrualBalanceSheet{}, shared.NewValidationError("as_of", "required")
	}
	key := []string{"reports", "accrualbs", asOf.Format(dateKey)}
	return fetch(ctx, s, key, func(ctx context.Context) (AccrualBalanceSheet, error) {
		return s.computeAccrualBS(ctx, asOf)
	})
}

// Depreciation builds the per-asset schedule for [start, end].
func (s *Service) Depreciation(ctx context.Context, start, end time.Time) (DepreciationSchedule, error) {
	if err := validateRange(start, end); err != nil {
		return DepreciationSchedule{}, err
	}
	key := []string{"reports", "depreciation", start.Format(dateKey), end.Format(dateKey)}
	return fetch(ctx, s, key, func(ctx context.Context) (DepreciationSchedule, error) {
		return s.computeDepreciation(ctx, start, end)
	})
}

// Shareholder builds the board-member valuation view.
func (s *Service) Shareholder(ctx context.Context, asOf time.Time) (ShareholderView, error) {
	if asOf.IsZero() {
		return ShareholderView{}, shared.NewValidationError("as_of", "required")
	}
	key := []string{"reports", "shareholder", asOf.Format(dateKey)}
	return fetch(ctx, s, key, func(ctx context.Context) (ShareholderView, error) {
		return s.computeShareholder(ctx, asOf)
	})
}

// Overview assembles both P&L and balance-sheet views of one period,
// loading the four reports concurrently.
func (s *Service) Overview(ctx context.Context, start, end time.Time) (Overview, error) {
	if err := validateRange(start, end); err != nil {
		return Overview{}, err
	}
	var out Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.CashPL, err = s.CashProfitLoss(ctx, start, end, false)
		return err
	})
	g.Go(func() error {
		var err error
		out.AccrualPL, err = s.AccrualProfitLoss(ctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		out.CashBS, err = s.CashBalanceSheet(ctx, end)
		return err
	})
	g.Go(func() error {
		var err error
		out.AccrualBS, err = s.AccrualBalanceSheet(ctx, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

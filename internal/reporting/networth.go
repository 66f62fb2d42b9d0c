package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
)

// computeShareholder derives the board-member valuation. Fee income is
// excluded from net worth; contributions recorded with case-variant
// contributor names fold into one line.
func (s *Service) computeShareholder(ctx context.Context, asOf time.Time) (ShareholderView, error) {
	view := ShareholderView{}

	income, err := s.repo.SumCashIncomeExcludingCategory(ctx, CategoryStudentFees, asOf)
	if err != nil {
		return ShareholderView{}, err
	}
	expense, err := s.repo.SumCash(ctx, cashbook.KindExpense, openingOfTime, asOf, false)
	if err != nil {
		return ShareholderView{}, err
	}
	view.NetWorth = income.Sub(expense)

	raw, err := s.repo.CapitalContributions(ctx)
	if err != nil {
		return ShareholderView{}, err
	}
	view.Contributions = foldContributions(raw)
	view.TotalCapitalInvested = decimal.Zero
	for _, c := range view.Contributions {
		view.TotalCapitalInvested = view.TotalCapitalInvested.Add(c.Total)
	}

	view.BoardMemberCount = len(view.Contributions)
	if view.BoardMemberCount > 0 {
		view.ShareValue = view.NetWorth.
			Div(decimal.NewFromInt(int64(view.BoardMemberCount))).
			Round(2)
	} else {
		view.ShareValue = decimal.Zero
	}
	return view, nil
}

// foldContributions merges contributor lines whose names differ only by
// case, keeping the first-seen spelling.
func foldContributions(raw []Contribution) []Contribution {
	folder := cases.Fold()
	index := make(map[string]int)
	var out []Contribution
	for _, c := range raw {
		key := folder.String(c.Contributor)
		if i, ok := index[key]; ok {
			out[i].Total = out[i].Total.Add(c.Total)
			continue
		}
		index[key] = len(out)
		out = append(out, c)
	}
	return out
}

package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report taxonomy anchors. The balance sheet classifies cash entries by
// these registry names; schools that rename them in the registry must
// keep these spellings for the classification to hold.
const (
	CategoryCapitalExpenditure = "Capital Expenditure"
	CategoryCapitalReserves    = "Capital Reserves"
	CategoryLoansReceived      = "Loans Received"
	CategoryRefundableDeposits = "Refundable Deposits & Advances"
	CategoryStudentFees        = "Student Fees"

	SubcategoryAssetSaleProceeds = "Asset Sale Proceeds"
)

// CategoryAmount is one line of a per-category breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CashPL is the cash-basis profit and loss with accrual corrections.
// Adjustment fields carry the signed delta applied; all totals are
// non-negative magnitudes except NetProfit, which may be negative.
type CashPL struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	OperatingOnly bool      `json:"operating_only"`

	CashRevenue       decimal.Decimal `json:"cash_revenue"`
	AccruedIncomeAdj  decimal.Decimal `json:"accrued_income_adjustment"`
	UnearnedIncomeAdj decimal.Decimal `json:"unearned_income_adjustment"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`

	CashExpenses          decimal.Decimal `json:"cash_expenses"`
	OutstandingExpenseAdj decimal.Decimal `json:"outstanding_expense_adjustment"`
	PrepaidExpenseAdj     decimal.Decimal `json:"prepaid_expense_adjustment"`
	Depreciation          decimal.Decimal `json:"depreciation"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`

	NetProfit decimal.Decimal `json:"net_profit"`

	RevenueByCategory []CategoryAmount `json:"revenue_by_category"`
	ExpenseByCategory []CategoryAmount `json:"expense_by_category"`
}

// AccrualPL is the accrual-basis profit and loss.
type AccrualPL struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`

	RevenueByCategory []CategoryAmount `json:"revenue_by_category"`
	ExpenseByCategory []CategoryAmount `json:"expense_by_category"`
}

// CashBalanceSheet is the cash-basis balance sheet. Surplus is the
// residual that makes assets equal liabilities plus equity by
// construction; Discrepancy reports how far the independently summed
// books drift from that residual, for audit.
type CashBalanceSheet struct {
	AsOf time.Time `json:"as_of"`

	Cash           decimal.Decimal `json:"cash"`
	FixedAssetsNet decimal.Decimal `json:"fixed_assets_net"`
	TotalAssets    decimal.Decimal `json:"total_assets"`

	LoansReceived      decimal.Decimal `json:"loans_received"`
	RefundableDeposits decimal.Decimal `json:"refundable_deposits"`
	TotalLiabilities   decimal.Decimal `json:"total_liabilities"`

	CapitalIntroduced decimal.Decimal `json:"capital_introduced"`
	CapitalReserves   decimal.Decimal `json:"capital_reserves"`
	Surplus           decimal.Decimal `json:"surplus"`
	TotalEquity       decimal.Decimal `json:"total_equity"`

	Discrepancy decimal.Decimal `json:"discrepancy"`
}

// AccrualBalanceSheet is the accrual-basis balance sheet. Equity is the
// residual of assets minus liabilities; RetainedEarnings is the plug
// left after subtracting capital.
type AccrualBalanceSheet struct {
	AsOf time.Time `json:"as_of"`

	CashBalance decimal.Decimal `json:"cash_balance"`
	Receivables decimal.Decimal `json:"receivables"`
	TotalAssets decimal.Decimal `json:"total_assets"`

	Payables         decimal.Decimal `json:"payables"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`

	Capital          decimal.Decimal `json:"capital"`
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
}

// DepreciationRow is one asset's line in the depreciation schedule.
type DepreciationRow struct {
	AssetID            int64           `json:"asset_id"`
	Name               string          `json:"name"`
	PurchaseDate       time.Time       `json:"purchase_date"`
	PurchaseCost       decimal.Decimal `json:"purchase_cost"`
	SalvageValue       decimal.Decimal `json:"salvage_value"`
	UsefulLifeYears    int             `json:"useful_life_years"`
	AnnualDepreciation decimal.Decimal `json:"annual_depreciation"`
	PeriodDepreciation decimal.Decimal `json:"period_depreciation"`
}

// DepreciationSchedule lists every active asset's charge for a period.
type DepreciationSchedule struct {
	Start time.Time         `json:"start"`
	End   time.Time         `json:"end"`
	Rows  []DepreciationRow `json:"rows"`
	Total decimal.Decimal   `json:"total"`
}

// Contribution is one board member's summed capital inflow.
type Contribution struct {
	Contributor string          `json:"contributor"`
	Total       decimal.Decimal `json:"total"`
}

// ShareholderView values the school for its board members.
type ShareholderView struct {
	NetWorth             decimal.Decimal `json:"net_worth"`
	TotalCapitalInvested decimal.Decimal `json:"total_capital_invested"`
	BoardMemberCount     int             `json:"board_member_count"`
	ShareValue           decimal.Decimal `json:"share_value"`
	Contributions        []Contribution  `json:"contributions"`
}

// Overview bundles both accounting views of one period.
type Overview struct {
	CashPL    CashPL              `json:"cash_pl"`
	AccrualPL AccrualPL           `json:"accrual_pl"`
	CashBS    CashBalanceSheet    `json:"cash_balance_sheet"`
	AccrualBS AccrualBalanceSheet `json:"accrual_balance_sheet"`
}

package adjustment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates the manual accrual corrections applied to the
// cash-basis profit and loss.
type Type string

const (
	OutstandingExpense Type = "OUTSTANDING_EXPENSE"
	PrepaidExpense     Type = "PREPAID_EXPENSE"
	AccruedIncome      Type = "ACCRUED_INCOME"
	UnearnedIncome     Type = "UNEARNED_INCOME"
)

// Valid reports whether the type is known.
func (t Type) Valid() bool {
	switch t {
	case OutstandingExpense, PrepaidExpense, AccruedIncome, UnearnedIncome:
		return true
	}
	return false
}

// Adjustment is a period-scoped correction entered by a human, never
// derived from other records.
type Adjustment struct {
	ID          int64           `json:"id"`
	Type        Type            `json:"type"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	RecordedBy  int64           `json:"recorded_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateAdjustmentInput carries fields for a new adjustment.
type CreateAdjustmentInput struct {
	Type        Type
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	RecordedBy  int64
}

// ListAdjustmentsRequest filters adjustment listings.
type ListAdjustmentsRequest struct {
	Type   Type
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

package cashbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind marks the direction of a cash movement.
type EntryKind string

const (
	KindIncome  EntryKind = "INCOME"
	KindExpense EntryKind = "EXPENSE"
)

// Valid reports whether the kind is known.
func (k EntryKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Entry is a raw cash movement. Entries are append-only in normal
// operation; deletion is an audited admin action. An entry is not linked
// to any accrual entity.
type Entry struct {
	ID          int64           `json:"id"`
	Kind        EntryKind       `json:"kind"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	RecordedBy  int64           `json:"recorded_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateEntryInput carries fields for a new cash entry.
type CreateEntryInput struct {
	Kind        EntryKind
	Date        time.Time
	Category    string
	Subcategory string
	Amount      decimal.Decimal
	Description string
	RecordedBy  int64
}

// ListEntriesRequest filters cash entry listings.
type ListEntriesRequest struct {
	Kind     EntryKind
	Category string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

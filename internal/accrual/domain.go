package accrual

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind marks the direction of an accrual recognition.
type EntryKind string

const (
	KindRevenue EntryKind = "REVENUE"
	KindExpense EntryKind = "EXPENSE"
)

// Valid reports whether the kind is known.
func (k EntryKind) Valid() bool {
	return k == KindRevenue || k == KindExpense
}

// ObligationKind gives the obligation spawned by each entry kind.
func (k EntryKind) ObligationKind() ObligationKind {
	if k == KindRevenue {
		return Receivable
	}
	return Payable
}

// Entry is a revenue or expense recognised when earned or incurred,
// independent of cash movement. Every entry owns exactly one obligation.
type Entry struct {
	ID                 int64           `json:"id"`
	Kind               EntryKind       `json:"kind"`
	Date               time.Time       `json:"date"`
	CounterpartyName   string          `json:"counterparty_name"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	Description        string          `json:"description,omitempty"`
	LinkedObligationID int64           `json:"linked_obligation_id"`
	SourceRef          uuid.UUID       `json:"source_ref"`
	RecordedBy         int64           `json:"recorded_by"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ObligationKind separates money owed to the school from money it owes.
type ObligationKind string

const (
	Receivable ObligationKind = "RECEIVABLE"
	Payable    ObligationKind = "PAYABLE"
)

// ObligationStatus enumerates settlement progress.
type ObligationStatus string

const (
	StatusUnpaid  ObligationStatus = "UNPAID"
	StatusPartial ObligationStatus = "PARTIAL"
	StatusPaid    ObligationStatus = "PAID"
)

// StatusFor derives the status from the remaining balance. Status is never
// set independently of the balance.
func StatusFor(original, balance decimal.Decimal) ObligationStatus {
	switch {
	case balance.IsZero():
		return StatusPaid
	case balance.Equal(original):
		return StatusUnpaid
	default:
		return StatusPartial
	}
}

// Obligation tracks how much of an accrual entry remains unsettled.
// Balance always equals OriginalAmount minus PaidAmount and never goes
// negative; only the settlement engine mutates it.
type Obligation struct {
	ID               int64            `json:"id"`
	Kind             ObligationKind   `json:"kind"`
	SourceEntryID    int64            `json:"source_entry_id"`
	CounterpartyName string           `json:"counterparty_name"`
	OriginalAmount   decimal.Decimal  `json:"original_amount"`
	PaidAmount       decimal.Decimal  `json:"paid_amount"`
	Balance          decimal.Decimal  `json:"balance"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	Status           ObligationStatus `json:"status"`
	Description      string           `json:"description,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateEntryInput carries fields for a new accrual entry.
type CreateEntryInput struct {
	Kind             EntryKind
	Date             time.Time
	CounterpartyName string
	Category         string
	Subcategory      string
	Amount           decimal.Decimal
	DueDate          *time.Time
	Description      string
	RecordedBy       int64
}

// CreatedAccrual pairs the persisted entry with its obligation.
type CreatedAccrual struct {
	Entry      Entry      `json:"entry"`
	Obligation Obligation `json:"obligation"`
}

// ListEntriesRequest filters accrual entry listings.
type ListEntriesRequest struct {
	Kind         EntryKind
	Counterparty string
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

// ListObligationsRequest filters obligation listings.
type ListObligationsRequest struct {
	Kind         ObligationKind
	Status       ObligationStatus
	Counterparty string
	Limit        int
	Offset       int
}

// AgingBucket summarises outstanding balances by days overdue.
type AgingBucket struct {
	Current   decimal.Decimal `json:"current"`
	Bucket30  decimal.Decimal `json:"bucket_30"`
	Bucket60  decimal.Decimal `json:"bucket_60"`
	Bucket90  decimal.Decimal `json:"bucket_90"`
	Bucket120 decimal.Decimal `json:"bucket_120"`
}

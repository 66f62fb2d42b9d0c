package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
)

// ErrNotFound indicates the settlement does not exist.
var ErrNotFound = errors.New("settlement: not found")

// InsufficientBalanceError rejects a settlement exceeding the obligation's
// remaining balance. Carries the current balance so the caller can
// self-correct.
type InsufficientBalanceError struct {
	ObligationID int64
	Balance      decimal.Decimal
	Requested    decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("settlement of %s exceeds remaining balance %s on obligation %d",
		e.Requested.String(), e.Balance.String(), e.ObligationID)
}

// MissingDocumentTypeError rejects a payment without a document type.
type MissingDocumentTypeError struct{}

func (MissingDocumentTypeError) Error() string {
	return "payment settlements require a document type"
}

// MissingDocumentNumberError rejects a receipt-documented payment without
// a document number.
type MissingDocumentNumberError struct {
	DocumentType string
}

func (e MissingDocumentNumberError) Error() string {
	return fmt.Sprintf("document type %q requires a document number", e.DocumentType)
}

// ObligationKindMismatchError rejects a settlement aimed at the wrong
// obligation kind (receipts clear receivables, payments clear payables).
type ObligationKindMismatchError struct {
	SettlementKind Kind
	ObligationKind accrual.ObligationKind
}

func (e ObligationKindMismatchError) Error() string {
	return fmt.Sprintf("%s settlement cannot clear a %s obligation", e.SettlementKind, e.ObligationKind)
}

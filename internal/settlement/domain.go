package settlement

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Kind enumerates settlement kinds.
type Kind string

const (
	KindReceipt          Kind = "RECEIPT"
	KindPayment          Kind = "PAYMENT"
	KindCapitalInjection Kind = "CAPITAL_INJECTION"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	return k == KindReceipt || k == KindPayment || k == KindCapitalInjection
}

// DocumentTypeReceipt is the payment document type that requires a
// document number.
const DocumentTypeReceipt = "Receipt"

// Settlement records cash actually changing hands against an obligation,
// or a capital inflow with no obligation. Immutable once created.
type Settlement struct {
	ID                 int64           `json:"id"`
	Kind               Kind            `json:"kind"`
	Date               time.Time       `json:"date"`
	Amount             decimal.Decimal `json:"amount"`
	LinkedObligationID *int64          `json:"linked_obligation_id,omitempty"`
	PaymentMode        string          `json:"payment_mode"`
	DocumentType       string          `json:"document_type,omitempty"`
	DocumentNumber     string          `json:"document_number,omitempty"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory,omitempty"`
	CashEntryID        int64           `json:"cash_entry_id"`
	RecordedBy         int64           `json:"recorded_by"`
	CreatedAt          time.Time       `json:"created_at"`
}

// RecordSettlementInput carries fields for a new settlement.
type RecordSettlementInput struct {
	Kind               Kind
	Date               time.Time
	Amount             decimal.Decimal
	LinkedObligationID int64
	PaymentMode        string
	DocumentType       string
	DocumentNumber     string
	Category           string
	Subcategory        string
	RecordedBy         int64
	IdempotencyKey     string
}

// ListSettlementsRequest filters settlement listings.
type ListSettlementsRequest struct {
	Kind       Kind
	RecordedBy int64
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// CategoryPair names the cash classification applied to a mirrored entry.
type CategoryPair struct {
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
}

// Defaults holds the configured fallback classifications. The engine
// refuses hardcoded pairs; these always come from configuration.
type Defaults struct {
	Receivable CategoryPair `yaml:"receivable"`
	Payable    CategoryPair `yaml:"payable"`
	Capital    CategoryPair `yaml:"capital"`
}

// Validate ensures every fallback pair is present.
func (d Defaults) Validate() error {
	if d.Receivable.Category == "" {
		return fmt.Errorf("settlement defaults: receivable category missing")
	}
	if d.Payable.Category == "" {
		return fmt.Errorf("settlement defaults: payable category missing")
	}
	if d.Capital.Category == "" {
		return fmt.Errorf("settlement defaults: capital category missing")
	}
	return nil
}

// LoadDefaults reads fallback classifications from a YAML file.
func LoadDefaults(path string) (Defaults, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("settlement defaults: %w", err)
	}
	var d Defaults
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Defaults{}, fmt.Errorf("settlement defaults: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

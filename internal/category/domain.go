package category

import "time"

// Kind separates the income taxonomy from the expense taxonomy.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Valid reports whether the kind is a known taxonomy.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Income categories carry an optional type separating operating income
// from capital inflows; expense categories leave it empty.
const (
	TypeIncome  = "income"
	TypeCapital = "capital"
)

// Category is a taxonomy node: one named category with an ordered set of
// subcategories. Entry records reference categories by name; the reference
// is validated at write time, not enforced by the database.
type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Kind          Kind      `json:"kind"`
	Type          string    `json:"type,omitempty"`
	Subcategories []string  `json:"subcategories"`
	IsActive      bool      `json:"is_active"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasSubcategory reports an exact, case-sensitive membership test.
func (c Category) HasSubcategory(name string) bool {
	for _, sub := range c.Subcategories {
		if sub == name {
			return true
		}
	}
	return false
}

// CreateCategoryInput carries fields for a new category.
type CreateCategoryInput struct {
	Name          string
	Kind          Kind
	Type          string
	Subcategories []string
	Description   string
}

// ListFilter narrows ListActive results.
type ListFilter struct {
	Kind Kind
	Type string
}

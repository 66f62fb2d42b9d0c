package category

import (
	"context"
	"fmt"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// DuplicateCategoryError reports a category name collision.
type DuplicateCategoryError struct {
	Name string
}

func (e DuplicateCategoryError) Error() string {
	return fmt.Sprintf("category %q already exists", e.Name)
}

// DuplicateSubcategoryError reports an exact-match subcategory collision.
type DuplicateSubcategoryError struct {
	Category    string
	Subcategory string
}

func (e DuplicateSubcategoryError) Error() string {
	return fmt.Sprintf("subcategory %q already present in category %q", e.Subcategory, e.Category)
}

// UnknownClassificationError reports an entry referencing a category or
// subcategory the registry does not know.
type UnknownClassificationError struct {
	Kind        Kind
	Category    string
	Subcategory string
}

func (e UnknownClassificationError) Error() string {
	if e.Subcategory != "" {
		return fmt.Sprintf("unknown %s subcategory %q under %q", e.Kind, e.Subcategory, e.Category)
	}
	return fmt.Sprintf("unknown %s category %q", e.Kind, e.Category)
}

// RepositoryPort defines data access methods for the registry.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetCategory(ctx context.Context, id int64) (Category, error)
	GetCategoryByName(ctx context.Context, kind Kind, name string) (Category, error)
	ListCategories(ctx context.Context, filter ListFilter) ([]Category, error)
}

// Service handles category registry business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a new taxonomy node.
func (s *Service) Create(ctx context.Context, input CreateCategoryInput) (Category, error) {
	if input.Name == "" {
		return Category{}, shared.NewValidationError("name", "required")
	}
	if !input.Kind.Valid() {
		return Category{}, shared.NewValidationError("kind", "must be INCOME or EXPENSE")
	}
	if input.Type != "" {
		if input.Kind != KindIncome {
			return Category{}, shared.NewValidationError("type", "only income categories carry a type")
		}
		if input.Type != TypeIncome && input.Type != TypeCapital {
			return Category{}, shared.NewValidationError("type", "must be income or capital")
		}
	}
	seen := make(map[string]struct{}, len(input.Subcategories))
	for _, sub := range input.Subcategories {
		if sub == "" {
			return Category{}, shared.NewValidationError("subcategories", "empty subcategory name")
		}
		if _, dup := seen[sub]; dup {
			return Category{}, DuplicateSubcategoryError{Category: input.Name, Subcategory: sub}
		}
		seen[sub] = struct{}{}
	}

	var created Category
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created, err = tx.InsertCategory(ctx, input)
		return err
	})
	return created, err
}

// ListActive returns active categories filtered by kind and type.
func (s *Service) ListActive(ctx context.Context, filter ListFilter) ([]Category, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, shared.NewValidationError("kind", "must be INCOME or EXPENSE")
	}
	return s.repo.ListCategories(ctx, filter)
}

// Get retrieves a category by id.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// AddSubcategory appends a subcategory, rejecting exact duplicates. The
// duplicate check and the append run under the same row lock.
func (s *Service) AddSubcategory(ctx context.Context, categoryID int64, name string) (Category, error) {
	if name == "" {
		return Category{}, shared.NewValidationError("subcategory", "required")
	}
	var updated Category
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetCategoryForUpdate(ctx, categoryID)
		if err != nil {
			return err
		}
		if current.HasSubcategory(name) {
			return DuplicateSubcategoryError{Category: current.Name, Subcategory: name}
		}
		subs := append(append([]string(nil), current.Subcategories...), name)
		if err := tx.UpdateSubcategories(ctx, categoryID, subs); err != nil {
			return err
		}
		updated = current
		updated.Subcategories = subs
		return nil
	})
	return updated, err
}

// Deactivate soft-retires a category. Existing ledger rows keep their
// free-text reference; only new writes are blocked.
func (s *Service) Deactivate(ctx context.Context, categoryID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetCategoryForUpdate(ctx, categoryID); err != nil {
			return err
		}
		return tx.SetActive(ctx, categoryID, false)
	})
}

// ValidateSelection confirms a category/subcategory pair is registered and
// active under the given taxonomy. It backs the write-time soft-FK check
// that replaced free-text convention matching.
func (s *Service) ValidateSelection(ctx context.Context, kind Kind, name, subcategory string) error {
	cat, err := s.repo.GetCategoryByName(ctx, kind, name)
	if err != nil {
		if err == ErrNotFound {
			return UnknownClassificationError{Kind: kind, Category: name}
		}
		return err
	}
	if !cat.IsActive {
		return UnknownClassificationError{Kind: kind, Category: name}
	}
	if subcategory != "" && !cat.HasSubcategory(subcategory) {
		return UnknownClassificationError{Kind: kind, Category: name, Subcategory: subcategory}
	}
	return nil
}

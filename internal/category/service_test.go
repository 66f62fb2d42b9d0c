package category

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCategoryRepo struct {
	nextID     int64
	categories map[int64]Category
}

func newMemoryCategoryRepo() *memoryCategoryRepo {
	return &memoryCategoryRepo{nextID: 1, categories: make(map[int64]Category)}
}

func (r *memoryCategoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryCategoryTx{repo: r})
}

func (r *memoryCategoryRepo) GetCategory(_ context.Context, id int64) (Category, error) {
	cat, ok := r.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return cat, nil
}

func (r *memoryCategoryRepo) GetCategoryByName(_ context.Context, kind Kind, name string) (Category, error) {
	for _, cat := range r.categories {
		if cat.Kind == kind && cat.Name == name {
			return cat, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *memoryCategoryRepo) ListCategories(_ context.Context, filter ListFilter) ([]Category, error) {
	var out []Category
	for _, cat := range r.categories {
		if !cat.IsActive {
			continue
		}
		if filter.Kind != "" && cat.Kind != filter.Kind {
			continue
		}
		if filter.Type != "" && cat.Type != filter.Type {
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

type memoryCategoryTx struct {
	repo *memoryCategoryRepo
}

func (t *memoryCategoryTx) InsertCategory(_ context.Context, input CreateCategoryInput) (Category, error) {
	for _, cat := range t.repo.categories {
		if cat.Kind == input.Kind && cat.Name == input.Name {
			return Category{}, DuplicateCategoryError{Name: input.Name}
		}
	}
	now := time.Now()
	cat := Category{
		ID:            t.repo.nextID,
		Name:          input.Name,
		Kind:          input.Kind,
		Type:          input.Type,
		Subcategories: append([]string(nil), input.Subcategories...),
		IsActive:      true,
		Description:   input.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.repo.nextID++
	t.repo.categories[cat.ID] = cat
	return cat, nil
}

func (t *memoryCategoryTx) GetCategoryForUpdate(_ context.Context, id int64) (Category, error) {
	cat, ok := t.repo.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return cat, nil
}

func (t *memoryCategoryTx) UpdateSubcategories(_ context.Context, id int64, subcategories []string) error {
	cat, ok := t.repo.categories[id]
	if !ok {
		return ErrNotFound
	}
	cat.Subcategories = subcategories
	cat.UpdatedAt = time.Now()
	t.repo.categories[id] = cat
	return nil
}

func (t *memoryCategoryTx) SetActive(_ context.Context, id int64, active bool) error {
	cat, ok := t.repo.categories[id]
	if !ok {
		return ErrNotFound
	}
	cat.IsActive = active
	cat.UpdatedAt = time.Now()
	t.repo.categories[id] = cat
	return nil
}

func TestCreateCategory(t *testing.T) {
	svc := NewService(newMemoryCategoryRepo())

	created, err := svc.Create(context.Background(), CreateCategoryInput{
		Name:          "Student Fees",
		Kind:          KindIncome,
		Type:          TypeIncome,
		Subcategories: []string{"Tuition", "Transport"},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, created.IsActive)
	require.Equal(t, []string{"Tuition", "Transport"}, created.Subcategories)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc := NewService(newMemoryCategoryRepo())

	input := CreateCategoryInput{Name: "Utilities", Kind: KindExpense}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	var dup DuplicateCategoryError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "Utilities", dup.Name)
}

func TestCreateExpenseCategoryStoresEmptyType(t *testing.T) {
	repo := newMemoryCategoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// Untyped categories carry the empty string, never a null marker;
	// expense classifications must stay readable and selectable.
	created, err := svc.Create(ctx, CreateCategoryInput{
		Name:          "Salaries",
		Kind:          KindExpense,
		Subcategories: []string{"Teaching Staff"},
	})
	require.NoError(t, err)
	require.Equal(t, "", created.Type)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "", got.Type)

	require.NoError(t, svc.ValidateSelection(ctx, KindExpense, "Salaries", "Teaching Staff"))

	typed, err := svc.ListActive(ctx, ListFilter{Kind: KindExpense, Type: TypeCapital})
	require.NoError(t, err)
	require.Empty(t, typed)
}

func TestCreateCategorySameNameDifferentKind(t *testing.T) {
	svc := NewService(newMemoryCategoryRepo())

	_, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Transport", Kind: KindIncome})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCategoryInput{Name: "Transport", Kind: KindExpense})
	require.NoError(t, err)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc := NewService(newMemoryCategoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryInput{Kind: KindIncome})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Fees", Kind: "SIDEWAYS"})
	require.Error(t, err)

	// Only income categories carry a type.
	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Rent", Kind: KindExpense, Type: TypeIncome})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateCategoryInput{Name: "Fees", Kind: KindIncome, Type: "weird"})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateCategoryInput{
		Name: "Fees", Kind: KindIncome,
		Subcategories: []string{"Tuition", "Tuition"},
	})
	var dup DuplicateSubcategoryError
	require.ErrorAs(t, err, &dup)
}

func TestAddSubcategory(t *testing.T) {
	repo := newMemoryCategoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryInput{
		Name:          "Student Fees",
		Kind:          KindIncome,
		Subcategories: []string{"Tuition"},
	})
	require.NoError(t, err)

	updated, err := svc.AddSubcategory(ctx, created.ID, "Exam Fees")
	require.NoError(t, err)
	require.Equal(t, []string{"Tuition", "Exam Fees"}, updated.Subcategories)

	// Exact duplicate is rejected; a case variant is a distinct name.
	_, err = svc.AddSubcategory(ctx, created.ID, "Exam Fees")
	var dup DuplicateSubcategoryError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "Exam Fees", dup.Subcategory)

	_, err = svc.AddSubcategory(ctx, created.ID, "exam fees")
	require.NoError(t, err)

	_, err = svc.AddSubcategory(ctx, created.ID, "")
	require.Error(t, err)

	_, err = svc.AddSubcategory(ctx, 999, "Anything")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	repo := newMemoryCategoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryInput{Name: "Old Fees", Kind: KindIncome})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, created.ID))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	active, err := svc.ListActive(ctx, ListFilter{Kind: KindIncome})
	require.NoError(t, err)
	require.Empty(t, active)

	require.ErrorIs(t, svc.Deactivate(ctx, 999), ErrNotFound)
}

func TestValidateSelection(t *testing.T) {
	repo := newMemoryCategoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryInput{
		Name:          "Student Fees",
		Kind:          KindIncome,
		Subcategories: []string{"Tuition"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.ValidateSelection(ctx, KindIncome, "Student Fees", "Tuition"))
	require.NoError(t, svc.ValidateSelection(ctx, KindIncome, "Student Fees", ""))

	var unknown UnknownClassificationError

	err = svc.ValidateSelection(ctx, KindIncome, "Student Fees", "Hostel")
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "Hostel", unknown.Subcategory)

	err = svc.ValidateSelection(ctx, KindExpense, "Student Fees", "")
	require.ErrorAs(t, err, &unknown)

	err = svc.ValidateSelection(ctx, KindIncome, "Nonexistent", "")
	require.ErrorAs(t, err, &unknown)

	require.NoError(t, svc.Deactivate(ctx, created.ID))
	err = svc.ValidateSelection(ctx, KindIncome, "Student Fees", "Tuition")
	require.ErrorAs(t, err, &unknown)
}

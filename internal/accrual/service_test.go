package accrual

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris-erp/internal/category"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

type memoryAccrualRepo struct {
	entries     map[int64]Entry
	obligations map[int64]Obligation
	nextEntryID int64
	nextObligID int64
}

type memoryAccrualTx struct {
	repo *memoryAccrualRepo
}

func newMemoryAccrualRepo() *memoryAccrualRepo {
	return &memoryAccrualRepo{
		entries:     make(map[int64]Entry),
		obligations: make(map[int64]Obligation),
	}
}

func (r *memoryAccrualRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryAccrualTx{repo: r})
}

func (r *memoryAccrualRepo) GetEntry(ctx context.Context, id int64) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *memoryAccrualRepo) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryAccrualRepo) GetObligation(ctx context.Context, id int64) (Obligation, error) {
	o, ok := r.obligations[id]
	if !ok {
		return Obligation{}, ErrNotFound
	}
	return o, nil
}

func (r *memoryAccrualRepo) ListObligations(ctx context.Context, req ListObligationsRequest) ([]Obligation, error) {
	var out []Obligation
	for _, o := range r.obligations {
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryAccrualRepo) ListOutstanding(ctx context.Context, kind ObligationKind) ([]Obligation, error) {
	var out []Obligation
	for _, o := range r.obligations {
		if o.Kind == kind && o.Balance.IsPositive() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (t *memoryAccrualTx) InsertEntry(ctx context.Context, input CreateEntryInput) (Entry, error) {
	t.repo.nextEntryID++
	e := Entry{
		ID:               t.repo.nextEntryID,
		Kind:             input.Kind,
		Date:             input.Date,
		CounterpartyName: input.CounterpartyName,
		Category:         input.Category,
		Subcategory:      input.Subcategory,
		Amount:           input.Amount,
		DueDate:          input.DueDate,
		Description:      input.Description,
		SourceRef:        uuid.New(),
		RecordedBy:       input.RecordedBy,
		CreatedAt:        time.Now(),
	}
	t.repo.entries[e.ID] = e
	return e, nil
}

func (t *memoryAccrualTx) InsertObligation(ctx context.Context, entry Entry) (Obligation, error) {
	t.repo.nextObligID++
	o := Obligation{
		ID:               t.repo.nextObligID,
		Kind:             entry.Kind.ObligationKind(),
		SourceEntryID:    entry.ID,
		CounterpartyName: entry.CounterpartyName,
		OriginalAmount:   entry.Amount,
		PaidAmount:       decimal.Zero,
		Balance:          entry.Amount,
		DueDate:          entry.DueDate,
		Status:           StatusUnpaid,
	}
	t.repo.obligations[o.ID] = o
	return o, nil
}

func (t *memoryAccrualTx) SetEntryObligation(ctx context.Context, entryID, obligationID int64) error {
	e := t.repo.entries[entryID]
	e.LinkedObligationID = obligationID
	t.repo.entries[entryID] = e
	return nil
}

type allowAllClassifier struct{}

func (allowAllClassifier) ValidateSelection(ctx context.Context, kind category.Kind, name, subcategory string) error {
	return nil
}

type rejectingClassifier struct{}

func (rejectingClassifier) ValidateSelection(ctx context.Context, kind category.Kind, name, subcategory string) error {
	return category.UnknownClassificationError{Kind: kind, Category: name}
}

func revenueInput() CreateEntryInput {
	return CreateEntryInput{
		Kind:             KindRevenue,
		Date:             time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		CounterpartyName: "Aarav Sharma",
		Category:         "Student Fees",
		Subcategory:      "Tuition",
		Amount:           decimal.NewFromInt(12000),
		RecordedBy:       3,
	}
}

func TestCreateEntrySpawnsObligation(t *testing.T) {
	repo := newMemoryAccrualRepo()
	svc := NewService(repo, allowAllClassifier{}, nil, nil)

	created, err := svc.CreateEntry(context.Background(), revenueInput())
	require.NoError(t, err)

	require.Equal(t, Receivable, created.Obligation.Kind)
	require.Equal(t, created.Entry.ID, created.Obligation.SourceEntryID)
	require.Equal(t, created.Obligation.ID, created.Entry.LinkedObligationID)
	require.True(t, created.Obligation.Balance.Equal(created.Entry.Amount))
	require.True(t, created.Obligation.PaidAmount.IsZero())
	require.Equal(t, StatusUnpaid, created.Obligation.Status)

	// The back-link is persisted, not only returned.
	stored, err := repo.GetEntry(context.Background(), created.Entry.ID)
	require.NoError(t, err)
	require.Equal(t, created.Obligation.ID, stored.LinkedObligationID)
}

func TestCreateExpenseSpawnsPayable(t *testing.T) {
	repo := newMemoryAccrualRepo()
	svc := NewService(repo, allowAllClassifier{}, nil, nil)

	input := revenueInput()
	input.Kind = KindExpense
	input.Category = "Operating Expenses"
	created, err := svc.CreateEntry(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, Payable, created.Obligation.Kind)
}

func TestCreateEntryRejectsUnknownClassification(t *testing.T) {
	repo := newMemoryAccrualRepo()
	svc := NewService(repo, rejectingClassifier{}, nil, nil)

	_, err := svc.CreateEntry(context.Background(), revenueInput())
	var unknown category.UnknownClassificationError
	require.ErrorAs(t, err, &unknown)
	require.Empty(t, repo.entries)
}

func TestCreateEntryValidation(t *testing.T) {
	repo := newMemoryAccrualRepo()
	svc := NewService(repo, allowAllClassifier{}, nil, nil)
	ctx := context.Background()

	input := revenueInput()
	input.Amount = decimal.Zero
	_, err := svc.CreateEntry(ctx, input)
	require.True(t, shared.IsValidation(err))

	input = revenueInput()
	due := input.Date.AddDate(0, 0, -1)
	input.DueDate = &due
	_, err = svc.CreateEntry(ctx, input)
	require.True(t, shared.IsValidation(err))

	input = revenueInput()
	input.RecordedBy = 0
	_, err = svc.CreateEntry(ctx, input)
	require.ErrorIs(t, err, shared.ErrActorRequired)
}

func TestStatusFor(t *testing.T) {
	original := decimal.NewFromInt(1000)
	require.Equal(t, StatusPaid, StatusFor(original, decimal.Zero))
	require.Equal(t, StatusUnpaid, StatusFor(original, original))
	require.Equal(t, StatusPartial, StatusFor(original, decimal.NewFromInt(400)))
}

func TestCalculateAging(t *testing.T) {
	repo := newMemoryAccrualRepo()
	svc := NewService(repo, allowAllClassifier{}, nil, nil)
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	add := func(id int64, daysOverdue int, amount int64) {
		var due *time.Time
		if daysOverdue >= 0 {
			d := asOf.AddDate(0, 0, -daysOverdue)
			due = &d
		}
		repo.obligations[id] = Obligation{
			ID:      id,
			Kind:    Receivable,
			Balance: decimal.NewFromInt(amount),
			DueDate: due,
			Status:  StatusUnpaid,
		}
	}

	add(1, 0, 100)    // due today: current
	add(2, 10, 200)   // within 30
	add(3, 45, 300)   // within 60
	add(4, 80, 400)   // within 90
	add(5, 200, 500)  // older than 120
	add(6, -1, 600)   // no due date: current

	bucket, err := svc.CalculateAging(context.Background(), Receivable, asOf)
	require.NoError(t, err)
	require.True(t, bucket.Current.Equal(decimal.NewFromInt(700)))
	require.True(t, bucket.Bucket30.Equal(decimal.NewFromInt(200)))
	require.True(t, bucket.Bucket60.Equal(decimal.NewFromInt(300)))
	require.True(t, bucket.Bucket90.Equal(decimal.NewFromInt(400)))
	require.True(t, bucket.Bucket120.Equal(decimal.NewFromInt(500)))
}

func TestCalculateAgingRejectsUnknownKind(t *testing.T) {
	svc := NewService(newMemoryAccrualRepo(), allowAllClassifier{}, nil, nil)
	_, err := svc.CalculateAging(context.Background(), ObligationKind("LOAN"), time.Now())
	require.True(t, shared.IsValidation(err))
}

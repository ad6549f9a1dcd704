package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/helpers"
)

var testNow = time.Date(2025, time.October, 23, 12, 0, 0, 0, time.UTC)

type fakeTxnStore struct {
	txns     map[string]*models.Transaction
	inserted []*models.Transaction
	updated  []*models.Transaction
}

func newFakeTxnStore() *fakeTxnStore {
	return &fakeTxnStore{txns: map[string]*models.Transaction{}}
}

func (f *fakeTxnStore) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	copied := *txn
	f.inserted = append(f.inserted, &copied)
	f.txns[txn.ID+"/"+txn.UserID] = &copied
	return nil
}

func (f *fakeTxnStore) GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error) {
	txn, ok := f.txns[id+"/"+userID]
	if !ok {
		return nil, nil
	}
	copied := *txn
	return &copied, nil
}

func (f *fakeTxnStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	copied := *txn
	f.updated = append(f.updated, &copied)
	f.txns[txn.ID+"/"+txn.UserID] = &copied
	return nil
}

func (f *fakeTxnStore) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	if _, ok := f.txns[id+"/"+userID]; !ok {
		return 0, nil
	}
	delete(f.txns, id+"/"+userID)
	return 1, nil
}

func (f *fakeTxnStore) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	var all []models.Transaction
	for _, txn := range f.txns {
		if txn.UserID == userID {
			all = append(all, *txn)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type fakeResolver struct {
	categories map[string]*models.Category // keyed name+"/"+kind
	calls      int
}

func (f *fakeResolver) Resolve(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error) {
	f.calls++
	cat, ok := f.categories[name+"/"+string(kind)]
	if !ok {
		return nil, errs.NewCategoryNotFoundError("Category \"" + name + "\" not found.")
	}
	return cat, nil
}

type fakeOracle struct {
	rate  *models.ExchangeRate
	err   error
	calls int
}

func (f *fakeOracle) Resolve(ctx context.Context, date string) (*models.ExchangeRate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rate := *f.rate
	rate.RateDate = date
	return &rate, nil
}

func usdRate(pln, uah float64) *models.ExchangeRate {
	return &models.ExchangeRate{
		PLN: decimal.NewFromFloat(pln),
		UAH: decimal.NewFromFloat(uah),
		USD: decimal.NewFromInt(1),
	}
}

func coffeeResolver() *fakeResolver {
	return &fakeResolver{categories: map[string]*models.Category{
		"coffee/expense": {ID: "cat-1", UserID: "user", Name: "coffee", Kind: models.KindExpense},
		"salary/income":  {ID: "cat-2", UserID: "user", Name: "salary", Kind: models.KindIncome},
	}}
}

func newTestTransactionService(store *fakeTxnStore, cats *fakeResolver, rates *fakeOracle) *transactionService {
	svc := NewTransactionService(store, cats, rates)
	svc.clockNow = func() time.Time { return testNow }
	return svc
}

func TestIngest(t *testing.T) {
	store := newFakeTxnStore()
	oracle := &fakeOracle{rate: usdRate(4, 38)}
	svc := newTestTransactionService(store, coffeeResolver(), oracle)

	txn, category, err := svc.Ingest(helpers.TestCtx(), "user", "- 40 PLN coffee beans", models.USD)
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}

	if category.Name != "coffee" {
		t.Fatalf("category mismatch: got %q", category.Name)
	}
	if !txn.AmountUSD.Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("usd amount mismatch: got %s", txn.AmountUSD)
	}
	if txn.Sign != -1 || txn.Currency != models.PLN {
		t.Fatalf("sign/currency mismatch: %d %s", txn.Sign, txn.Currency)
	}
	if txn.RateDate != "2025-10-23" {
		t.Fatalf("rate date mismatch: got %s", txn.RateDate)
	}
	if txn.Note == nil || *txn.Note != "beans" {
		t.Fatalf("note mismatch: got %v", txn.Note)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(store.inserted))
	}
}

func TestIngestIncomeUsesIncomeKind(t *testing.T) {
	store := newFakeTxnStore()
	svc := newTestTransactionService(store, coffeeResolver(), &fakeOracle{rate: usdRate(4, 38)})

	txn, _, err := svc.Ingest(helpers.TestCtx(), "user", "+ 1200 UAH salary", models.USD)
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if txn.Sign != 1 || txn.CategoryID != "cat-2" {
		t.Fatalf("income not booked against income category: %+v", txn)
	}
}

func TestIngestUnknownCategory(t *testing.T) {
	store := newFakeTxnStore()
	oracle := &fakeOracle{rate: usdRate(4, 38)}
	svc := newTestTransactionService(store, coffeeResolver(), oracle)

	_, _, err := svc.Ingest(helpers.TestCtx(), "user", "- 40 PLN books", models.USD)
	var cerr *errs.CategoryNotFoundError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CategoryNotFoundError, got %v", err)
	}
	if len(store.inserted) != 0 {
		t.Fatal("nothing should be stored on category failure")
	}
	if oracle.calls != 0 {
		t.Fatal("rate must not be resolved when the category is unknown")
	}
}

func TestIngestParseFailureStopsPipeline(t *testing.T) {
	store := newFakeTxnStore()
	resolver := coffeeResolver()
	svc := newTestTransactionService(store, resolver, &fakeOracle{rate: usdRate(4, 38)})

	_, _, err := svc.Ingest(helpers.TestCtx(), "user", "gibberish", models.USD)
	var perr *errs.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if resolver.calls != 0 {
		t.Fatal("category resolution must not run on parse failure")
	}
}

func TestIngestKeepsApproxFlag(t *testing.T) {
	store := newFakeTxnStore()
	rate := usdRate(4, 38)
	rate.IsApprox = true
	svc := newTestTransactionService(store, coffeeResolver(), &fakeOracle{rate: rate})

	txn, _, err := svc.Ingest(helpers.TestCtx(), "user", "- 40 PLN @2024-01-05 coffee", models.USD)
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if !txn.IsRateApprox {
		t.Fatal("approximation flag must be inherited from the rate")
	}
	if txn.RateDate != "2024-01-05" {
		t.Fatalf("rate date mismatch: got %s", txn.RateDate)
	}
}

func seededTransaction() *models.Transaction {
	note := "morning"
	return &models.Transaction{
		ID:           "txn-1",
		UserID:       "user",
		CategoryID:   "cat-1",
		Sign:         -1,
		Amount:       decimal.RequireFromString("40"),
		Currency:     models.PLN,
		AmountUSD:    decimal.RequireFromString("-10"),
		Note:         &note,
		TxnAt:        testNow,
		RateDate:     "2025-10-23",
		IsRateApprox: true,
		CreatedAt:    testNow,
	}
}

func TestUpdateNoteOnlySkipsRenormalization(t *testing.T) {
	store := newFakeTxnStore()
	store.InsertTransaction(context.Background(), seededTransaction())
	oracle := &fakeOracle{rate: usdRate(5, 40)}
	svc := newTestTransactionService(store, coffeeResolver(), oracle)

	updated, err := svc.Update(helpers.TestCtx(), "txn-1", "user", dto.TransactionPatch{
		Note: helpers.Ptr("evening"),
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if oracle.calls != 0 {
		t.Fatal("a note-only edit must not resolve a rate")
	}
	if !updated.AmountUSD.Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("usd amount must be preserved, got %s", updated.AmountUSD)
	}
	if !updated.IsRateApprox {
		t.Fatal("approximation flag must be preserved")
	}
	if *updated.Note != "evening" {
		t.Fatalf("note not updated: %q", *updated.Note)
	}
}

func TestUpdateAmountRenormalizes(t *testing.T) {
	store := newFakeTxnStore()
	store.InsertTransaction(context.Background(), seededTransaction())
	oracle := &fakeOracle{rate: usdRate(4, 38)}
	svc := newTestTransactionService(store, coffeeResolver(), oracle)

	amount := decimal.RequireFromString("80")
	updated, err := svc.Update(helpers.TestCtx(), "txn-1", "user", dto.TransactionPatch{
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if oracle.calls != 1 {
		t.Fatalf("expected one rate resolution, got %d", oracle.calls)
	}
	if !updated.AmountUSD.Equal(decimal.RequireFromString("-20")) {
		t.Fatalf("usd amount mismatch: got %s", updated.AmountUSD)
	}
	if updated.IsRateApprox {
		t.Fatal("flag must follow the freshly resolved rate")
	}
}

func TestUpdateTxnDateMovesRateDate(t *testing.T) {
	store := newFakeTxnStore()
	store.InsertTransaction(context.Background(), seededTransaction())
	oracle := &fakeOracle{rate: usdRate(4, 38)}
	svc := newTestTransactionService(store, coffeeResolver(), oracle)

	newDate := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)
	updated, err := svc.Update(helpers.TestCtx(), "txn-1", "user", dto.TransactionPatch{
		TxnAt: &newDate,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.RateDate != "2025-09-01" {
		t.Fatalf("rate date mismatch: got %s", updated.RateDate)
	}
	if oracle.calls != 1 {
		t.Fatal("a date change must re-resolve the rate")
	}
}

func TestUpdateRejectsNonPositiveAmount(t *testing.T) {
	store := newFakeTxnStore()
	store.InsertTransaction(context.Background(), seededTransaction())
	svc := newTestTransactionService(store, coffeeResolver(), &fakeOracle{rate: usdRate(4, 38)})

	amount := decimal.Zero
	_, err := svc.Update(helpers.TestCtx(), "txn-1", "user", dto.TransactionPatch{Amount: &amount})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	svc := newTestTransactionService(newFakeTxnStore(), coffeeResolver(), &fakeOracle{rate: usdRate(4, 38)})

	_, err := svc.Update(helpers.TestCtx(), "nope", "user", dto.TransactionPatch{Note: helpers.Ptr("x")})
	var nerr *errs.NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteForeignOwnedIsNoop(t *testing.T) {
	store := newFakeTxnStore()
	store.InsertTransaction(context.Background(), seededTransaction())
	svc := newTestTransactionService(store, coffeeResolver(), &fakeOracle{rate: usdRate(4, 38)})

	affected, err := svc.Delete(helpers.TestCtx(), "txn-1", "someone-else")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected zero affected rows, got %d", affected)
	}

	// The rightful owner still sees the record.
	if txn, _ := svc.Get(helpers.TestCtx(), "txn-1", "user"); txn == nil {
		t.Fatal("transaction should survive a foreign delete")
	}
}

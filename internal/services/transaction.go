package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/fx"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/internal/parser"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type transactionTSStore interface {
	InsertTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID string) (int64, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error)
}

type categoryResolver interface {
	Resolve(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error)
}

type rateOracle interface {
	Resolve(ctx context.Context, date string) (*models.ExchangeRate, error)
}

// transactionService is the ingestion pipeline: parse, resolve category,
// resolve rate, normalize to USD, persist. Steps run strictly in that
// order; the first failure aborts the invocation.
type transactionService struct {
	store    transactionTSStore
	cats     categoryResolver
	rates    rateOracle
	clockNow func() time.Time
}

func NewTransactionService(store transactionTSStore, cats categoryResolver, rates rateOracle) *transactionService {
	return &transactionService{
		store:    store,
		cats:     cats,
		rates:    rates,
		clockNow: time.Now,
	}
}

// Ingest turns one free-text line into a stored transaction. The
// resolved category is returned alongside for reply rendering.
func (s *transactionService) Ingest(ctx context.Context, userID, text string, baseCurrency models.Currency) (*models.Transaction, *models.Category, error) {
	intent, err := parser.Parse(text, baseCurrency, s.clockNow())
	if err != nil {
		return nil, nil, err
	}

	category, err := s.cats.Resolve(ctx, userID, intent.CategoryName, models.KindForSign(intent.Sign))
	if err != nil {
		return nil, nil, err
	}

	rate, err := s.rates.Resolve(ctx, intent.RateDate)
	if err != nil {
		return nil, nil, err
	}

	amountUSD, err := fx.ToUSD(rate, intent.Amount, intent.Currency, intent.Sign)
	if err != nil {
		return nil, nil, err
	}

	txn := &models.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		CategoryID:   category.ID,
		Sign:         intent.Sign,
		Amount:       intent.Amount.Round(2),
		Currency:     intent.Currency,
		AmountUSD:    amountUSD,
		Note:         intent.Note,
		TxnAt:        intent.TxnAt,
		RateDate:     rate.RateDate,
		IsRateApprox: rate.IsApprox,
		CreatedAt:    s.clockNow().UTC(),
	}
	if err := s.store.InsertTransaction(ctx, txn); err != nil {
		return nil, nil, err
	}

	log := logger.FromContext(ctx)
	log.Info("transaction stored",
		"category", category.Name,
		"currency", txn.Currency,
		"rate_date", txn.RateDate,
		"rate_approx", txn.IsRateApprox,
	)
	return txn, category, nil
}

// Update merges explicit changes over the stored record. The USD figure
// and approximation flag are recomputed only when amount, currency,
// sign, or the transaction date changed; note or category edits keep
// them as ingested.
func (s *transactionService) Update(ctx context.Context, id, userID string, patch dto.TransactionPatch) (*models.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NewNotFoundError("Transaction not found.")
	}

	merged := *existing
	renormalize := false

	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, errs.NewValidationError("The amount must be a positive number.")
		}
		merged.Amount = patch.Amount.Round(2)
		renormalize = true
	}
	if patch.Currency != nil {
		currency, ok := models.ParseCurrency(string(*patch.Currency))
		if !ok {
			return nil, errs.NewValidationError("Unsupported currency. Use USD, PLN, or UAH.")
		}
		merged.Currency = currency
		renormalize = true
	}
	if patch.Sign != nil {
		if *patch.Sign != 1 && *patch.Sign != -1 {
			return nil, errs.NewValidationError("The sign must be +1 or -1.")
		}
		merged.Sign = *patch.Sign
		renormalize = true
	}
	if patch.TxnAt != nil {
		merged.TxnAt = *patch.TxnAt
		merged.RateDate = patch.TxnAt.UTC().Format(models.DateLayout)
		renormalize = true
	}
	if patch.Note != nil {
		merged.Note = patch.Note
	}
	if patch.CategoryID != nil {
		merged.CategoryID = *patch.CategoryID
	}

	if renormalize {
		rate, err := s.rates.Resolve(ctx, merged.RateDate)
		if err != nil {
			return nil, err
		}
		amountUSD, err := fx.ToUSD(rate, merged.Amount, merged.Currency, merged.Sign)
		if err != nil {
			return nil, err
		}
		merged.AmountUSD = amountUSD
		merged.IsRateApprox = rate.IsApprox
	}

	if err := s.store.UpdateTransaction(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete is scoped to (id, userID); a missing or foreign-owned id is a
// no-op reporting zero affected rows.
func (s *transactionService) Delete(ctx context.Context, id, userID string) (int64, error) {
	return s.store.DeleteTransaction(ctx, id, userID)
}

func (s *transactionService) Get(ctx context.Context, id, userID string) (*models.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errs.NewNotFoundError("Transaction not found.")
	}
	return txn, nil
}

// List returns one page of the user's transactions, newest first, plus
// the total count.
func (s *transactionService) List(ctx context.Context, userID string, page, pageSize int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	return s.store.ListTransactions(ctx, userID, pageSize, (page-1)*pageSize)
}

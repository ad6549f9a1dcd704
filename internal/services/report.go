package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/models"
)

type transactionRSStore interface {
	QueryTransactions(ctx context.Context, userID string, from, to time.Time, handle func(*models.Transaction) error) error
}

type categoryRSStore interface {
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
}

// reportService aggregates stored transactions; it never touches the
// rate oracle or the parser. An empty or inverted range is a zero
// summary and an empty breakdown, not an error.
type reportService struct {
	txs  transactionRSStore
	cats categoryRSStore
}

func NewReportService(txs transactionRSStore, cats categoryRSStore) *reportService {
	return &reportService{txs: txs, cats: cats}
}

func (s *reportService) Summarize(ctx context.Context, userID string, r dto.StatsRange) (dto.Summary, error) {
	summary := dto.Summary{
		TotalUSD:    decimal.Zero,
		IncomesUSD:  decimal.Zero,
		ExpensesUSD: decimal.Zero,
	}

	err := s.txs.QueryTransactions(ctx, userID, r.From, r.To, func(txn *models.Transaction) error {
		summary.TotalUSD = summary.TotalUSD.Add(txn.AmountUSD)
		if txn.Sign == 1 {
			summary.IncomesUSD = summary.IncomesUSD.Add(txn.AmountUSD)
		} else {
			summary.ExpensesUSD = summary.ExpensesUSD.Add(txn.AmountUSD)
		}
		return nil
	})
	if err != nil {
		return dto.Summary{}, err
	}
	return summary, nil
}

// Breakdown groups USD totals by category name, split into incomes and
// expenses, each sorted descending by magnitude.
func (s *reportService) Breakdown(ctx context.Context, userID string, r dto.StatsRange) (dto.Breakdown, error) {
	categories, err := s.cats.ListCategories(ctx, userID)
	if err != nil {
		return dto.Breakdown{}, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	incomes := map[string]decimal.Decimal{}
	expenses := map[string]decimal.Decimal{}
	err = s.txs.QueryTransactions(ctx, userID, r.From, r.To, func(txn *models.Transaction) error {
		name, ok := names[txn.CategoryID]
		if !ok {
			name = "unknown"
		}
		if txn.Sign == 1 {
			incomes[name] = incomes[name].Add(txn.AmountUSD)
		} else {
			expenses[name] = expenses[name].Add(txn.AmountUSD)
		}
		return nil
	})
	if err != nil {
		return dto.Breakdown{}, err
	}

	return dto.Breakdown{
		Incomes:  sortedTotals(incomes),
		Expenses: sortedTotals(expenses),
	}, nil
}

func sortedTotals(totals map[string]decimal.Decimal) []dto.CategoryTotal {
	out := make([]dto.CategoryTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, dto.CategoryTotal{Name: name, TotalUSD: total})
	}
	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].TotalUSD.Abs().Cmp(out[j].TotalUSD.Abs())
		if cmp == 0 {
			return out[i].Name < out[j].Name
		}
		return cmp > 0
	})
	return out
}

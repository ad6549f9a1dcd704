// Package store defines the narrow persistence contract the services
// depend on. Two interchangeable backends implement it: the pgx-based
// relational store (store/postgres) and the document store
// (store/firestore). The selection is a config concern; the core never
// learns which one it talks to.
package store

import (
	"context"
	"time"

	"github.com/dkhomenko/spendbot/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUser returns (nil, nil) when the user does not exist.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateBaseCurrency(ctx context.Context, userID string, currency models.Currency) error
}

type CategoryStore interface {
	// InsertCategory returns AlreadyExistsError when (user, name, kind)
	// is taken.
	InsertCategory(ctx context.Context, category *models.Category) error
	// GetCategoryByName returns (nil, nil) when no category matches.
	GetCategoryByName(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	// DeleteCategoriesByName removes every kind under the name and
	// returns the removed category IDs.
	DeleteCategoriesByName(ctx context.Context, userID, name string) ([]string, error)
}

type TransactionStore interface {
	InsertTransaction(ctx context.Context, txn *models.Transaction) error
	// GetTransaction is scoped to (id, userID); (nil, nil) when absent
	// or owned by someone else.
	GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	// DeleteTransaction reports affected rows; deleting a missing or
	// foreign-owned id affects zero rows and is not an error.
	DeleteTransaction(ctx context.Context, id, userID string) (int64, error)
	// ListTransactions returns one page, newest first, plus the total
	// count for the user.
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error)
	QueryTransactions(ctx context.Context, userID string, from, to time.Time, handle func(*models.Transaction) error) error
	DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error)
}

type RateStore interface {
	// GetRate returns (nil, nil) when no rate is persisted for the date.
	GetRate(ctx context.Context, date string) (*models.ExchangeRate, error)
	// InsertRate is first-writer-wins; an existing row stays untouched.
	InsertRate(ctx context.Context, rate *models.ExchangeRate) error
}

// Stores bundles one backend's implementations for wiring in main.
type Stores struct {
	Users        UserStore
	Categories   CategoryStore
	Transactions TransactionStore
	Rates        RateStore
}

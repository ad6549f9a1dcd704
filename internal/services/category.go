package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

// defaultCategories is the starter set seeded once per new user.
var defaultCategories = []struct {
	Name string
	Kind models.CategoryKind
}{
	{"food", models.KindExpense},
	{"transport", models.KindExpense},
	{"coffee", models.KindExpense},
	{"salary", models.KindIncome},
}

type categoryCSStore interface {
	InsertCategory(ctx context.Context, category *models.Category) error
	GetCategoryByName(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	DeleteCategoriesByName(ctx context.Context, userID, name string) ([]string, error)
}

type transactionCSStore interface {
	DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error)
}

type categoryCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Del(key string)
}

type categoryService struct {
	cats     categoryCSStore
	txs      transactionCSStore
	cache    categoryCache
	clockNow func() time.Time
}

func NewCategoryService(cats categoryCSStore, txs transactionCSStore, cache categoryCache) *categoryService {
	return &categoryService{
		cats:     cats,
		txs:      txs,
		cache:    cache,
		clockNow: time.Now,
	}
}

// EnsureDefaults seeds the starter categories for a user who has none.
// Safe to call repeatedly; an existing set short-circuits.
func (s *categoryService) EnsureDefaults(ctx context.Context, userID string) error {
	existing, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, def := range defaultCategories {
		category := &models.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      def.Name,
			Kind:      def.Kind,
			CreatedAt: s.clockNow().UTC(),
		}
		if err := s.cats.InsertCategory(ctx, category); err != nil {
			// A concurrent seeding run may have won the insert.
			var dup *errs.AlreadyExistsError
			if errors.As(err, &dup) {
				continue
			}
			return err
		}
	}
	s.cache.Del(categoriesKey(userID))

	log := logger.FromContext(ctx)
	log.Info("default categories seeded")
	return nil
}

func (s *categoryService) Add(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return nil, errs.NewValidationError("A category name is required.")
	}

	category := &models.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      normalized,
		Kind:      kind,
		CreatedAt: s.clockNow().UTC(),
	}
	if err := s.cats.InsertCategory(ctx, category); err != nil {
		return nil, err
	}
	s.cache.Del(categoriesKey(userID))
	return category, nil
}

func (s *categoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	if cached, ok := s.cache.Get(categoriesKey(userID)); ok {
		return cached.([]models.Category), nil
	}

	categories, err := s.cats.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(categoriesKey(userID), categories)
	return categories, nil
}

// Remove deletes every kind registered under the name along with that
// category's transactions, and reports how many categories went away.
func (s *categoryService) Remove(ctx context.Context, userID, name string) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	removedIDs, err := s.cats.DeleteCategoriesByName(ctx, userID, normalized)
	if err != nil {
		return 0, err
	}
	if len(removedIDs) == 0 {
		return 0, nil
	}

	log := logger.FromContext(ctx)
	for _, id := range removedIDs {
		affected, err := s.txs.DeleteTransactionsByCategory(ctx, userID, id)
		if err != nil {
			return 0, err
		}
		log.Info("category removed", "category_id", id, "transactions_removed", affected)
	}
	s.cache.Del(categoriesKey(userID))
	return int64(len(removedIDs)), nil
}

// Resolve finds the category a transaction must book against. Unknown
// categories are rejected with a remediation hint rather than
// auto-created.
func (s *categoryService) Resolve(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	category, err := s.cats.GetCategoryByName(ctx, userID, normalized, kind)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errs.NewCategoryNotFoundError(
			fmt.Sprintf("Category %q not found. Add it with /cat add %s %s.", normalized, normalized, kind))
	}
	return category, nil
}

func categoriesKey(userID string) string {
	return "categories:" + userID
}

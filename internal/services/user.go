package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type userUSStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateBaseCurrency(ctx context.Context, userID string, currency models.Currency) error
}

type userCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Del(key string)
}

type userService struct {
	store           userUSStore
	cache           userCache
	defaultCurrency models.Currency
	clockNow        func() time.Time
}

func NewUserService(store userUSStore, cache userCache, defaultCurrency models.Currency) *userService {
	return &userService{
		store:           store,
		cache:           cache,
		defaultCurrency: defaultCurrency,
		clockNow:        time.Now,
	}
}

// EnsureUser returns the user record for a chat identity, creating it
// with the configured default base currency on first contact. The
// second return value reports whether the user is new.
func (s *userService) EnsureUser(ctx context.Context, userID string) (*models.User, bool, error) {
	if cached, ok := s.cache.Get(userKey(userID)); ok {
		return cached.(*models.User), false, nil
	}

	existing, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.cache.Set(userKey(userID), existing)
		return existing, false, nil
	}

	user := &models.User{
		UserID:       userID,
		BaseCurrency: s.defaultCurrency,
		CreatedAt:    s.clockNow().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	s.cache.Set(userKey(userID), user)

	log := logger.FromContext(ctx)
	log.Info("user created", "base_currency", user.BaseCurrency)
	return user, true, nil
}

// SetBaseCurrency updates the currency used when an inbound line names
// none.
func (s *userService) SetBaseCurrency(ctx context.Context, userID, code string) (*models.User, error) {
	currency, ok := models.ParseCurrency(code)
	if !ok {
		return nil, errs.NewValidationError(fmt.Sprintf("Unsupported currency %q. Use USD, PLN, or UAH.", code))
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NewNotFoundError("User not found.")
	}

	if err := s.store.UpdateBaseCurrency(ctx, userID, currency); err != nil {
		return nil, err
	}
	user.BaseCurrency = currency
	s.cache.Del(userKey(userID))
	return user, nil
}

func userKey(userID string) string {
	return "user:" + userID
}

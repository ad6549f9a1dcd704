// Package postgres implements the store interfaces on a pgx connection
// pool. Money and rate columns are numeric and travel as strings across
// the driver boundary to keep decimal precision exact.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkhomenko/spendbot/internal/models"
)

type userStore struct {
	Pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *userStore {
	return &userStore{Pool: pool}
}

func (us *userStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, base_currency, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := us.Pool.Exec(ctx, query, user.UserID, string(user.BaseCurrency), user.CreatedAt)
	return err
}

func (us *userStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT user_id, base_currency, created_at
		FROM users WHERE user_id = $1
	`
	var (
		user     models.User
		currency string
	)
	err := us.Pool.QueryRow(ctx, query, userID).
		Scan(&user.UserID, &currency, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.BaseCurrency = models.Currency(currency)
	return &user, nil
}

func (us *userStore) UpdateBaseCurrency(ctx context.Context, userID string, currency models.Currency) error {
	query := `UPDATE users SET base_currency = $1 WHERE user_id = $2`
	_, err := us.Pool.Exec(ctx, query, string(currency), userID)
	return err
}

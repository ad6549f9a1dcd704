package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/models"
)

type rateStore struct {
	Pool *pgxpool.Pool
}

func NewRateStore(pool *pgxpool.Pool) *rateStore {
	return &rateStore{Pool: pool}
}

// GetRate returns the stored snapshot for a date, or nil when the date
// was never fetched. Stored rates are always exact.
func (rs *rateStore) GetRate(ctx context.Context, date string) (*models.ExchangeRate, error) {
	query := `
		SELECT rate_date::text, pln::text, uah::text, usd::text, fetched_at
		FROM fx_rates WHERE rate_date = $1
	`
	var (
		rate          models.ExchangeRate
		pln, uah, usd string
	)
	err := rs.Pool.QueryRow(ctx, query, date).
		Scan(&rate.RateDate, &pln, &uah, &usd, &rate.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if rate.PLN, err = decimal.NewFromString(pln); err != nil {
		return nil, err
	}
	if rate.UAH, err = decimal.NewFromString(uah); err != nil {
		return nil, err
	}
	if rate.USD, err = decimal.NewFromString(usd); err != nil {
		return nil, err
	}
	return &rate, nil
}

// InsertRate persists a snapshot under its date; the first writer wins
// and later attempts for the same date are silently dropped.
func (rs *rateStore) InsertRate(ctx context.Context, rate *models.ExchangeRate) error {
	query := `
		INSERT INTO fx_rates (rate_date, pln, uah, usd, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (rate_date) DO NOTHING
	`
	_, err := rs.Pool.Exec(ctx, query,
		rate.RateDate,
		rate.PLN.StringFixed(6), rate.UAH.StringFixed(6), rate.USD.StringFixed(6),
		rate.FetchedAt)
	return err
}

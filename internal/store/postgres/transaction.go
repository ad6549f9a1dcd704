package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/models"
)

const transactionColumns = `
	id, user_id, category_id, sign, amount::text, currency,
	amount_usd::text, note, txn_at, rate_date::text, is_rate_approx, created_at
`

type transactionStore struct {
	Pool *pgxpool.Pool
}

func NewTransactionStore(pool *pgxpool.Pool) *transactionStore {
	return &transactionStore{Pool: pool}
}

func (ts *transactionStore) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, category_id, sign, amount, currency,
			amount_usd, note, txn_at, rate_date, is_rate_approx, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := ts.Pool.Exec(ctx, query,
		txn.ID, txn.UserID, txn.CategoryID, txn.Sign,
		txn.Amount.StringFixed(2), string(txn.Currency),
		txn.AmountUSD.StringFixed(2), txn.Note,
		txn.TxnAt, txn.RateDate, txn.IsRateApprox, txn.CreatedAt)
	return err
}

func (ts *transactionStore) GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE id = $1 AND user_id = $2
	`
	txn, err := scanTransaction(ts.Pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (ts *transactionStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $1, sign = $2, amount = $3, currency = $4,
			amount_usd = $5, note = $6, txn_at = $7, rate_date = $8,
			is_rate_approx = $9
		WHERE id = $10 AND user_id = $11
	`
	_, err := ts.Pool.Exec(ctx, query,
		txn.CategoryID, txn.Sign, txn.Amount.StringFixed(2), string(txn.Currency),
		txn.AmountUSD.StringFixed(2), txn.Note, txn.TxnAt, txn.RateDate,
		txn.IsRateApprox, txn.ID, txn.UserID)
	return err
}

func (ts *transactionStore) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	cmd, err := ts.Pool.Exec(ctx, query, id, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (ts *transactionStore) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	countQuery := `SELECT count(*) FROM transactions WHERE user_id = $1`
	if err := ts.Pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY txn_at DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := ts.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, *txn)
	}
	return txns, total, rows.Err()
}

func (ts *transactionStore) QueryTransactions(ctx context.Context, userID string, from, to time.Time, handle func(*models.Transaction) error) error {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND txn_at >= $2 AND txn_at <= $3
		ORDER BY txn_at
	`
	rows, err := ts.Pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return err
		}
		if err := handle(txn); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (ts *transactionStore) DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	query := `DELETE FROM transactions WHERE user_id = $1 AND category_id = $2`
	cmd, err := ts.Pool.Exec(ctx, query, userID, categoryID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		txn       models.Transaction
		amount    string
		currency  string
		amountUSD string
	)
	err := row.Scan(
		&txn.ID, &txn.UserID, &txn.CategoryID, &txn.Sign, &amount, &currency,
		&amountUSD, &txn.Note, &txn.TxnAt, &txn.RateDate, &txn.IsRateApprox, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	if txn.AmountUSD, err = decimal.NewFromString(amountUSD); err != nil {
		return nil, err
	}
	txn.Currency = models.Currency(currency)
	return &txn, nil
}

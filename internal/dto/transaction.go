package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/models"
)

// TransactionIntent is the parser's output: one free-text line reduced to
// a structured transaction, before category resolution and rate lookup.
type TransactionIntent struct {
	Sign         int
	Amount       decimal.Decimal
	Currency     models.Currency
	CategoryName string
	Note         *string
	TxnAt        time.Time
	RateDate     string
}

// TransactionPatch carries explicit changes for the update path. Nil
// fields are left untouched. Amount, Currency, Sign, and TxnAt trigger
// re-normalization; Note and CategoryID do not.
type TransactionPatch struct {
	Amount     *decimal.Decimal
	Currency   *models.Currency
	Sign       *int
	Note       *string
	CategoryID *string
	TxnAt      *time.Time
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a stored income/expense record. Amount is kept in the
// original currency; AmountUSD is the normalized figure computed once at
// ingestion (or re-computed on amount/currency/sign/rate-date updates)
// and never re-rounded afterwards.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	CategoryID   string          `json:"categoryId"`
	Sign         int             `json:"sign"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     Currency        `json:"currency"`
	AmountUSD    decimal.Decimal `json:"amountUsd"`
	Note         *string         `json:"note,omitempty"`
	TxnAt        time.Time       `json:"txnAt"`
	RateDate     string          `json:"rateDate"`
	IsRateApprox bool            `json:"isRateApprox"`
	CreatedAt    time.Time       `json:"createdAt"`
}

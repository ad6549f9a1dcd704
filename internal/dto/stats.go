package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type StatsRange struct {
	From time.Time
	To   time.Time
}

type Summary struct {
	TotalUSD    decimal.Decimal `json:"totalUsd"`
	IncomesUSD  decimal.Decimal `json:"incomesUsd"`
	ExpensesUSD decimal.Decimal `json:"expensesUsd"`
}

// CategoryTotal keeps the signed USD sum for one category; expenses stay
// negative so callers can derive shares without re-signing.
type CategoryTotal struct {
	Name     string          `json:"name"`
	TotalUSD decimal.Decimal `json:"totalUsd"`
}

type Breakdown struct {
	Incomes  []CategoryTotal `json:"incomes"`
	Expenses []CategoryTotal `json:"expenses"`
}

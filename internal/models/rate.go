package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used as the rate lookup key.
const DateLayout = "2006-01-02"

// ExchangeRate holds USD-based conversion factors for one calendar date:
// units of currency per 1 USD. A persisted rate is never approximate;
// IsApprox is set only on ephemeral same-day fallback copies.
type ExchangeRate struct {
	RateDate  string          `json:"rateDate"`
	PLN       decimal.Decimal `json:"pln"`
	UAH       decimal.Decimal `json:"uah"`
	USD       decimal.Decimal `json:"usd"`
	IsApprox  bool            `json:"isApprox"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// FactorFor returns the conversion factor for the given currency, or
// decimal zero when the rate carries none.
func (r *ExchangeRate) FactorFor(currency Currency) decimal.Decimal {
	switch currency {
	case PLN:
		return r.PLN
	case UAH:
		return r.UAH
	case USD:
		return r.USD
	}
	return decimal.Zero
}

// ApproxFor returns a copy of the rate relabeled with the requested date
// and flagged approximate. Used by the same-day fallback path.
func (r *ExchangeRate) ApproxFor(date string) *ExchangeRate {
	approx := *r
	approx.RateDate = date
	approx.IsApprox = true
	return &approx
}

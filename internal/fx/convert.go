package fx

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
)

// ToUSD converts a signed amount into USD using the resolved rate:
// round2(sign * amount / factor), rounded half away from zero exactly
// once, at this boundary. USD's own factor is 1, so the formula is
// uniform across currencies. A zero or absent factor is a
// MissingRateError.
func ToUSD(rate *models.ExchangeRate, amount decimal.Decimal, currency models.Currency, sign int) (decimal.Decimal, error) {
	factor := rate.FactorFor(currency)
	if factor.IsZero() {
		return decimal.Zero, errs.NewMissingRateError(fmt.Sprintf("missing fx rate for %s on %s", currency, rate.RateDate))
	}

	signed := amount.Mul(decimal.NewFromInt(int64(sign)))
	return signed.Div(factor).Round(2), nil
}

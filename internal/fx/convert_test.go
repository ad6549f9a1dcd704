package fx

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
)

func TestToUSD(t *testing.T) {
	rate := testRate("2024-06-01", 4, 38)

	tests := []struct {
		name     string
		amount   string
		currency models.Currency
		sign     int
		want     string
	}{
		{"pln expense", "40", models.PLN, -1, "-10"},
		{"uah income", "76", models.UAH, 1, "2"},
		{"usd passthrough", "12.34", models.USD, -1, "-12.34"},
		{"rounds half away from zero", "1.005", models.USD, 1, "1.01"},
		{"rounds half away from zero negative", "1.005", models.USD, -1, "-1.01"},
		{"repeating fraction", "10", models.UAH, -1, "-0.26"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToUSD(rate, decimal.RequireFromString(tc.amount), tc.currency, tc.sign)
			if err != nil {
				t.Fatalf("ToUSD error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("usd mismatch: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestToUSDMissingFactor(t *testing.T) {
	rate := &models.ExchangeRate{
		RateDate: "2024-06-01",
		PLN:      decimal.NewFromInt(4),
		USD:      decimal.NewFromInt(1),
		// UAH factor absent
	}

	_, err := ToUSD(rate, decimal.NewFromInt(10), models.UAH, -1)
	var merr *errs.MissingRateError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MissingRateError, got %v", err)
	}
}

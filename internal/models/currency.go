package models

import "strings"

type Currency string

const (
	USD Currency = "USD"
	PLN Currency = "PLN"
	UAH Currency = "UAH"
)

// SupportedCurrencies is the fixed set the parser and the rate provider
// agree on.
var SupportedCurrencies = []Currency{USD, PLN, UAH}

// ParseCurrency normalizes a currency code. The second return value is
// false when the code is not in the supported set.
func ParseCurrency(code string) (Currency, bool) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case USD:
		return USD, true
	case PLN:
		return PLN, true
	case UAH:
		return UAH, true
	}
	return "", false
}

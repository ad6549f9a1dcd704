// Package parser turns one free-text chat line into a transaction
// intent. Grammar: [sign] amount [currency] [@date] category [note...],
// where the date tag may also appear anywhere inside the note.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/helpers"
)

var (
	inputPattern   = regexp.MustCompile(`^([+-]?)\s*(\d+(?:[.,]\d{1,2})?)\s*((?i:PLN|UAH|USD))?\s*(@\d{4}-\d{2}-\d{2})?\s*(.*)$`)
	dateTagPattern = regexp.MustCompile(`^@(\d{4}-\d{2}-\d{2})$`)
)

// Parse converts text into a TransactionIntent. defaultCurrency fills in
// when the line names no currency; now anchors date-less transactions.
// All failures are ParseErrors with user-facing messages.
func Parse(text string, defaultCurrency models.Currency, now time.Time) (*dto.TransactionIntent, error) {
	match := inputPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return nil, errs.NewParseError(`Can't recognize that transaction. Try the format "- 45 PLN coffee".`)
	}

	sign := -1
	if match[1] == "+" {
		sign = 1
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(match[2], ",", "."))
	if err != nil {
		return nil, errs.NewParseError("The amount doesn't look like a number.")
	}

	currency := defaultCurrency
	if match[3] != "" {
		currency, _ = models.ParseCurrency(match[3])
	}

	rest := strings.TrimSpace(match[5])
	if rest == "" {
		return nil, errs.NewParseError(`A category is required. Example: "- 45.9 PLN coffee @2025-10-22".`)
	}

	parts := strings.Fields(rest)
	categoryName := strings.ToLower(parts[0])
	parts = parts[1:]

	txnAt := now
	if match[4] != "" {
		txnAt, err = parseDateTag(match[4])
		if err != nil {
			return nil, errs.NewParseError("That date tag isn't a real calendar date.")
		}
	}

	// The tag may be buried in the note; the first matching token wins
	// and is consumed.
	for i, token := range parts {
		if !dateTagPattern.MatchString(token) {
			continue
		}
		txnAt, err = parseDateTag(token)
		if err != nil {
			return nil, errs.NewParseError("That date tag isn't a real calendar date.")
		}
		parts = append(parts[:i], parts[i+1:]...)
		break
	}

	var note *string
	if len(parts) > 0 {
		note = helpers.Ptr(strings.Join(parts, " "))
	}

	return &dto.TransactionIntent{
		Sign:         sign,
		Amount:       amount,
		Currency:     currency,
		CategoryName: categoryName,
		Note:         note,
		TxnAt:        txnAt,
		RateDate:     txnAt.UTC().Format(models.DateLayout),
	}, nil
}

func parseDateTag(tag string) (time.Time, error) {
	return time.Parse(models.DateLayout, strings.TrimPrefix(tag, "@"))
}

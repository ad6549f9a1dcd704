package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/models"
)

const helpText = `Send a transaction as free text, for example:
- 45 PLN coffee
+ 1200 salary bonus @2025-10-01

Commands:
/today /week /month - totals for the period
/stats [YYYY-MM] - breakdown by category
/history - browse and edit transactions
/cat list | add <name> [income] | del <name>
/rate [YYYY-MM-DD] - exchange rates
/currency <code> - default currency (USD, PLN, UAH)`

// FormatUSD renders a signed dollar figure, e.g. "-$10.00".
func FormatUSD(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

func formatAmount(txn *models.Transaction) string {
	symbol := "-"
	if txn.Sign == 1 {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s %s", symbol, txn.Amount.StringFixed(2), txn.Currency)
}

func formatLine(txn *models.Transaction, categoryName string) string {
	line := fmt.Sprintf("%s %s (%s)", formatAmount(txn), categoryName, FormatUSD(txn.AmountUSD))
	if txn.IsRateApprox {
		line += " ~"
	}
	return line
}

func welcomeReply(created bool) dto.Reply {
	if created {
		return dto.Reply{Text: "Welcome! I track your spending in USD.\n\n" + helpText}
	}
	return dto.Reply{Text: helpText}
}

func ingestedReply(txn *models.Transaction, category *models.Category) dto.Reply {
	text := "Recorded: " + formatLine(txn, category.Name) + " on " + txn.TxnAt.UTC().Format(models.DateLayout)
	if txn.IsRateApprox {
		text += "\nThe rate for that day was unavailable; today's rate was used instead."
	}
	return dto.Reply{Text: text}
}

func summaryReply(label string, summary dto.Summary) dto.Reply {
	return dto.Reply{Text: fmt.Sprintf(
		"%s\nIncome: %s\nExpenses: %s\nNet: %s",
		label,
		FormatUSD(summary.IncomesUSD),
		FormatUSD(summary.ExpensesUSD),
		FormatUSD(summary.TotalUSD),
	)}
}

func breakdownReply(label string, breakdown dto.Breakdown) dto.Reply {
	var b strings.Builder
	b.WriteString(label)

	if len(breakdown.Incomes) == 0 && len(breakdown.Expenses) == 0 {
		b.WriteString("\nNothing recorded in this period.")
		return dto.Reply{Text: b.String()}
	}

	if len(breakdown.Incomes) > 0 {
		b.WriteString("\n\nIncome:")
		for _, total := range breakdown.Incomes {
			fmt.Fprintf(&b, "\n  %s: %s", total.Name, FormatUSD(total.TotalUSD))
		}
	}
	if len(breakdown.Expenses) > 0 {
		b.WriteString("\n\nExpenses:")
		for _, total := range breakdown.Expenses {
			fmt.Fprintf(&b, "\n  %s: %s", total.Name, FormatUSD(total.TotalUSD))
		}
	}
	return dto.Reply{Text: b.String()}
}

func categoriesReply(categories []models.Category) dto.Reply {
	if len(categories) == 0 {
		return dto.Reply{Text: "No categories yet. Add one with /cat add <name>."}
	}
	var b strings.Builder
	b.WriteString("Your categories:")
	for _, category := range categories {
		fmt.Fprintf(&b, "\n  %s (%s)", category.Name, category.Kind)
	}
	return dto.Reply{Text: b.String()}
}

func rateReply(rate *models.ExchangeRate) dto.Reply {
	text := fmt.Sprintf("Rates for %s (per 1 USD):\nPLN: %s\nUAH: %s",
		rate.RateDate, rate.PLN.String(), rate.UAH.String())
	if rate.IsApprox {
		text += "\nApproximate: borrowed from today's rate."
	}
	return dto.Reply{Text: text}
}

// historyPageSize is how many transactions one history page shows.
const historyPageSize = 10

func historyReply(txns []models.Transaction, names map[string]string, page int, total int64, edit bool) dto.Reply {
	if total == 0 {
		return dto.Reply{Text: "No transactions yet. Send one like \"- 45 PLN coffee\".", Edit: edit}
	}

	pages := int((total + historyPageSize - 1) / historyPageSize)
	var b strings.Builder
	fmt.Fprintf(&b, "Transactions (page %d of %d). Tap one to manage it.", page, pages)

	var keyboard [][]dto.Button
	for i := range txns {
		txn := &txns[i]
		name, ok := names[txn.CategoryID]
		if !ok {
			name = "unknown"
		}
		label := fmt.Sprintf("%s %s %s",
			txn.TxnAt.UTC().Format("01-02"), formatAmount(txn), name)
		keyboard = append(keyboard, []dto.Button{
			{Label: label, Data: "txn_view:" + txn.ID},
		})
	}

	var nav []dto.Button
	if page > 1 {
		nav = append(nav, dto.Button{Label: "< Prev", Data: fmt.Sprintf("history:%d", page-1)})
	}
	if page < pages {
		nav = append(nav, dto.Button{Label: "Next >", Data: fmt.Sprintf("history:%d", page+1)})
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}

	return dto.Reply{Text: b.String(), Keyboard: keyboard, Edit: edit}
}

func detailReply(txn *models.Transaction, categoryName string, edit bool) dto.Reply {
	var b strings.Builder
	b.WriteString(formatLine(txn, categoryName))
	fmt.Fprintf(&b, "\nDate: %s", txn.TxnAt.UTC().Format(models.DateLayout))
	if txn.Note != nil {
		fmt.Fprintf(&b, "\nNote: %s", *txn.Note)
	}
	fmt.Fprintf(&b, "\nRate date: %s", txn.RateDate)

	keyboard := [][]dto.Button{
		{
			{Label: "Edit amount", Data: "txn_edit_amt:" + txn.ID},
			{Label: "Edit note", Data: "txn_edit_note:" + txn.ID},
		},
		{
			{Label: "Delete", Data: "txn_del_ask:" + txn.ID},
			{Label: "Back", Data: "txn_list_back"},
		},
	}
	return dto.Reply{Text: b.String(), Keyboard: keyboard, Edit: edit}
}

func deleteConfirmReply(id string) dto.Reply {
	return dto.Reply{
		Text: "Delete this transaction? This cannot be undone.",
		Keyboard: [][]dto.Button{{
			{Label: "Yes, delete", Data: "txn_del_yes:" + id},
			{Label: "Cancel", Data: "txn_view:" + id},
		}},
		Edit: true,
	}
}

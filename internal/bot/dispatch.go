// Package bot routes inbound chat updates to the domain services and
// renders transport-agnostic replies. It knows nothing about Telegram
// or HTTP; the webhook layer owns the wire format.
package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/dates"
	"github.com/dkhomenko/spendbot/pkg/helpers"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type userService interface {
	EnsureUser(ctx context.Context, userID string) (*models.User, bool, error)
	SetBaseCurrency(ctx context.Context, userID, code string) (*models.User, error)
}

type categoryService interface {
	EnsureDefaults(ctx context.Context, userID string) error
	Add(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error)
	List(ctx context.Context, userID string) ([]models.Category, error)
	Remove(ctx context.Context, userID, name string) (int64, error)
}

type transactionService interface {
	Ingest(ctx context.Context, userID, text string, baseCurrency models.Currency) (*models.Transaction, *models.Category, error)
	Update(ctx context.Context, id, userID string, patch dto.TransactionPatch) (*models.Transaction, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
	Get(ctx context.Context, id, userID string) (*models.Transaction, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Transaction, int64, error)
}

type reportService interface {
	Summarize(ctx context.Context, userID string, r dto.StatsRange) (dto.Summary, error)
	Breakdown(ctx context.Context, userID string, r dto.StatsRange) (dto.Breakdown, error)
}

type rateService interface {
	Resolve(ctx context.Context, date string) (*models.ExchangeRate, error)
}

type Handler struct {
	Users        userService
	Categories   categoryService
	Transactions transactionService
	Reports      reportService
	Rates        rateService
	States       *StateStore

	clockNow func() time.Time
}

func NewHandler(users userService, categories categoryService, transactions transactionService, reports reportService, rates rateService, states *StateStore) *Handler {
	return &Handler{
		Users:        users,
		Categories:   categories,
		Transactions: transactions,
		Reports:      reports,
		Rates:        rates,
		States:       states,
		clockNow:     time.Now,
	}
}

// HandleUpdate turns one inbound update into the reply to send back.
// Domain failures become user-facing replies; only the generic apology
// path hides the underlying error, which is logged instead.
func (h *Handler) HandleUpdate(ctx context.Context, upd dto.Update) dto.Reply {
	user, created, err := h.Users.EnsureUser(ctx, upd.UserID)
	if err != nil {
		return h.errorReply(ctx, err)
	}
	if created {
		if err := h.Categories.EnsureDefaults(ctx, upd.UserID); err != nil {
			return h.errorReply(ctx, err)
		}
	}

	if upd.Callback != "" {
		return h.handleCallback(ctx, upd)
	}

	text := strings.TrimSpace(upd.Text)
	if strings.HasPrefix(text, "/") {
		h.States.Clear(upd.UserID)
		return h.handleCommand(ctx, upd.UserID, user, text, created)
	}

	if state := h.States.Get(upd.UserID); state.Kind != StateIdle {
		return h.handleEditInput(ctx, upd.UserID, state, text)
	}

	return h.ingest(ctx, upd.UserID, user, text)
}

func (h *Handler) handleCommand(ctx context.Context, userID string, user *models.User, text string, created bool) dto.Reply {
	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "/start", "/help":
		return welcomeReply(created || command == "/start")

	case "/add":
		if len(args) == 0 {
			return dto.Reply{Text: `Usage: /add - 45 PLN coffee`}
		}
		return h.ingest(ctx, userID, user, strings.Join(args, " "))

	case "/today":
		from, to := dates.DayRange(h.clockNow())
		return h.summarize(ctx, userID, dates.DayLabel(h.clockNow()), from, to)

	case "/week":
		from, to := dates.WeekRange(h.clockNow())
		return h.summarize(ctx, userID, dates.RangeLabel(from, to), from, to)

	case "/month":
		from, to := dates.MonthRange(h.clockNow())
		return h.summarize(ctx, userID, dates.RangeLabel(from, to), from, to)

	case "/stats":
		return h.stats(ctx, userID, args)

	case "/cat":
		return h.categories(ctx, userID, args)

	case "/rate":
		return h.rate(ctx, args)

	case "/history":
		return h.history(ctx, userID, 1, false)

	case "/currency":
		if len(args) != 1 {
			return dto.Reply{Text: "Usage: /currency USD (or PLN, UAH)"}
		}
		updated, err := h.Users.SetBaseCurrency(ctx, userID, args[0])
		if err != nil {
			return h.errorReply(ctx, err)
		}
		return dto.Reply{Text: "Default currency set to " + string(updated.BaseCurrency) + "."}

	default:
		return dto.Reply{Text: "Unknown command. Send /help for the list."}
	}
}

func (h *Handler) handleCallback(ctx context.Context, upd dto.Update) dto.Reply {
	action, arg, _ := strings.Cut(upd.Callback, ":")

	switch action {
	case "history":
		page, err := strconv.Atoi(arg)
		if err != nil || page < 1 {
			page = 1
		}
		return h.history(ctx, upd.UserID, page, true)

	case "txn_list_back":
		return h.history(ctx, upd.UserID, 1, true)

	case "txn_view":
		return h.detail(ctx, upd.UserID, arg, true)

	case "txn_del_ask":
		return deleteConfirmReply(arg)

	case "txn_del_yes":
		affected, err := h.Transactions.Delete(ctx, arg, upd.UserID)
		if err != nil {
			return h.errorReply(ctx, err)
		}
		if affected == 0 {
			return dto.Reply{Text: "That transaction is already gone.", Edit: true}
		}
		return dto.Reply{Text: "Deleted.", Edit: true}

	case "txn_edit_amt":
		h.States.Set(upd.UserID, EditState{Kind: StateAwaitingAmount, TxnID: arg})
		return dto.Reply{Text: "Send the new amount, e.g. 45.90"}

	case "txn_edit_note":
		h.States.Set(upd.UserID, EditState{Kind: StateAwaitingNote, TxnID: arg})
		return dto.Reply{Text: "Send the new note."}

	default:
		log := logger.FromContext(ctx)
		log.Warn("unknown callback", "callback", upd.Callback)
		return dto.Reply{Text: "That button is no longer valid.", Edit: true}
	}
}

func (h *Handler) handleEditInput(ctx context.Context, userID string, state EditState, text string) dto.Reply {
	defer h.States.Clear(userID)

	var patch dto.TransactionPatch
	switch state.Kind {
	case StateAwaitingAmount:
		amount, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
		if err != nil || !amount.IsPositive() {
			return dto.Reply{Text: "That doesn't look like a positive amount. Edit cancelled."}
		}
		patch.Amount = &amount
	case StateAwaitingNote:
		if text == "" {
			return dto.Reply{Text: "The note can't be empty. Edit cancelled."}
		}
		patch.Note = helpers.Ptr(text)
	default:
		return dto.Reply{Text: "Edit cancelled."}
	}

	txn, err := h.Transactions.Update(ctx, state.TxnID, userID, patch)
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return dto.Reply{Text: "Updated: " + formatLine(txn, h.categoryName(ctx, userID, txn.CategoryID))}
}

func (h *Handler) ingest(ctx context.Context, userID string, user *models.User, text string) dto.Reply {
	txn, category, err := h.Transactions.Ingest(ctx, userID, text, user.BaseCurrency)
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return ingestedReply(txn, category)
}

func (h *Handler) summarize(ctx context.Context, userID, label string, from, to time.Time) dto.Reply {
	summary, err := h.Reports.Summarize(ctx, userID, dto.StatsRange{From: from, To: to})
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return summaryReply(label, summary)
}

func (h *Handler) stats(ctx context.Context, userID string, args []string) dto.Reply {
	var (
		from, to time.Time
		err      error
	)
	switch len(args) {
	case 0:
		from, to = dates.MonthRange(h.clockNow())
	case 1:
		from, to, err = dates.MonthRangeFor(args[0])
		if err != nil {
			// A full date narrows the stats to that single day.
			from, to, err = dates.RangeBetween(args[0], args[0])
		}
	case 2:
		from, to, err = dates.RangeBetween(args[0], args[1])
	default:
		return dto.Reply{Text: "Usage: /stats [YYYY-MM] or /stats <from> <to>"}
	}
	if err != nil {
		return dto.Reply{Text: "I can't read that period. Try /stats 2025-09."}
	}

	breakdown, err := h.Reports.Breakdown(ctx, userID, dto.StatsRange{From: from, To: to})
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return breakdownReply(dates.RangeLabel(from, to), breakdown)
}

func (h *Handler) categories(ctx context.Context, userID string, args []string) dto.Reply {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch strings.ToLower(args[0]) {
	case "list":
		categories, err := h.Categories.List(ctx, userID)
		if err != nil {
			return h.errorReply(ctx, err)
		}
		return categoriesReply(categories)

	case "add":
		if len(args) < 2 {
			return dto.Reply{Text: "Usage: /cat add <name> [income]"}
		}
		kind := models.KindExpense
		if len(args) > 2 {
			parsed, ok := models.ParseCategoryKind(strings.ToLower(args[2]))
			if !ok {
				return dto.Reply{Text: "The kind must be income or expense."}
			}
			kind = parsed
		}
		category, err := h.Categories.Add(ctx, userID, args[1], kind)
		if err != nil {
			return h.errorReply(ctx, err)
		}
		return dto.Reply{Text: "Added category " + category.Name + " (" + string(category.Kind) + ")."}

	case "del", "rm":
		if len(args) < 2 {
			return dto.Reply{Text: "Usage: /cat del <name>"}
		}
		removed, err := h.Categories.Remove(ctx, userID, args[1])
		if err != nil {
			return h.errorReply(ctx, err)
		}
		if removed == 0 {
			return dto.Reply{Text: "No category named " + strings.ToLower(args[1]) + "."}
		}
		return dto.Reply{Text: "Removed the category and its transactions."}

	default:
		return dto.Reply{Text: "Usage: /cat list | add <name> [income] | del <name>"}
	}
}

func (h *Handler) rate(ctx context.Context, args []string) dto.Reply {
	date := h.clockNow().UTC().Format(models.DateLayout)
	if len(args) > 0 {
		parsed, err := time.Parse(models.DateLayout, args[0])
		if err != nil {
			return dto.Reply{Text: "Usage: /rate [YYYY-MM-DD]"}
		}
		date = parsed.Format(models.DateLayout)
	}

	rate, err := h.Rates.Resolve(ctx, date)
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return rateReply(rate)
}

func (h *Handler) history(ctx context.Context, userID string, page int, edit bool) dto.Reply {
	txns, total, err := h.Transactions.List(ctx, userID, page, historyPageSize)
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return historyReply(txns, h.categoryNames(ctx, userID), page, total, edit)
}

func (h *Handler) detail(ctx context.Context, userID, id string, edit bool) dto.Reply {
	txn, err := h.Transactions.Get(ctx, id, userID)
	if err != nil {
		return h.errorReply(ctx, err)
	}
	return detailReply(txn, h.categoryName(ctx, userID, txn.CategoryID), edit)
}

func (h *Handler) categoryNames(ctx context.Context, userID string) map[string]string {
	names := map[string]string{}
	categories, err := h.Categories.List(ctx, userID)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn("category lookup failed", "error", err)
		return names
	}
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	return names
}

func (h *Handler) categoryName(ctx context.Context, userID, categoryID string) string {
	name, ok := h.categoryNames(ctx, userID)[categoryID]
	if !ok {
		return "unknown"
	}
	return name
}

// errorReply maps a domain error onto the message the user sees.
func (h *Handler) errorReply(ctx context.Context, err error) dto.Reply {
	switch e := err.(type) {
	case *errs.ParseError, *errs.ValidationError, *errs.CategoryNotFoundError,
		*errs.NotFoundError, *errs.AlreadyExistsError:
		return dto.Reply{Text: err.Error()}

	case *errs.FetchError:
		log := logger.FromContext(ctx)
		log.Error("rate provider error", "error", e.Message)
		return dto.Reply{Text: "Exchange rates are unavailable right now. Please try again later."}

	default:
		log := logger.FromContext(ctx)
		log.Error("unexpected error", "error", err)
		return dto.Reply{Text: "Something went wrong. Please try again."}
	}
}

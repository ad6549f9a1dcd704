package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/response"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type BotHandler interface {
	HandleUpdate(ctx context.Context, upd dto.Update) dto.Reply
}

type webhookHandlers struct {
	ResponseHandler response.ResponseHandler
	Bot             BotHandler
	WebhookSecret   string
	allowed         map[string]bool
}

func NewWebhookHandlers(deps *Deps) *webhookHandlers {
	allowed := map[string]bool{}
	for _, id := range deps.AllowedUserIDs {
		allowed[id] = true
	}
	return &webhookHandlers{
		ResponseHandler: deps.ResponseHandler,
		Bot:             deps.Bot,
		WebhookSecret:   deps.WebhookSecret,
		allowed:         allowed,
	}
}

func (h *webhookHandlers) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleWebhook)
	return r
}

// HandleWebhook receives one chat update and answers with the reply to
// render. The transport adapter in front of this service translates
// provider payloads into the Update shape and replies back out.
func (h *webhookHandlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.WebhookSecret != "" && r.Header.Get("X-Webhook-Secret") != h.WebhookSecret {
		h.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "bad webhook secret")
		return
	}

	var upd dto.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input", "malformed update")
		return
	}
	if upd.UserID == "" {
		h.ResponseHandler.WriteError(w, r, http.StatusBadRequest, "invalid_input", "userId is required")
		return
	}

	// An empty allowlist means the instance is open.
	if len(h.allowed) > 0 && !h.allowed[upd.UserID] {
		log := logger.FromContext(r.Context())
		log.Warn("rejected unknown user", "user_id", upd.UserID)
		h.ResponseHandler.WriteError(w, r, http.StatusForbidden, "forbidden", "this bot is private")
		return
	}

	reply := h.Bot.HandleUpdate(r.Context(), upd)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, reply)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

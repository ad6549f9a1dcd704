package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkhomenko/spendbot/internal/dto"
	"github.com/dkhomenko/spendbot/internal/response"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type fakeBot struct {
	updates []dto.Update
}

func (f *fakeBot) HandleUpdate(ctx context.Context, upd dto.Update) dto.Reply {
	f.updates = append(f.updates, upd)
	return dto.Reply{Text: "ok: " + upd.Text}
}

func newWebhookFixture(secret string, allowed []string) (*webhookHandlers, *fakeBot) {
	bot := &fakeBot{}
	log := logger.New("error", logger.NewTestHandler)
	deps := &Deps{
		Log:             log,
		ResponseHandler: response.New(log),
		Bot:             bot,
		WebhookSecret:   secret,
		AllowedUserIDs:  allowed,
	}
	return NewWebhookHandlers(deps), bot
}

func postUpdate(t *testing.T, h *webhookHandlers, secret string, upd dto.Update) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(upd)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	w := httptest.NewRecorder()
	h.HandleWebhook(w, req)
	return w
}

func TestWebhookDispatches(t *testing.T) {
	h, bot := newWebhookFixture("s3cret", nil)

	w := postUpdate(t, h, "s3cret", dto.Update{UserID: "42", Text: "- 5 coffee"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if len(bot.updates) != 1 || bot.updates[0].UserID != "42" {
		t.Fatalf("update not dispatched: %+v", bot.updates)
	}
	if !strings.Contains(w.Body.String(), "ok: - 5 coffee") {
		t.Fatalf("reply missing from body: %s", w.Body.String())
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	h, bot := newWebhookFixture("s3cret", nil)

	w := postUpdate(t, h, "wrong", dto.Update{UserID: "42", Text: "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(bot.updates) != 0 {
		t.Fatal("update must not reach the bot")
	}
}

func TestWebhookAllowlist(t *testing.T) {
	h, bot := newWebhookFixture("", []string{"42"})

	w := postUpdate(t, h, "", dto.Update{UserID: "99", Text: "hi"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = postUpdate(t, h, "", dto.Update{UserID: "42", Text: "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(bot.updates) != 1 {
		t.Fatalf("expected one dispatched update, got %d", len(bot.updates))
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	h, _ := newWebhookFixture("", nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.HandleWebhook(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWebhookRequiresUserID(t *testing.T) {
	h, bot := newWebhookFixture("", nil)

	w := postUpdate(t, h, "", dto.Update{Text: "hi"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(bot.updates) != 0 {
		t.Fatal("update must not reach the bot")
	}
}

package handlers

import (
	"log/slog"

	"github.com/dkhomenko/spendbot/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Bot             BotHandler
	WebhookSecret   string
	AllowedUserIDs  []string
}

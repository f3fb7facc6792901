package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleStart gates the sender, then shows either the subscription
// prompt or the main interface.
func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	if !h.Gate.Check(context.Background(), msg.From.ID) {
		h.sendSubscriptionPrompt(msg.Chat.ID)
		return
	}
	h.showMainInterface(msg.Chat.ID)
}

// HandleAdmin opens the admin panel, allow-list gated.
func (h *Handler) HandleAdmin(msg *tgbotapi.Message) {
	if !h.DB.IsAdmin(msg.From.ID) {
		h.send(msg.Chat.ID, "❌ You do not have permission to access the admin panel")
		return
	}
	h.showAdminPanel(msg.Chat.ID)
}

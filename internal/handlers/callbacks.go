package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-downloader-bot/internal/downloader"
)

func (h *Handler) HandleCallback(query *tgbotapi.CallbackQuery) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		h.Log.Debug().Err(err).Msg("answer callback")
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	switch {
	case query.Data == "check_subscription":
		h.recheckSubscription(query)

	case strings.HasPrefix(query.Data, "quality:"):
		if !h.DB.IsAdmin(query.From.ID) {
			return
		}
		name := strings.TrimPrefix(query.Data, "quality:")
		if _, ok := downloader.QualityPresets[name]; !ok {
			return
		}
		h.Settings.Set("download_quality", name)
		h.editMessage(chatID, query.Message.MessageID, "📥 Download quality set to "+name)
	}
}

// recheckSubscription re-runs the gate for the "check subscription"
// button under the prompt.
func (h *Handler) recheckSubscription(query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	if h.Gate.Check(context.Background(), query.From.ID) {
		h.editMessage(chatID, query.Message.MessageID, "✅ Subscription verified!")
		h.showMainInterface(chatID)
		return
	}
	h.editMessage(chatID, query.Message.MessageID,
		"❌ No subscription found. Please join the channel first.")
}

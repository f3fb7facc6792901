package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-downloader-bot/internal/downloader"
	"telegram-downloader-bot/internal/models"
)

// HandleMessage routes one inbound text message: bookkeeping first,
// then the subscription gate, then classification (URL, admin text,
// plain chat).
func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	now := time.Now()
	err := h.DB.UpsertActivity(userID, models.UserPatch{
		Username:     models.StrPtr(msg.From.UserName),
		FirstName:    models.StrPtr(msg.From.FirstName),
		LastName:     models.StrPtr(msg.From.LastName),
		LanguageCode: models.StrPtr(msg.From.LanguageCode),
		LastActivity: models.TimePtr(now),
	})
	if err != nil {
		h.Log.Error().Err(err).Int64("user_id", userID).Msg("upsert user activity")
	}

	if u, err := h.DB.GetUser(userID); err == nil && u != nil && u.IsBanned {
		h.Log.Debug().Int64("user_id", userID).Msg("dropping message from banned user")
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.HandleStart(msg)
		case "admin":
			h.HandleAdmin(msg)
		}
		return
	}
	if msg.Text == "" {
		return
	}

	if !h.Gate.Check(context.Background(), userID) {
		h.sendSubscriptionPrompt(chatID)
		return
	}

	// Pending admin input (new welcome text, broadcast body, ban id)
	// wins over URL extraction so a broadcast may contain links.
	if h.DB.IsAdmin(userID) {
		if done, _ := h.consumeAdminInput(msg); done {
			return
		}
	}

	if urls := downloader.ExtractURLs(msg.Text); len(urls) > 0 {
		// only the first URL is served, the rest are ignored
		h.processDownload(msg, urls[0])
		return
	}

	if h.DB.IsAdmin(userID) && h.handleAdminAction(msg) {
		return
	}

	switch msg.Text {
	case btnDownload:
		h.send(chatID, msgSendLinkPrompt)
		return
	case btnContactAdmin:
		h.send(chatID, "👨‍💼 Write your message here and an admin will get back to you")
		return
	}

	h.send(chatID, msgSendLinkPrompt)
}

func (h *Handler) sendSubscriptionPrompt(chatID int64) {
	text := h.Settings.Get("subscription_message", "📢 To use the bot you must join the channel first:")
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Join the channel", "https://t.me/"+h.Gate.Channel),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Check subscription", "check_subscription"),
		),
	)
	if _, err := h.Bot.Send(reply); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("send subscription prompt")
	}
}

func (h *Handler) showMainInterface(chatID int64) {
	welcome := h.Settings.Get("welcome_message", "🎉 Welcome! Send a link to download.")
	reply := tgbotapi.NewMessage(chatID, welcome)
	reply.ReplyMarkup = mainKeyboard()
	if _, err := h.Bot.Send(reply); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("send main interface")
	}
}

func (h *Handler) processDownload(msg *tgbotapi.Message, rawURL string) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	quality := h.Settings.Get("download_quality", downloader.DefaultQuality)

	h.Log.Info().Int64("user_id", userID).Str("url", rawURL).Str("quality", quality).
		Msg("download requested")

	status, err := h.Bot.Send(tgbotapi.NewMessage(chatID, "⏳ Downloading..."))
	if err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("send status message")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.Cfg.FetchTimeout)
	defer cancel()

	rec := &models.DownloadRecord{
		UserID:   userID,
		URL:      rawURL,
		Platform: downloader.DetectPlatform(rawURL),
		Quality:  quality,
	}

	res, err := h.Dl.Fetch(ctx, rawURL, quality)
	if err != nil {
		rec.ErrorMessage = err.Error()
		h.recordAttempt(rec)
		h.editMessage(chatID, status.MessageID, "❌ Download failed: "+err.Error())
		return
	}
	defer os.Remove(res.FilePath)

	h.editMessage(chatID, status.MessageID, "📤 Uploading file...")

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(res.FilePath))
	doc.Caption = fmt.Sprintf("✅ Downloaded\n📱 Platform: %s\n📄 Title: %s", res.Platform, res.Title)
	if _, err := h.Bot.Send(doc); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("upload file")
		rec.ErrorMessage = "upload failed: " + err.Error()
		h.recordAttempt(rec)
		h.editMessage(chatID, status.MessageID, "❌ Could not deliver the file")
		return
	}

	rec.Success = true
	rec.FileSize = res.FileSize
	h.recordAttempt(rec)
	h.deleteMessage(chatID, status.MessageID)
}

// recordAttempt writes the audit row; a storage failure must never
// break the chat flow.
func (h *Handler) recordAttempt(rec *models.DownloadRecord) {
	if err := h.DB.RecordDownloadAttempt(rec); err != nil {
		h.Log.Error().Err(err).Int64("user_id", rec.UserID).Msg("record download attempt")
	}
}

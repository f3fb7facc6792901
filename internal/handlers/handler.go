package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-downloader-bot/internal/config"
	"telegram-downloader-bot/internal/downloader"
	"telegram-downloader-bot/internal/settings"
	"telegram-downloader-bot/internal/storage"
	"telegram-downloader-bot/internal/subscription"
)

// Main-interface buttons.
const (
	btnDownload     = "📥 Download from link"
	btnContactAdmin = "👨‍💼 Contact admin"
)

const msgSendLinkPrompt = "🔗 Send the link of the content you want to download"

// Admin-interface buttons.
const (
	btnModeBot       = "🤖 Receive in bot"
	btnModeGroup     = "👥 Receive in group"
	btnToggleTopics  = "📁 Toggle topic mode"
	btnEditWelcome   = "✏️ Edit welcome message"
	btnEditSubText   = "✏️ Edit subscription message"
	btnQuality       = "📥 Download options"
	btnUserStats     = "📊 User stats"
	btnDownloadStats = "📈 Download stats"
	btnBroadcast     = "📢 Broadcast"
	btnBan           = "🚫 Ban user"
	btnUnban         = "✅ Unban user"
)

// BotAPI is the slice of the Telegram client the handlers use. The
// real *tgbotapi.BotAPI satisfies it; tests plug in a fake.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	Bot      BotAPI
	DB       *storage.DB
	Settings *settings.Store
	Gate     *subscription.Gate
	Dl       *downloader.Downloader
	Cfg      *config.Config
	Log      zerolog.Logger
}

// HandleUpdate is the single dispatch point for every inbound event,
// polled or delivered by webhook.
func (h *Handler) HandleUpdate(upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		h.HandleMessage(upd.Message)
	case upd.CallbackQuery != nil:
		h.HandleCallback(upd.CallbackQuery)
	}
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

func (h *Handler) editMessage(chatID int64, messageID int, text string) {
	if messageID == 0 {
		// the message was never sent, nothing to edit
		return
	}
	if _, err := h.Bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("edit message")
	}
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := h.Bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.Log.Debug().Err(err).Int64("chat_id", chatID).Msg("delete message")
	}
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnDownload)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnContactAdmin)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnModeBot),
			tgbotapi.NewKeyboardButton(btnModeGroup),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnToggleTopics)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnEditWelcome),
			tgbotapi.NewKeyboardButton(btnEditSubText),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnQuality)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnUserStats),
			tgbotapi.NewKeyboardButton(btnDownloadStats),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBroadcast)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBan),
			tgbotapi.NewKeyboardButton(btnUnban),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// ChannelMembers adapts the bot API to subscription.MembershipChecker.
// tgbotapi calls are synchronous, so the context deadline is enforced
// around the call.
type ChannelMembers struct {
	Bot *tgbotapi.BotAPI
}

func (c ChannelMembers) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	type reply struct {
		status string
		err    error
	}
	ch := make(chan reply, 1)
	go func() {
		member, err := c.Bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				SuperGroupUsername: "@" + channel,
				UserID:             userID,
			},
		})
		ch <- reply{member.Status, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.status, r.err
	}
}

package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-downloader-bot/internal/downloader"
)

// Admin conversational states: which free-text input the panel is
// waiting for.
const (
	stateAwaitWelcome   = "await_welcome"
	stateAwaitSubText   = "await_subscription"
	stateAwaitBroadcast = "await_broadcast"
	stateAwaitBan       = "await_ban"
	stateAwaitUnban     = "await_unban"
)

func (h *Handler) showAdminPanel(chatID int64) {
	reply := tgbotapi.NewMessage(chatID, "🔧 Admin panel\n\nPick an action:")
	reply.ReplyMarkup = adminKeyboard()
	if _, err := h.Bot.Send(reply); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("send admin panel")
	}
}

// consumeAdminInput feeds the message into a pending panel action, if
// any. Returns true when the message was consumed.
func (h *Handler) consumeAdminInput(msg *tgbotapi.Message) (bool, error) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	state, err := h.DB.GetUserState(userID)
	if err != nil {
		h.Log.Error().Err(err).Int64("user_id", userID).Msg("read admin state")
		return false, err
	}
	if state == "" {
		return false, nil
	}
	if err := h.DB.SetUserState(userID, ""); err != nil {
		h.Log.Error().Err(err).Int64("user_id", userID).Msg("clear admin state")
	}

	switch state {
	case stateAwaitWelcome:
		h.Settings.Set("welcome_message", msg.Text)
		h.send(chatID, "✏️ Welcome message updated")
	case stateAwaitSubText:
		h.Settings.Set("subscription_message", msg.Text)
		h.send(chatID, "✏️ Subscription message updated")
	case stateAwaitBroadcast:
		h.broadcast(chatID, msg.Text)
	case stateAwaitBan:
		h.setBanFromInput(chatID, msg.Text, true)
	case stateAwaitUnban:
		h.setBanFromInput(chatID, msg.Text, false)
	default:
		return false, nil
	}
	return true, nil
}

// handleAdminAction dispatches the admin-panel menu buttons. Returns
// false for text that is not a known action.
func (h *Handler) handleAdminAction(msg *tgbotapi.Message) bool {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Text {
	case btnModeBot:
		h.Settings.Set("bot_mode", "bot")
		h.send(chatID, "🤖 Messages are now received in the bot")
	case btnModeGroup:
		h.Settings.Set("bot_mode", "group")
		h.send(chatID, "👥 Messages are now received in the group")
	case btnToggleTopics:
		enabled := !h.Settings.GetBool("topic_mode")
		h.Settings.Set("topic_mode", enabled)
		if enabled {
			h.send(chatID, "📁 Topic mode enabled")
		} else {
			h.send(chatID, "📁 Topic mode disabled")
		}
	case btnEditWelcome:
		h.awaitInput(userID, chatID, stateAwaitWelcome, "✏️ Send the new welcome message")
	case btnEditSubText:
		h.awaitInput(userID, chatID, stateAwaitSubText, "✏️ Send the new subscription message")
	case btnQuality:
		h.showQualityOptions(chatID)
	case btnUserStats:
		h.showUserStats(chatID)
	case btnDownloadStats:
		h.showDownloadStats(chatID)
	case btnBroadcast:
		h.awaitInput(userID, chatID, stateAwaitBroadcast, "📢 Send the message to broadcast to all users")
	case btnBan:
		h.awaitInput(userID, chatID, stateAwaitBan, "🚫 Send the numeric id of the user to ban")
	case btnUnban:
		h.awaitInput(userID, chatID, stateAwaitUnban, "✅ Send the numeric id of the user to unban")
	default:
		return false
	}
	return true
}

func (h *Handler) awaitInput(userID, chatID int64, state, prompt string) {
	if err := h.DB.SetUserState(userID, state); err != nil {
		h.Log.Error().Err(err).Int64("user_id", userID).Msg("set admin state")
		h.send(chatID, "❌ Could not start the action, try again")
		return
	}
	h.send(chatID, prompt)
}

func (h *Handler) showQualityOptions(chatID int64) {
	current := h.Settings.Get("download_quality", downloader.DefaultQuality)
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(downloader.QualityPresets))
	for _, name := range []string{"video_hd", "video_sd", "video_mobile", "video_best", "audio_only"} {
		label := name
		if name == current {
			label = "• " + name
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "quality:"+name),
		))
	}
	reply := tgbotapi.NewMessage(chatID, "📥 Pick the download quality:")
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.Bot.Send(reply); err != nil {
		h.Log.Error().Err(err).Int64("chat_id", chatID).Msg("send quality options")
	}
}

func (h *Handler) showUserStats(chatID int64) {
	s, err := h.DB.UserStats()
	if err != nil {
		h.Log.Error().Err(err).Msg("user stats")
		h.send(chatID, "❌ Could not load user stats")
		return
	}
	h.send(chatID, fmt.Sprintf(
		"📊 Users\n\nTotal: %d\nSubscribed: %d\nBanned: %d",
		s.Total, s.Subscribed, s.Banned))
}

func (h *Handler) showDownloadStats(chatID int64) {
	s, err := h.DB.DownloadStats()
	if err != nil {
		h.Log.Error().Err(err).Msg("download stats")
		h.send(chatID, "❌ Could not load download stats")
		return
	}
	h.send(chatID, fmt.Sprintf(
		"📈 Downloads\n\nTotal: %d\nSucceeded: %d\nFailed: %d",
		s.Total, s.Succeeded, s.Failed))
}

func (h *Handler) broadcast(adminChatID int64, text string) {
	ids, err := h.DB.ListUserIDs()
	if err != nil {
		h.Log.Error().Err(err).Msg("list users for broadcast")
		h.send(adminChatID, "❌ Could not load the user list")
		return
	}
	sent := 0
	for _, id := range ids {
		if _, err := h.Bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
			h.Log.Debug().Err(err).Int64("user_id", id).Msg("broadcast delivery failed")
			continue
		}
		sent++
	}
	h.send(adminChatID, fmt.Sprintf("📢 Broadcast delivered to %d of %d users", sent, len(ids)))
}

func (h *Handler) setBanFromInput(chatID int64, input string, banned bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		h.send(chatID, "❌ That is not a numeric user id")
		return
	}
	if err := h.DB.SetBanned(id, banned); err != nil {
		h.Log.Error().Err(err).Int64("user_id", id).Msg("set ban flag")
		h.send(chatID, "❌ Could not update the user")
		return
	}
	if banned {
		h.send(chatID, fmt.Sprintf("🚫 User %d banned", id))
	} else {
		h.send(chatID, fmt.Sprintf("✅ User %d unbanned", id))
	}
}

package main

import (
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"telegram-downloader-bot/internal/config"
	"telegram-downloader-bot/internal/downloader"
	"telegram-downloader-bot/internal/handlers"
	"telegram-downloader-bot/internal/scheduler"
	"telegram-downloader-bot/internal/settings"
	"telegram-downloader-bot/internal/storage"
	"telegram-downloader-bot/internal/subscription"
	"telegram-downloader-bot/internal/utils"
	"telegram-downloader-bot/internal/webhook"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN etc.

	cfg, err := config.Load()
	utils.Must(err)

	logger := newLogger(cfg.LogLevel)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	utils.Must(err)
	logger.Info().Str("account", bot.Self.UserName).Msg("authorized")

	db, err := storage.New(cfg.DBPath, cfg.AdminIDs)
	utils.Must(err)
	defer db.Close()

	store := settings.Open(cfg.SettingsPath, logger)
	dl := downloader.New(cfg.DownloadsDir, logger)
	gate := &subscription.Gate{
		Channel: cfg.ChannelUsername,
		Members: handlers.ChannelMembers{Bot: bot},
		Dir:     db,
		Timeout: cfg.MembershipTimeout,
		Log:     logger,
	}

	h := &handlers.Handler{
		Bot:      bot,
		DB:       db,
		Settings: store,
		Gate:     gate,
		Dl:       dl,
		Cfg:      cfg,
		Log:      logger,
	}

	_, err = scheduler.Start(cfg.DownloadsDir, logger)
	utils.Must(err)

	var updates <-chan tgbotapi.Update
	if cfg.WebhookBaseURL != "" {
		ch := make(chan tgbotapi.Update, 64)
		updates = ch

		srv := &webhook.Server{Addr: cfg.ListenAddr, Updates: ch, Log: logger}
		go func() { utils.Must(srv.Start()) }()

		wh, err := tgbotapi.NewWebhook(cfg.WebhookBaseURL + "/webhook")
		utils.Must(err)
		_, err = bot.Request(wh)
		utils.Must(err)
		logger.Info().Str("url", cfg.WebhookBaseURL+"/webhook").Msg("webhook registered")
	} else {
		// local runs: drop a stale webhook and fall back to long polling
		_, _ = bot.Request(tgbotapi.DeleteWebhookConfig{})
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates = bot.GetUpdatesChan(u)
		logger.Info().Msg("long polling for updates")
	}

	// single dispatcher: events are handled one at a time
	for upd := range updates {
		h.HandleUpdate(upd)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reportbot/internal/session"
	"reportbot/internal/storage"
)

// sender is the narrow slice of the Telegram API the bot talks through.
// Production uses *tgbotapi.BotAPI; tests substitute a recorder.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api             *tgbotapi.BotAPI
	sender          sender
	sessions        session.Store
	archive         storage.Storage
	reportChannelID int64
	adminChatID     int64 // 0 = no admin alerts, /stats denied for everyone
	logger          *zap.Logger
}

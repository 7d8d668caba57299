package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reportbot/internal/session"
	"reportbot/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, sessions session.Store, archive storage.Storage, reportChannelID, adminChatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:             api,
		sender:          api,
		sessions:        sessions,
		archive:         archive,
		reportChannelID: reportChannelID,
		adminChatID:     adminChatID,
		logger:          logger,
	}, nil
}

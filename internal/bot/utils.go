package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// send delivers a message and logs delivery failures. Used for prompts and
// notices where a failure should not abort handling.
func (b *Bot) send(c tgbotapi.Chattable) {
	if b.sender == nil {
		return // For testing
	}
	if _, err := b.sender.Send(c); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

// sendText sends a plain text message to a chat.
func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// sendMarkdown sends a Markdown-formatted message to a chat.
func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

// trySend delivers a message and returns the transport error, for the
// report dispatch sequence where failures must be surfaced to the caller.
func (b *Bot) trySend(c tgbotapi.Chattable) error {
	if b.sender == nil {
		return nil // For testing
	}
	_, err := b.sender.Send(c)
	return err
}

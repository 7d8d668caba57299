package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// triageAction is a decoded staff triage button press. The reporting
// user's id travels inside the callback payload so the staff message is
// self-contained.
type triageAction struct {
	verb   string // "resolve" or "reopen"
	userID int64
}

// parseTriageAction decodes "resolve:<id>" / "reopen:<id>" payloads.
// Anything else returns false.
func parseTriageAction(data string) (triageAction, bool) {
	verb, idStr, ok := strings.Cut(data, ":")
	if !ok || (verb != "resolve" && verb != "reopen") {
		return triageAction{}, false
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return triageAction{}, false
	}
	return triageAction{verb: verb, userID: userID}, true
}

// triageKeyboard builds the staff controls for a report. The keyboard is
// a toggle: an open report shows Resolve, a resolved one shows Reopen.
func triageKeyboard(userID int64, resolved bool) tgbotapi.InlineKeyboardMarkup {
	if resolved {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Reopen", fmt.Sprintf("reopen:%d", userID)),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Resolve", fmt.Sprintf("resolve:%d", userID)),
		),
	)
}

// handleTriage flips the triage toggle on the staff message. Resolving
// additionally notifies the reporter; that notification is best-effort
// and never blocks the toggle.
func (b *Bot) handleTriage(query *tgbotapi.CallbackQuery, action triageAction) {
	resolved := action.verb == "resolve"
	markup := triageKeyboard(action.userID, resolved)

	edit := tgbotapi.NewEditMessageReplyMarkup(query.Message.Chat.ID, query.Message.MessageID, markup)
	if b.sender != nil {
		if _, err := b.sender.Request(edit); err != nil {
			b.logger.Error("Failed to edit triage controls",
				zap.Error(err),
				zap.String("action", action.verb),
				zap.Int64("reporter_id", action.userID),
			)
			return
		}
	}

	b.logger.Info("Report triaged",
		zap.String("action", action.verb),
		zap.Int64("reporter_id", action.userID),
		zap.Int64("admin_id", query.From.ID),
	)

	if resolved {
		if err := b.trySend(tgbotapi.NewMessage(action.userID,
			"✅ Good news - our team has marked your report as resolved. Reply here if the issue persists.")); err != nil {
			b.logger.Warn("Failed to notify reporter of resolution",
				zap.Error(err),
				zap.Int64("reporter_id", action.userID),
			)
		}
	}
}

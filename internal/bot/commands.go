package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reportbot/internal/models"
	"reportbot/internal/session"
)

// handleStart shows the report intro and the category selection keyboard.
func (b *Bot) handleStart(message *tgbotapi.Message) {
	userID := message.From.ID

	// /start always begins a clean flow, discarding any half-finished one.
	b.sessions.Reset(userID)
	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingCategory
	b.sessions.Put(userID, sess)

	text := `🚨 *BESCswap & BESCbridge Bug Report Bot* 🚨

Please report all issues directly here.

When submitting a report, include:

• Your wallet address
• Transaction hash (TXN)
• If it's a Solana → BESC bridge issue:
  - Solana wallet address
  - Transaction hash
  - Amount sent
  - BESC wallet address to receive BUSDC
• Any error codes or messages (if applicable)

Providing full info helps us resolve your issue quickly.

👇 Select which area your issue relates to:`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟣 BESCSWAP", models.CallbackSwapIssue),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟠 BESCbridge", models.CallbackBridgeIssue),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟡 wBESC Bridge", models.CallbackWBESCIssue),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 Other", models.CallbackOtherIssue),
		),
	)
	b.send(msg)
}

// handleHelp lists the available commands.
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	b.sendText(message.Chat.ID, `Available commands:
/start - File an issue report
/cancel - Abandon the report in progress
/help - Show this message`)
}

// handleCancel destroys the session and cooldown record. Cancelling with
// no report in progress is a no-op and says so.
func (b *Bot) handleCancel(message *tgbotapi.Message) {
	userID := message.From.ID

	sess := b.sessions.Get(userID)
	if sess.Step == session.StepIdle {
		b.sendText(message.Chat.ID, "Nothing to cancel - you have no report in progress.")
		return
	}

	b.sessions.Reset(userID)
	b.sendText(message.Chat.ID, "❌ Report cancelled. Use /start whenever you want to file a new one.")
}

// handleStats answers the admin-only archive statistics query. Any chat
// other than the configured admin chat gets a denial notice.
func (b *Bot) handleStats(message *tgbotapi.Message) {
	if b.adminChatID == 0 || message.Chat.ID != b.adminChatID {
		b.sendText(message.Chat.ID, "⛔ This command is restricted.")
		return
	}

	stats, err := b.archive.Stats(context.Background())
	if err != nil {
		b.logger.Error("Failed to load report stats", zap.Error(err))
		b.sendText(message.Chat.ID, "Failed to load statistics. Please try again later.")
		return
	}

	var text strings.Builder
	text.WriteString("📊 Report statistics\n\n")
	text.WriteString(fmt.Sprintf("Total reports: %d\n", stats.Total))
	text.WriteString(fmt.Sprintf("Last 24h: %d\n", stats.Last24h))

	text.WriteString("\nBy severity:\n")
	writeCounts(&text, stats.BySeverity)
	text.WriteString("\nBy category:\n")
	writeCounts(&text, stats.ByCategory)

	b.sendText(message.Chat.ID, text.String())
}

func writeCounts(out *strings.Builder, counts map[string]uint64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		out.WriteString("  (none)\n")
		return
	}
	for _, k := range keys {
		out.WriteString(fmt.Sprintf("  %s: %d\n", k, counts[k]))
	}
}

package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reportbot/internal/detect"
	"reportbot/internal/models"
	"reportbot/internal/session"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	if message.From == nil {
		return
	}
	userID := message.From.ID

	// Cooldown gates every message, including step-advancing ones. A
	// rejected message leaves session state and the cooldown timestamp
	// untouched.
	if !b.sessions.Allow(userID) {
		b.sendText(message.Chat.ID, "⏳ You're sending messages too quickly. Please wait a moment and try again.")
		return
	}

	// Cancel escapes from any step.
	if isCancel(message) {
		b.handleCancel(message)
		return
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(message)
		case "help":
			b.handleHelp(message)
		case "stats":
			b.handleStats(message)
		default:
			b.sendText(message.Chat.ID, "Unknown command. Use /start to file a report or /cancel to abandon one.")
		}
		return
	}

	sess := b.sessions.Get(userID)
	if sess.Step == session.StepIdle || sess.Step == session.StepAwaitingCategory {
		text := messageText(message)
		// Auto-start: a recognizable identifier in a cold message opens a
		// report with category Other, skipping category selection.
		if detect.EVMAddress(text) != "" || detect.EVMTxHash(text) != "" || detect.SolanaIdentifier(text) != "" {
			b.autoStart(message, sess)
			return
		}
		if sess.Step == session.StepAwaitingCategory {
			b.sendText(message.Chat.ID, "👇 Please select a category using the buttons above, or type cancel.")
			return
		}
		b.sendText(message.Chat.ID, "Hi! Use /start to file an issue report.")
		return
	}

	b.handleConversation(message, sess)
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	// Answer the callback query to remove loading state
	if b.sender != nil {
		if _, err := b.sender.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Warn("Failed to answer callback query", zap.Error(err))
		}
	}

	data := query.Data

	// Staff triage buttons are decoded into a tagged action up front.
	if action, ok := parseTriageAction(data); ok {
		b.handleTriage(query, action)
		return
	}

	if category, ok := models.CategoryFromCallback(data); ok {
		b.handleCategorySelection(query, category)
		return
	}

	switch data {
	case "add_more":
		b.handleAddMore(query)
	case "status":
		b.sendText(query.Message.Chat.ID, "📋 Your report is with our team. We'll respond here as soon as it has been reviewed.")
	}
}

// handleCategorySelection records the chosen category and moves the user
// to the wallet step.
func (b *Bot) handleCategorySelection(query *tgbotapi.CallbackQuery, category models.Category) {
	userID := query.From.ID

	sess := b.sessions.Get(userID)
	if sess.Step != session.StepIdle && sess.Step != session.StepAwaitingCategory {
		// Category is immutable once the flow is underway.
		b.sendText(query.Message.Chat.ID, "You already have a report in progress. Type cancel to start over.")
		return
	}

	sess.Category = category
	sess.Step = session.StepAwaitingWallet
	b.sessions.Put(userID, sess)

	text := "*" + category.Label() + " Selected*\n\n" +
		"💼 Please send the wallet address involved.\n\n" +
		"Formats:\n" +
		"• EVM: `0x` followed by 40 hex characters\n" +
		"• Solana: 32-44 base58 characters"
	b.sendMarkdown(query.Message.Chat.ID, text)
}

// autoStart opens a report directly at the wallet step when a cold
// message already carries a blockchain identifier. The original text is
// kept as the start of the description so nothing the user typed is lost.
func (b *Bot) autoStart(message *tgbotapi.Message, sess *session.Session) {
	sess.Category = models.CategoryOther
	sess.Step = session.StepAwaitingWallet
	sess.Description = messageText(message)
	b.sessions.Put(message.From.ID, sess)

	b.sendText(message.Chat.ID,
		"🔍 I spotted a blockchain identifier in your message, so I've opened a report for you (category: Other).\n\n"+
			"💼 Please send the wallet address involved (or resend it on its own).")
}

// messageText returns the text of a message, falling back to the media
// caption.
func messageText(message *tgbotapi.Message) string {
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

// isCancel reports whether the message is the /cancel command or the bare
// word "cancel" in any casing.
func isCancel(message *tgbotapi.Message) bool {
	if message.IsCommand() && message.Command() == "cancel" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(message.Text), "cancel")
}

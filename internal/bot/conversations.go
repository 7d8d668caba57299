package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reportbot/internal/detect"
	"reportbot/internal/models"
	"reportbot/internal/session"
)

// handleConversation advances a report flow that is already underway.
// Steps only move forward; invalid input re-prompts and stays put.
func (b *Bot) handleConversation(message *tgbotapi.Message, sess *session.Session) {
	switch sess.Step {
	case session.StepAwaitingWallet:
		b.handleWalletStep(message, sess)
	case session.StepAwaitingTx:
		b.handleTxStep(message, sess)
	case session.StepAwaitingDescription:
		b.handleDescriptionStep(message, sess)
	case session.StepAwaitingAttachment:
		b.handleAttachmentStep(message, sess)
	}
}

// handleWalletStep records a syntactically valid EVM or Solana address.
// Existence on chain is never checked.
func (b *Bot) handleWalletStep(message *tgbotapi.Message, sess *session.Session) {
	text := messageText(message)

	evm := detect.EVMAddress(text)
	sol := detect.SolanaIdentifier(text)

	switch {
	case evm != "":
		sess.Wallet = evm
	case sol != "":
		sess.Wallet = sol
	default:
		b.sendMarkdown(message.Chat.ID,
			"❌ That doesn't look like a wallet address.\n\n"+
				"Formats:\n"+
				"• EVM: `0x1234...` (40 hex characters after 0x)\n"+
				"• Solana: 32-44 base58 characters\n\n"+
				"Please resend your wallet address, or type cancel.")
		return
	}

	if guess := detect.GuessChain(text); guess != models.ChainUnknown {
		sess.Chain = guess
	} else if evm == "" && sol != "" {
		sess.Chain = models.ChainSolana
	}

	sess.Step = session.StepAwaitingTx
	b.sessions.Put(message.From.ID, sess)

	b.sendMarkdown(message.Chat.ID,
		"✅ Wallet recorded.\n\n"+
			"🔗 Now send the transaction hash (TXN).\n"+
			"• EVM: `0x` followed by 64 hex characters\n"+
			"• Solana: the transaction signature")
}

// handleTxStep records the transaction identifier. A Solana-looking
// string with no EVM address alongside it is treated as a transaction
// signature.
func (b *Bot) handleTxStep(message *tgbotapi.Message, sess *session.Session) {
	text := messageText(message)

	hash := detect.EVMTxHash(text)
	if hash == "" {
		if sol := detect.SolanaIdentifier(text); sol != "" && detect.EVMAddress(text) == "" {
			hash = sol
			if sess.Chain == models.ChainUnknown {
				sess.Chain = models.ChainSolana
			}
		}
	}

	if hash == "" {
		b.sendMarkdown(message.Chat.ID,
			"❌ That doesn't look like a transaction hash.\n\n"+
				"• EVM: `0x` followed by 64 hex characters\n"+
				"• Solana: the base58 transaction signature\n\n"+
				"Please resend the transaction hash, or type cancel.")
		return
	}

	if guess := detect.GuessChain(text); guess != models.ChainUnknown {
		sess.Chain = guess
	}

	sess.TxHash = hash
	sess.Step = session.StepAwaitingDescription
	b.sessions.Put(message.From.ID, sess)

	b.sendText(message.Chat.ID,
		"✅ Transaction recorded.\n\n"+
			"📝 Now describe the issue in your own words: what you did, what you expected, and what happened instead.")
}

// handleDescriptionStep accepts any text as the issue description.
func (b *Bot) handleDescriptionStep(message *tgbotapi.Message, sess *session.Session) {
	text := messageText(message)
	if text == "" {
		b.sendText(message.Chat.ID, "📝 Please describe the issue in a text message.")
		return
	}

	sess.Description = appendDescription(sess.Description, text)
	sess.Step = session.StepAwaitingAttachment
	b.sessions.Put(message.From.ID, sess)

	b.sendText(message.Chat.ID,
		"📎 You can attach a screenshot, video or file now.\n\n"+
			"Send the attachment, or type \"skip\" to submit the report as is.")
}

// handleAttachmentStep finishes the flow: media or "skip" submits the
// report; any other text is folded into the description and the step
// stays put.
func (b *Bot) handleAttachmentStep(message *tgbotapi.Message, sess *session.Session) {
	if att, ok := extractAttachment(message); ok {
		if message.Caption != "" {
			sess.Description = appendDescription(sess.Description, message.Caption)
		}
		sess.Attachments = append(sess.Attachments, att)
		b.sessions.Put(message.From.ID, sess)
		b.submitReport(message, sess)
		return
	}

	if strings.EqualFold(strings.TrimSpace(message.Text), "skip") {
		b.submitReport(message, sess)
		return
	}

	if message.Text != "" {
		sess.Description = appendDescription(sess.Description, message.Text)
		b.sessions.Put(message.From.ID, sess)
		b.sendText(message.Chat.ID,
			"✍️ Added that to your description. Send an attachment, or type \"skip\" to submit.")
		return
	}

	b.sendText(message.Chat.ID, "📎 Send a photo, video or document - or type \"skip\" to submit without one.")
}

// extractAttachment pulls the media reference out of a message.
func extractAttachment(message *tgbotapi.Message) (models.Attachment, bool) {
	switch {
	case len(message.Photo) > 0:
		// Telegram sends several sizes; the last one is the largest.
		return models.Attachment{Kind: models.AttachmentPhoto, FileID: message.Photo[len(message.Photo)-1].FileID}, true
	case message.Video != nil:
		return models.Attachment{Kind: models.AttachmentVideo, FileID: message.Video.FileID}, true
	case message.Document != nil:
		return models.Attachment{Kind: models.AttachmentDocument, FileID: message.Document.FileID}, true
	}
	return models.Attachment{}, false
}

func appendDescription(existing, text string) string {
	if existing == "" {
		return text
	}
	return existing + "\n" + text
}

// handleAddMore reopens the flow into the description-accepting state so
// the user can send follow-up details after submitting a report.
func (b *Bot) handleAddMore(query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	sess := b.sessions.Get(userID)
	if sess.Step != session.StepIdle {
		b.sendText(query.Message.Chat.ID, "You already have a report in progress - just keep typing.")
		return
	}

	sess.Category = models.CategoryOther
	sess.Step = session.StepAwaitingDescription
	b.sessions.Put(userID, sess)

	b.sendText(query.Message.Chat.ID, "📝 Go ahead - send the additional details as a message.")
}

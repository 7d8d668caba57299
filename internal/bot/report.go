package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reportbot/internal/models"
	"reportbot/internal/session"
)

// maxMessageLen is the transport's maximum single-message size.
// Telegram caps plain messages at 4096 characters and media captions at
// a much smaller 1024.
const (
	maxMessageLen = 4096
	maxCaptionLen = 1024
)

// submitReport assembles the accumulated session data into a formatted
// report, delivers it to the staff channel, alerts the admin, confirms to
// the user and archives the record. The session is cleared whether or not
// delivery succeeds.
func (b *Bot) submitReport(message *tgbotapi.Message, sess *session.Session) {
	userID := message.From.ID
	now := time.Now().UTC()

	chain := resolveChain(sess)
	severity := models.ClassifySeverity(sess.Description)
	completeness := models.ClassifyCompleteness(sess.Wallet, sess.TxHash)

	text := renderReport(message.From, sess, chain, severity, completeness, now)
	chunks := splitReport(text, maxMessageLen)

	if err := b.dispatchReport(chunks, sess.Attachments, triageKeyboard(userID, false)); err != nil {
		b.logger.Error("Failed to deliver report to staff channel",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sessions.Reset(userID)
		b.sendText(message.Chat.ID, "⚠️ Failed to submit your report. Please try again later.")
		return
	}

	b.logger.Info("Report delivered",
		zap.Int64("user_id", userID),
		zap.String("category", sess.Category.Label()),
		zap.String("severity", severity.Label()),
		zap.Int("chunks", len(chunks)),
		zap.Int("attachments", len(sess.Attachments)),
	)

	// Archive for /stats. Best-effort: a dead archive must not block the
	// report path.
	record := models.ReportRecord{
		UserID:          userID,
		Category:        sess.Category.Label(),
		Chain:           chain.Label(),
		Severity:        severity.Label(),
		Completeness:    completeness.Label(),
		AttachmentCount: len(sess.Attachments),
		SubmittedAt:     now,
	}
	if err := b.archive.SaveReport(context.Background(), record); err != nil {
		b.logger.Warn("Failed to archive report", zap.Error(err), zap.Int64("user_id", userID))
	}

	b.alertAdmin(message.From, sess.Category, severity)
	b.confirmToUser(message.Chat.ID, sess, chain, severity, completeness)

	b.sessions.Reset(userID)
}

// resolveChain picks the chain for explorer links. The swap category
// forces ETH even over an explicit guess from the user's text (source
// behavior, kept as is); everything else falls back to BESC when the
// guess came up empty.
func resolveChain(sess *session.Session) models.Chain {
	if sess.Category == models.CategorySwap {
		return models.ChainETH
	}
	if sess.Chain == models.ChainUnknown {
		return models.ChainBESC
	}
	return sess.Chain
}

// renderReport builds the composite report text.
func renderReport(from *tgbotapi.User, sess *session.Session, chain models.Chain, severity models.Severity, completeness models.Completeness, now time.Time) string {
	var text strings.Builder

	text.WriteString("📝 *New BESC Report*\n\n")
	text.WriteString(fmt.Sprintf("📂 %s | ⛓ %s | 🔥 %s\n\n", sess.Category.Label(), chain.Label(), severity.Label()))

	name := from.FirstName
	if name == "" {
		name = "User"
	}
	text.WriteString(fmt.Sprintf("👤 From: [%s](tg://user?id=%d)\n", name, from.ID))
	username := from.UserName
	if username == "" {
		username = "N/A"
	}
	text.WriteString(fmt.Sprintf("Username: @%s\n", username))
	text.WriteString(fmt.Sprintf("ID: %d\n\n", from.ID))

	if sess.Wallet != "" {
		text.WriteString(fmt.Sprintf("💼 Wallet: [%s](%s)\n", sess.Wallet, chain.AddressURL(sess.Wallet)))
	}
	if sess.TxHash != "" {
		text.WriteString(fmt.Sprintf("🔗 Transaction: [%s](%s)\n", sess.TxHash, chain.TxURL(sess.TxHash)))
	}
	if sess.Wallet != "" || sess.TxHash != "" {
		text.WriteString("\n")
	}

	text.WriteString("*Report:*\n")
	if sess.Description != "" {
		text.WriteString(sess.Description)
	} else {
		text.WriteString("(no description provided)")
	}
	text.WriteString("\n\n")

	text.WriteString(fmt.Sprintf("📎 Attachments: %d\n", len(sess.Attachments)))
	text.WriteString(fmt.Sprintf("🕒 Submitted: %s\n", now.Format("2006-01-02 15:04 UTC")))
	text.WriteString(completeness.Label())

	return text.String()
}

// splitReport splits text on line boundaries into chunks each at most
// limit bytes, preserving line order. Lines are never split across
// chunks; a single line longer than the limit becomes its own chunk.
func splitReport(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	lines := strings.Split(text, "\n")
	var chunks []string
	current := lines[0]
	for _, line := range lines[1:] {
		if len(current)+1+len(line) > limit {
			chunks = append(chunks, current)
			current = line
			continue
		}
		current += "\n" + line
	}
	return append(chunks, current)
}

// dispatchReport sends the report chunks and attachments to the staff
// channel. Photos travel as one grouped album captioned with the first
// chunk; other media goes out individually. The last thing that can carry
// an inline keyboard gets the triage controls.
func (b *Bot) dispatchReport(chunks []string, attachments []models.Attachment, keyboard tgbotapi.InlineKeyboardMarkup) error {
	var photos, others []models.Attachment
	for _, a := range attachments {
		if a.Kind == models.AttachmentPhoto {
			photos = append(photos, a)
		} else {
			others = append(others, a)
		}
	}

	placed := false

	switch {
	case len(photos) > 0:
		caption, rest := captionChunks(chunks)
		group := make([]interface{}, 0, len(photos))
		for i, p := range photos {
			media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(p.FileID))
			if i == 0 {
				media.Caption = caption
				media.ParseMode = tgbotapi.ModeMarkdown
			}
			group = append(group, media)
		}
		if _, err := b.sendMediaGroup(tgbotapi.NewMediaGroup(b.reportChannelID, group)); err != nil {
			return err
		}

		if len(rest) > 0 {
			if err := b.sendReportChunks(rest, &keyboard); err != nil {
				return err
			}
			placed = true
		}
		for i, a := range others {
			var markup *tgbotapi.InlineKeyboardMarkup
			if !placed && i == len(others)-1 {
				markup = &keyboard
				placed = true
			}
			if err := b.trySend(attachmentConfig(b.reportChannelID, a, "", markup)); err != nil {
				return err
			}
		}

	case len(others) > 0:
		caption, rest := captionChunks(chunks)
		var markup *tgbotapi.InlineKeyboardMarkup
		if len(rest) == 0 && len(others) == 1 {
			markup = &keyboard
			placed = true
		}
		if err := b.trySend(attachmentConfig(b.reportChannelID, others[0], caption, markup)); err != nil {
			return err
		}
		if len(rest) > 0 {
			if err := b.sendReportChunks(rest, &keyboard); err != nil {
				return err
			}
			placed = true
		}
		for i, a := range others[1:] {
			var m *tgbotapi.InlineKeyboardMarkup
			if !placed && i == len(others[1:])-1 {
				m = &keyboard
				placed = true
			}
			if err := b.trySend(attachmentConfig(b.reportChannelID, a, "", m)); err != nil {
				return err
			}
		}

	default:
		if err := b.sendReportChunks(chunks, &keyboard); err != nil {
			return err
		}
		placed = true
	}

	// An album can swallow the only chunk, leaving nowhere to hang the
	// triage controls; send them on a short trailer instead.
	if !placed {
		msg := tgbotapi.NewMessage(b.reportChannelID, "🛠 Triage:")
		msg.ReplyMarkup = keyboard
		return b.trySend(msg)
	}
	return nil
}

// captionChunks returns a caption fitting the media caption limit plus
// the chunks still to be sent as plain messages. A first chunk too long
// to be a caption is re-split at the caption limit and its tail rejoins
// the remaining chunks.
func captionChunks(chunks []string) (string, []string) {
	if len(chunks[0]) <= maxCaptionLen {
		return chunks[0], chunks[1:]
	}
	parts := splitReport(chunks[0], maxCaptionLen)
	return parts[0], append(parts[1:], chunks[1:]...)
}

// sendReportChunks sends the chunks in order as Markdown messages,
// attaching the keyboard to the final one.
func (b *Bot) sendReportChunks(chunks []string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(b.reportChannelID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if keyboard != nil && i == len(chunks)-1 {
			msg.ReplyMarkup = *keyboard
		}
		if err := b.trySend(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendMediaGroup(cfg tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	if b.sender == nil {
		return nil, nil // For testing
	}
	return b.sender.SendMediaGroup(cfg)
}

// attachmentConfig builds the send config for a single media item.
func attachmentConfig(chatID int64, a models.Attachment, caption string, markup *tgbotapi.InlineKeyboardMarkup) tgbotapi.Chattable {
	switch a.Kind {
	case models.AttachmentVideo:
		cfg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(a.FileID))
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		return cfg
	case models.AttachmentDocument:
		cfg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(a.FileID))
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		return cfg
	default:
		cfg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(a.FileID))
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		return cfg
	}
}

// alertAdmin sends the short one-line summary to the admin chat, with
// harder wording for critical reports. Best-effort: failure is logged,
// never surfaced.
func (b *Bot) alertAdmin(from *tgbotapi.User, category models.Category, severity models.Severity) {
	if b.adminChatID == 0 {
		return
	}

	var text string
	if severity == models.SeverityCritical {
		text = fmt.Sprintf("🚨 CRITICAL report from user %d (%s) - review immediately", from.ID, category.Label())
	} else {
		text = fmt.Sprintf("ℹ️ New %s report from user %d (%s)", severity.Label(), from.ID, category.Label())
	}

	if err := b.trySend(tgbotapi.NewMessage(b.adminChatID, text)); err != nil {
		b.logger.Warn("Failed to alert admin", zap.Error(err))
	}
}

// confirmToUser sends the submission summary and the quick-actions
// keyboard back to the reporter.
func (b *Bot) confirmToUser(chatID int64, sess *session.Session, chain models.Chain, severity models.Severity, completeness models.Completeness) {
	var text strings.Builder
	text.WriteString("✅ Report submitted. Our team will review and respond.\n\n")
	text.WriteString(fmt.Sprintf("📂 Category: %s\n", sess.Category.Label()))
	text.WriteString(fmt.Sprintf("⛓ Chain: %s\n", chain.Label()))
	text.WriteString(fmt.Sprintf("🔥 Severity: %s\n", severity.Label()))
	text.WriteString(fmt.Sprintf("%s\n", completeness.Label()))
	if sess.Wallet != "" {
		text.WriteString(fmt.Sprintf("💼 Wallet: %s\n", truncateID(sess.Wallet)))
	}
	if sess.TxHash != "" {
		text.WriteString(fmt.Sprintf("🔗 Tx: %s\n", truncateID(sess.TxHash)))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())

	var row []tgbotapi.InlineKeyboardButton
	if sess.TxHash != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL("🔍 View on explorer", chain.TxURL(sess.TxHash)))
	}
	row = append(row,
		tgbotapi.NewInlineKeyboardButtonData("➕ Add more info", "add_more"),
		tgbotapi.NewInlineKeyboardButtonData("📋 Status", "status"),
	)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)

	if err := b.trySend(msg); err != nil {
		b.logger.Warn("Failed to send submission confirmation", zap.Error(err))
	}
}

// truncateID shortens a wallet or tx identifier for the confirmation.
func truncateID(id string) string {
	if len(id) <= 14 {
		return id
	}
	return id[:8] + "…" + id[len(id)-4:]
}

package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reportbot/internal/models"
	"reportbot/internal/session"
	"reportbot/internal/storage/stubs"
)

// recordingSender captures outbound traffic instead of hitting Telegram.
type recordingSender struct {
	sent     []tgbotapi.Chattable
	groups   []tgbotapi.MediaGroupConfig
	requests []tgbotapi.Chattable
	failNext int // fail this many Send calls before recovering
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if r.failNext > 0 {
		r.failNext--
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	r.sent = append(r.sent, c)
	return tgbotapi.Message{MessageID: len(r.sent)}, nil
}

func (r *recordingSender) SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	r.groups = append(r.groups, c)
	return []tgbotapi.Message{{MessageID: 1}}, nil
}

func (r *recordingSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.requests = append(r.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// lastText returns the text of the most recent plain message sent.
func (r *recordingSender) lastText() string {
	for i := len(r.sent) - 1; i >= 0; i-- {
		if msg, ok := r.sent[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
	}
	return ""
}

const (
	testChannelID = int64(-100900)
	testAdminID   = int64(777)
)

func newTestBot(cooldown time.Duration) (*Bot, *recordingSender, *stubs.MemoryStore) {
	rec := &recordingSender{}
	archive := stubs.NewMemoryStore()
	b := &Bot{
		sender:          rec,
		sessions:        session.NewMemoryStore(cooldown),
		archive:         archive,
		reportChannelID: testChannelID,
		adminChatID:     testAdminID,
		logger:          zap.NewNop(),
	}
	return b, rec, archive
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Alice", UserName: "alice"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func commandMessage(userID, chatID int64, command string) *tgbotapi.Message {
	msg := textMessage(userID, chatID, command)
	msg.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(command)},
	}
	return msg
}

func categoryQuery(userID, chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: userID, FirstName: "Alice", UserName: "alice"},
		Message: &tgbotapi.Message{
			MessageID: 10,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
		Data: data,
	}
}

func TestBot_StartCategoryWalletFlow(t *testing.T) {
	b, rec, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	b.handleMessage(commandMessage(userID, chatID, "/start"))
	if got := b.sessions.Get(userID).Step; got != session.StepAwaitingCategory {
		t.Fatalf("Expected awaiting category after /start, got %v", got)
	}

	b.handleCallbackQuery(categoryQuery(userID, chatID, models.CallbackWBESCIssue))
	sess := b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingWallet {
		t.Fatalf("Expected awaiting wallet after category selection, got %v", sess.Step)
	}
	if sess.Category != models.CategoryWBESCBridge {
		t.Errorf("Expected wBESC category, got %v", sess.Category)
	}

	b.handleMessage(textMessage(userID, chatID, "0x1234567890abcdef1234567890abcdef12345678"))
	sess = b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingTx {
		t.Fatalf("Expected awaiting tx after valid wallet, got %v", sess.Step)
	}
	if sess.Wallet != "0x1234567890abcdef1234567890abcdef12345678" {
		t.Errorf("Wallet not recorded: %q", sess.Wallet)
	}
	if len(rec.sent) == 0 {
		t.Error("Expected prompts to be sent")
	}
}

func TestBot_WalletChainGuessFromText(t *testing.T) {
	b, _, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingWallet
	sess.Category = models.CategoryBridge
	b.sessions.Put(userID, sess)

	b.handleMessage(textMessage(userID, chatID, "bsc wallet 0x1234567890abcdef1234567890abcdef12345678"))

	sess = b.sessions.Get(userID)
	if sess.Chain != models.ChainBSC {
		t.Errorf("Expected BSC chain guess from text, got %v", sess.Chain)
	}
}

func TestBot_InvalidWalletReprompts(t *testing.T) {
	b, rec, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingWallet
	b.sessions.Put(userID, sess)

	b.handleMessage(textMessage(userID, chatID, "i don't know my wallet"))

	if got := b.sessions.Get(userID).Step; got != session.StepAwaitingWallet {
		t.Fatalf("Expected to stay on wallet step, got %v", got)
	}
	if !strings.Contains(rec.lastText(), "wallet address") {
		t.Errorf("Expected a format re-prompt, got %q", rec.lastText())
	}
}

func TestBot_TxHashAdvances(t *testing.T) {
	b, _, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingTx
	sess.Category = models.CategoryBridge
	sess.Wallet = "0x1234567890abcdef1234567890abcdef12345678"
	b.sessions.Put(userID, sess)

	b.handleMessage(textMessage(userID, chatID,
		"0xabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcd"))

	sess = b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingDescription {
		t.Fatalf("Expected awaiting description after tx hash, got %v", sess.Step)
	}
	if sess.TxHash == "" {
		t.Error("Expected tx hash to be recorded")
	}
}

func TestBot_SolanaSignatureAcceptedAsTx(t *testing.T) {
	b, _, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingTx
	b.sessions.Put(userID, sess)

	b.handleMessage(textMessage(userID, chatID, "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb"))

	sess = b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingDescription {
		t.Fatalf("Expected Solana signature to advance the tx step, got %v", sess.Step)
	}
	if sess.Chain != models.ChainSolana {
		t.Errorf("Expected Solana chain, got %v", sess.Chain)
	}
}

func TestBot_AutoStartOnBareIdentifier(t *testing.T) {
	b, _, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	// Idle user sends a bare Solana-looking string, no /start needed
	b.handleMessage(textMessage(userID, chatID, "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb"))

	sess := b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingWallet {
		t.Fatalf("Expected auto-start into awaiting wallet, got %v", sess.Step)
	}
	if sess.Category != models.CategoryOther {
		t.Errorf("Expected category Other on auto-start, got %v", sess.Category)
	}
	if sess.Description == "" {
		t.Error("Expected the original message to be kept in the description")
	}
}

func TestBot_SkipWithoutWalletStillDispatches(t *testing.T) {
	b, rec, archive := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingAttachment
	sess.Category = models.CategoryBridge
	sess.TxHash = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcd"
	sess.Description = "bridge is slow"
	b.sessions.Put(userID, sess)

	b.handleMessage(textMessage(userID, chatID, "skip"))

	// Report delivered despite the missing wallet
	records := archive.Records()
	if len(records) != 1 {
		t.Fatalf("Expected one archived report, got %d", len(records))
	}
	if records[0].Completeness != models.MissingWallet.Label() {
		t.Errorf("Expected missing-wallet flag, got %q", records[0].Completeness)
	}
	if len(rec.sent) == 0 {
		t.Fatal("Expected report dispatch to the staff channel")
	}

	// Session is destroyed after submit
	if got := b.sessions.Get(userID).Step; got != session.StepIdle {
		t.Errorf("Expected idle session after submit, got %v", got)
	}
}

func TestBot_AttachmentStepAppendsLooseText(t *testing.T) {
	b, _, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingAttachment
	sess.Description = "initial"
	b.sessions.Put(userID, sess)

	b.handleMessage(textMessage(userID, chatID, "also the UI froze"))

	sess = b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingAttachment {
		t.Fatalf("Expected to stay on attachment step, got %v", sess.Step)
	}
	if sess.Description != "initial\nalso the UI froze" {
		t.Errorf("Expected text appended to description, got %q", sess.Description)
	}
}

func TestBot_PhotoSubmitsReport(t *testing.T) {
	b, rec, archive := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingAttachment
	sess.Category = models.CategorySwap
	sess.Wallet = "0x1234567890abcdef1234567890abcdef12345678"
	sess.TxHash = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcd"
	sess.Description = "swap failed"
	b.sessions.Put(userID, sess)

	photo := textMessage(userID, chatID, "")
	photo.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}

	b.handleMessage(photo)

	if len(rec.groups) != 1 {
		t.Fatalf("Expected one media group, got %d", len(rec.groups))
	}
	records := archive.Records()
	if len(records) != 1 || records[0].AttachmentCount != 1 {
		t.Fatalf("Expected one archived report with one attachment, got %+v", records)
	}
	if got := b.sessions.Get(userID).Step; got != session.StepIdle {
		t.Errorf("Expected session cleared after submit, got %v", got)
	}
}

func TestBot_CancelIsIdempotent(t *testing.T) {
	b, rec, _ := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	// Cancelling with no report in progress is a polite no-op
	b.handleMessage(textMessage(userID, chatID, "Cancel"))
	if !strings.Contains(rec.lastText(), "Nothing to cancel") {
		t.Errorf("Expected already-idle notice, got %q", rec.lastText())
	}

	// Cancelling mid-flow destroys the session
	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingTx
	b.sessions.Put(userID, sess)

	b.handleMessage(commandMessage(userID, chatID, "/cancel"))
	if got := b.sessions.Get(userID).Step; got != session.StepIdle {
		t.Errorf("Expected idle after cancel, got %v", got)
	}
}

func TestBot_RateLimitRejectsWithoutTouchingSession(t *testing.T) {
	b, rec, _ := newTestBot(time.Minute)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingWallet
	b.sessions.Put(userID, sess)

	// First message is accepted and advances the flow
	b.handleMessage(textMessage(userID, chatID, "0x1234567890abcdef1234567890abcdef12345678"))
	if got := b.sessions.Get(userID).Step; got != session.StepAwaitingTx {
		t.Fatalf("Expected first message accepted, got step %v", got)
	}

	// Second one lands inside the cooldown window: wait notice, no state change
	b.handleMessage(textMessage(userID, chatID,
		"0xabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcd"))
	sess = b.sessions.Get(userID)
	if sess.Step != session.StepAwaitingTx {
		t.Errorf("Expected session untouched by rate-limited message, got %v", sess.Step)
	}
	if sess.TxHash != "" {
		t.Errorf("Expected no tx recorded, got %q", sess.TxHash)
	}
	if !strings.Contains(rec.lastText(), "too quickly") {
		t.Errorf("Expected wait notice, got %q", rec.lastText())
	}
}

func TestBot_DispatchFailureClearsSessionAndNotifies(t *testing.T) {
	b, rec, archive := newTestBot(0)
	userID, chatID := int64(123), int64(456)

	sess := b.sessions.Get(userID)
	sess.Step = session.StepAwaitingAttachment
	sess.Description = "something broke"
	b.sessions.Put(userID, sess)

	rec.failNext = 1
	b.handleMessage(textMessage(userID, chatID, "skip"))

	if !strings.Contains(rec.lastText(), "Failed to submit") {
		t.Errorf("Expected generic retry-later notice, got %q", rec.lastText())
	}
	if len(archive.Records()) != 0 {
		t.Error("Expected no archive record for a failed dispatch")
	}
	if got := b.sessions.Get(userID).Step; got != session.StepIdle {
		t.Errorf("Expected session cleared even on failure, got %v", got)
	}
}

func TestBot_StatsDeniedForNonAdmin(t *testing.T) {
	b, rec, _ := newTestBot(0)

	b.handleMessage(commandMessage(123, 456, "/stats"))
	if !strings.Contains(rec.lastText(), "restricted") {
		t.Errorf("Expected denial notice, got %q", rec.lastText())
	}

	// Admin chat gets real numbers
	b.handleMessage(commandMessage(testAdminID, testAdminID, "/stats"))
	if !strings.Contains(rec.lastText(), "Report statistics") &&
		!strings.Contains(rec.lastText(), "Total reports") {
		t.Errorf("Expected stats output for admin, got %q", rec.lastText())
	}
}

func TestBot_PanicRecovery(t *testing.T) {
	b, _, _ := newTestBot(0)

	// A message with no From would panic without the recover
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("handleMessage panicked: %v", r)
		}
	}()

	b.handleMessage(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}})
}

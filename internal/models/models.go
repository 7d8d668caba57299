package models

import (
	"strings"
	"time"
)

// Category identifies which product area an issue report is about.
type Category int

const (
	CategoryOther Category = iota
	CategorySwap
	CategoryBridge
	CategoryWBESCBridge
)

// Callback payloads for the category selection keyboard.
const (
	CallbackSwapIssue   = "swap_issue"
	CallbackBridgeIssue = "bridge_issue"
	CallbackWBESCIssue  = "wbesc_issue"
	CallbackOtherIssue  = "other_issue"
)

// Label returns the human-readable category name used in reports.
func (c Category) Label() string {
	switch c {
	case CategorySwap:
		return "BESCSWAP"
	case CategoryBridge:
		return "BESCbridge"
	case CategoryWBESCBridge:
		return "wBESC Bridge"
	default:
		return "Other"
	}
}

// CategoryFromCallback maps a category button payload to its Category.
// The second return value is false for payloads that are not category
// selections.
func CategoryFromCallback(data string) (Category, bool) {
	switch data {
	case CallbackSwapIssue:
		return CategorySwap, true
	case CallbackBridgeIssue:
		return CategoryBridge, true
	case CallbackWBESCIssue:
		return CategoryWBESCBridge, true
	case CallbackOtherIssue:
		return CategoryOther, true
	}
	return CategoryOther, false
}

// Chain identifies the blockchain a wallet or transaction belongs to.
type Chain int

const (
	ChainUnknown Chain = iota
	ChainBSC
	ChainETH
	ChainPolygon
	ChainArbitrum
	ChainBESC
	ChainSolana
)

// explorer holds the URL prefixes for a chain's block explorer.
type explorer struct {
	label   string
	txURL   string
	addrURL string
}

// Static explorer table. Never mutated at runtime.
var explorers = map[Chain]explorer{
	ChainBSC:      {"BSC", "https://bscscan.com/tx/", "https://bscscan.com/address/"},
	ChainETH:      {"ETH", "https://etherscan.io/tx/", "https://etherscan.io/address/"},
	ChainPolygon:  {"POLYGON", "https://polygonscan.com/tx/", "https://polygonscan.com/address/"},
	ChainArbitrum: {"ARBITRUM", "https://arbiscan.io/tx/", "https://arbiscan.io/address/"},
	ChainBESC:     {"BESC", "https://explorer.bescscan.io/tx/", "https://explorer.bescscan.io/address/"},
	ChainSolana:   {"SOLANA", "https://solscan.io/tx/", "https://solscan.io/account/"},
}

// Label returns the chain tag used in reports, or "Unknown".
func (c Chain) Label() string {
	if e, ok := explorers[c]; ok {
		return e.label
	}
	return "Unknown"
}

// TxURL returns the explorer link for a transaction hash, or "" when the
// chain has no explorer entry.
func (c Chain) TxURL(hash string) string {
	if e, ok := explorers[c]; ok {
		return e.txURL + hash
	}
	return ""
}

// AddressURL returns the explorer link for an address, or "" when the
// chain has no explorer entry.
func (c Chain) AddressURL(addr string) string {
	if e, ok := explorers[c]; ok {
		return e.addrURL + addr
	}
	return ""
}

// Severity is the triage tier derived from the report description.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityCritical
)

func (s Severity) Label() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

var criticalKeywords = []string{"stuck", "lost", "funds", "hacked", "urgent", "exploit", "drained"}
var mediumKeywords = []string{"error", "failed", "timeout", "slow"}

// ClassifySeverity scans the lower-cased description for severity
// keywords. A critical keyword always wins over a medium one.
func ClassifySeverity(description string) Severity {
	lower := strings.ToLower(description)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return SeverityCritical
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			return SeverityMedium
		}
	}
	return SeverityLow
}

// Completeness flags whether a report carries the minimum identifying
// fields (wallet, transaction hash).
type Completeness int

const (
	NeedsFollowUp Completeness = iota
	MissingWallet
	MissingTx
	Complete
)

func (c Completeness) Label() string {
	switch c {
	case Complete:
		return "✅ Complete"
	case MissingWallet:
		return "⚠️ Missing wallet address"
	case MissingTx:
		return "⚠️ Missing transaction hash"
	default:
		return "❗ Needs follow-up (no wallet, no tx)"
	}
}

// ClassifyCompleteness derives the completeness flag from the presence of
// the wallet and transaction hash fields.
func ClassifyCompleteness(wallet, txHash string) Completeness {
	switch {
	case wallet != "" && txHash != "":
		return Complete
	case wallet == "" && txHash != "":
		return MissingWallet
	case wallet != "" && txHash == "":
		return MissingTx
	default:
		return NeedsFollowUp
	}
}

// AttachmentKind distinguishes the media types a report can carry.
type AttachmentKind int

const (
	AttachmentPhoto AttachmentKind = iota
	AttachmentVideo
	AttachmentDocument
)

// Attachment is a media item attached to a report, referenced by the
// gateway's opaque file id.
type Attachment struct {
	Kind   AttachmentKind
	FileID string
}

// ReportRecord is the archived form of a submitted report, used for the
// admin statistics query.
type ReportRecord struct {
	UserID          int64
	Category        string
	Chain           string
	Severity        string
	Completeness    string
	AttachmentCount int
	SubmittedAt     time.Time
}

// ReportStats aggregates the archive for the admin /stats query.
type ReportStats struct {
	Total      uint64
	Last24h    uint64
	BySeverity map[string]uint64
	ByCategory map[string]uint64
}

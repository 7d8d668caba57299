package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySeverity(t *testing.T) {
	assert.Equal(t, SeverityLow, ClassifySeverity("swap went through twice"))
	assert.Equal(t, SeverityMedium, ClassifySeverity("the transaction failed"))
	assert.Equal(t, SeverityCritical, ClassifySeverity("my funds are gone"))

	// Keyword match is case-insensitive
	assert.Equal(t, SeverityCritical, ClassifySeverity("URGENT please help"))

	// Critical wins over medium when both keyword sets match
	assert.Equal(t, SeverityCritical, ClassifySeverity("tx failed and now my tokens are stuck"))
}

func TestClassifyCompleteness(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"
	tx := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcdefabcd"

	assert.Equal(t, Complete, ClassifyCompleteness(wallet, tx))
	assert.Equal(t, MissingTx, ClassifyCompleteness(wallet, ""))
	assert.Equal(t, MissingWallet, ClassifyCompleteness("", tx))
	assert.Equal(t, NeedsFollowUp, ClassifyCompleteness("", ""))
}

func TestExplorerURLs(t *testing.T) {
	assert.Equal(t, "https://etherscan.io/tx/0xabc", ChainETH.TxURL("0xabc"))
	assert.Equal(t, "https://bscscan.com/address/0xdef", ChainBSC.AddressURL("0xdef"))
	assert.Equal(t, "https://solscan.io/account/abc", ChainSolana.AddressURL("abc"))

	// Unknown chain carries no explorer
	assert.Empty(t, ChainUnknown.TxURL("0xabc"))
	assert.Equal(t, "Unknown", ChainUnknown.Label())
}

func TestCategoryFromCallback(t *testing.T) {
	cat, ok := CategoryFromCallback(CallbackBridgeIssue)
	assert.True(t, ok)
	assert.Equal(t, CategoryBridge, cat)

	_, ok = CategoryFromCallback("resolve:123")
	assert.False(t, ok)
}

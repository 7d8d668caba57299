// Package detect recognizes blockchain identifiers in free text.
//
// Validation is purely syntactic (length and character class). Nothing
// here checks that an address or transaction actually exists on chain.
package detect

import (
	"regexp"
	"strings"
	"unicode"

	"reportbot/internal/models"
)

var (
	// The word boundaries keep a 64-hex tx hash from also matching the
	// 40-hex address pattern as a prefix.
	evmTxHashRe  = regexp.MustCompile(`(?i)\b0x[0-9a-f]{64}\b`)
	evmAddressRe = regexp.MustCompile(`(?i)\b0x[0-9a-f]{40}\b`)

	// Solana base58 alphabet excludes 0, O, I and l.
	solanaRe = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)
)

// EVMTxHash returns the first 0x-prefixed 64-hex-digit run in text, or "".
func EVMTxHash(text string) string {
	return evmTxHashRe.FindString(text)
}

// EVMAddress returns the first 0x-prefixed 40-hex-digit run in text, or "".
// A 64-hex transaction hash does not match: the trailing word boundary
// rejects the partial run.
func EVMAddress(text string) string {
	return evmAddressRe.FindString(text)
}

// SolanaIdentifier returns the first base58 run of length 32-44 in text,
// or "". The same pattern covers Solana addresses and, at the longer end,
// transaction signatures; callers decide which one it is from context.
func SolanaIdentifier(text string) string {
	return solanaRe.FindString(text)
}

// chainKeywords is checked in priority order; the first hit wins.
var chainKeywords = []struct {
	chain    models.Chain
	keywords []string
}{
	{models.ChainSolana, []string{"solana", "sol"}},
	{models.ChainBSC, []string{"bsc", "bnb", "binance"}},
	{models.ChainETH, []string{"eth", "ethereum"}},
	{models.ChainPolygon, []string{"polygon", "matic"}},
	{models.ChainArbitrum, []string{"arbitrum"}},
	{models.ChainBESC, []string{"besc"}},
}

// GuessChain performs a case-insensitive keyword search over the fixed
// priority list and returns the first match. Keywords match whole words
// only, so "besc" is never shadowed by "bsc". This is a heuristic, not
// authoritative: when several chain names co-occur in the text the
// highest-priority one wins, right or wrong.
func GuessChain(text string) models.Chain {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), isWordSeparator) {
		words[w] = true
	}
	for _, entry := range chainKeywords {
		for _, kw := range entry.keywords {
			if words[kw] {
				return entry.chain
			}
		}
	}
	return models.ChainUnknown
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

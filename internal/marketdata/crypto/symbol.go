// Package crypto holds the symbol conventions shared by the crypto sources.
package crypto

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultQuote is appended to bare coin symbols
const DefaultQuote = "USDT"

// Common quote currencies in order of priority for detection
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "USD", "BTC", "ETH", "BNB"}

var validCryptoSymbol = regexp.MustCompile(`^[A-Za-z0-9]{2,20}$`)

// coinIDs maps base assets to CoinGecko coin IDs. It doubles as the list of
// bare symbols routed to crypto sources.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"LTC":   "litecoin",
	"ETC":   "ethereum-classic",
	"XLM":   "stellar",
	"ALGO":  "algorand",
	"NEAR":  "near",
	"FTM":   "fantom",
	"SAND":  "the-sandbox",
	"MANA":  "decentraland",
	"AAVE":  "aave",
	"CRV":   "curve-dao-token",
	"APE":   "apecoin",
	"LDO":   "lido-dao",
	"ARB":   "arbitrum",
	"OP":    "optimism",
}

func clean(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	return strings.NewReplacer("-", "", "/", "", "_", "").Replace(s)
}

// NormalizeSymbol converts various input formats to standard format (e.g., BTCUSDT)
// Input formats: "BTC", "btc", "BTC-USDT", "BTC/USDT", "btcusdt"
// Output: "BTCUSDT"
func NormalizeSymbol(input string, defaultQuote string) string {
	s := clean(input)
	if s == "" {
		return ""
	}

	// Ensure there's a base currency left (symbol must be longer than quote)
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}

	return s + strings.ToUpper(defaultQuote)
}

// ParseSymbol extracts base and quote from a normalized symbol
// "BTCUSDT" -> ("BTC", "USDT")
func ParseSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(symbol)

	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}

	return s, ""
}

// IsCrypto reports whether symbol names a known coin, bare ("BTC") or
// paired ("ETH-USD", "SOLUSDT"). Everything else is treated as a stock.
func IsCrypto(symbol string) bool {
	s := clean(symbol)
	if _, ok := coinIDs[s]; ok {
		return true
	}
	base, quote := ParseSymbol(s)
	if quote == "" {
		return false
	}
	_, ok := coinIDs[base]
	return ok
}

// CoinGeckoID returns the CoinGecko coin ID for a base asset, falling back to
// the lowercased base.
func CoinGeckoID(base string) string {
	if id, ok := coinIDs[strings.ToUpper(base)]; ok {
		return id
	}
	return strings.ToLower(base)
}

// ValidateCryptoSymbol checks if a symbol has valid format
func ValidateCryptoSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 30 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validCryptoSymbol.MatchString(clean(symbol)) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

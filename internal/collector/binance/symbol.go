package binance

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultQuote is appended to bare base assets ("BTC" -> "BTCUSDT").
const DefaultQuote = "USDT"

// Common quote currencies in order of priority for detection
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB"}

var validPair = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// NormalizeSymbol converts "btc", "BTC-USDT", "BTC/USDT" or "btcusdt"
// to the exchange pair form "BTCUSDT".
func NormalizeSymbol(input string, defaultQuote string) string {
	if input == "" {
		return ""
	}

	s := strings.ToUpper(input)
	s = strings.NewReplacer("-", "", "/", "", "_", "").Replace(s)

	// A known quote suffix must leave a non-empty base
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}

	return s + strings.ToUpper(defaultQuote)
}

// validatePair checks a normalized pair.
func validatePair(pair string) error {
	if !validPair.MatchString(pair) {
		return fmt.Errorf("invalid symbol format: %s", pair)
	}
	return nil
}

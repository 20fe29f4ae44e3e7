package collector

import (
	"fmt"
	"strings"
)

// ExchangeCancel is returned by CheckExchange for tokens that map to no qualifier.
const ExchangeCancel = "cancel"

var exchangeSuffixes = map[string]string{
	"":       "",
	"NYSE":   "",
	"NASDAQ": "",
	"TSX":    "TO",
	"TSE":    "TO",
	"TO":     "TO",
	"CVE":    "V",
	"V":      "V",
}

// CheckExchange maps a user supplied exchange name to the quote suffix the site
// expects: "" for US listings, "TO" for Toronto, "V" for the Venture exchange.
// Anything else yields ExchangeCancel. An empty token is treated as a US listing.
func CheckExchange(exchange string) string {
	if suffix, ok := exchangeSuffixes[strings.ToUpper(strings.TrimSpace(exchange))]; ok {
		return suffix
	}
	return ExchangeCancel
}

// ResolveExchange is CheckExchange with the cancel sentinel turned into ErrInvalidExchange.
func ResolveExchange(exchange string) (string, error) {
	suffix := CheckExchange(exchange)
	if suffix == ExchangeCancel {
		return "", fmt.Errorf("%w: %q", ErrInvalidExchange, exchange)
	}
	return suffix, nil
}

// QuoteSymbol joins a ticker and its exchange suffix, e.g. "SHOP.TO".
func QuoteSymbol(symbol, suffix string) string {
	if suffix == "" {
		return symbol
	}
	return symbol + "." + suffix
}

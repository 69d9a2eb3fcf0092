package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the canonical record kept per (bank, currency).
// Buy and Sell are kept as exact decimals; either side may be absent
// when a bank does not publish it.
type Quote struct {
	Bank     string              `json:"bank"`
	Currency string              `json:"currency"`
	Buy      decimal.NullDecimal `json:"buy"`
	Sell     decimal.NullDecimal `json:"sell"`
	// Synthesized marks a quote whose missing side was filled in from the
	// bank's published central-bank reference rate rather than observed.
	Synthesized bool      `json:"synthesized,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Key identifies the single live quote slot for a bank/currency pair.
type Key struct {
	Bank     string
	Currency string
}

func (q Quote) Key() Key { return Key{Bank: q.Bank, Currency: q.Currency} }

// Empty reports whether the quote carries no usable side at all.
// Empty quotes are discarded before they reach the store.
func (q Quote) Empty() bool { return !q.Buy.Valid && !q.Sell.Valid }

// DefaultCurrencies is the canonical whitelist. Codes outside the
// configured whitelist are dropped during normalization, never guessed.
var DefaultCurrencies = []string{"USD", "EUR", "RUB"}

// D is a shorthand for building a present decimal value.
func D(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// DS parses s into a present decimal value. It panics on malformed input
// and is meant for literals in tests and fixtures.
func DS(s string) decimal.NullDecimal {
	return D(decimal.RequireFromString(s))
}

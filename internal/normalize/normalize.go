// Package normalize turns provider-specific text into canonical quotes.
// Everything here is pure: no I/O, no clocks other than the one passed in.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"uzrates/internal/rates"
)

var (
	// ErrBadNumber means a numeric cell could not be parsed at all.
	ErrBadNumber = errors.New("unparsable number")
	// ErrUnknownCurrency means the label matched nothing in the lookup
	// table and carried no recognizable ISO code. Soft: log and drop.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrEmptyQuote means neither buy nor sell survived normalization.
	// Soft: such rows are dropped, never stored.
	ErrEmptyQuote = errors.New("empty quote")
)

// Rules is the per-source normalization configuration. Holding these as
// data keeps the ~20 adapters from growing near-identical code bodies.
type Rules struct {
	// ScaleDivisor divides every parsed value; banks that publish rates
	// in minor units (tiyin) declare 100 here. 0 and 1 mean no scaling.
	ScaleDivisor int64
	// SellIsLarger resolves sources whose sell and central-bank columns
	// are ambiguously labeled: sell is whichever of the two non-buy
	// values is larger, the other is treated as the central rate.
	SellIsLarger bool
	// NoCentralFallback disables substituting the central-bank rate for
	// a missing side. Without it a missing side is filled from Central
	// and the quote is tagged Synthesized.
	NoCentralFallback bool
}

// Quote builds a canonical quote from one raw row.
//
// label is the provider's currency name or code ("Evro (EUR)", "AQSH
// dollari", "USD"). buy/sell/central are raw numeric texts, any of which
// may be empty. Currencies outside allowed are rejected with
// ErrUnknownCurrency wrapping the detected code.
func Quote(bank, label, buy, sell, central string, r Rules, allowed []string, now time.Time) (rates.Quote, error) {
	code, ok := DetectCurrency(label)
	if !ok {
		return rates.Quote{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, label)
	}
	if !contains(allowed, code) {
		return rates.Quote{}, fmt.Errorf("%w: %s not whitelisted", ErrUnknownCurrency, code)
	}

	b := parseOptional(buy, r)
	s := parseOptional(sell, r)
	c := parseOptional(central, r)

	if r.SellIsLarger && s.Valid && c.Valid {
		if c.Decimal.GreaterThan(s.Decimal) {
			s, c = c, s
		}
	}

	q := rates.Quote{Bank: bank, Currency: code, Buy: b, Sell: s, ObservedAt: now}
	if !r.NoCentralFallback && c.Valid {
		if !q.Buy.Valid {
			q.Buy = c
			q.Synthesized = true
		}
		if !q.Sell.Valid {
			q.Sell = c
			q.Synthesized = true
		}
	}
	if q.Empty() {
		return rates.Quote{}, fmt.Errorf("%w: %s/%s", ErrEmptyQuote, bank, code)
	}
	return q, nil
}

func parseOptional(s string, r Rules) decimal.NullDecimal {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	if d.IsZero() {
		// placeholder rows ("0", "0,00") mean "not offered"
		return decimal.NullDecimal{}
	}
	if r.ScaleDivisor > 1 {
		d = d.Div(decimal.NewFromInt(r.ScaleDivisor))
	}
	return rates.D(d)
}

// ParseDecimal parses locale-formatted numeric text into an exact decimal.
// Handles "12 295,00", "12,295.00", "12295", non-breaking spaces, and
// trailing footnote markers ("12 890,00*"). Separator rule: when both
// comma and dot appear, the rightmost one is the decimal separator; a
// lone comma followed by exactly three digits is a thousands separator.
func ParseDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(c rune) rune {
		switch c {
		case ' ', ' ', ' ', '\'', '*', '%':
			return -1
		}
		return c
	}, strings.TrimSpace(s))
	// the apostrophe is already stripped, so "so'm" is "som" by now
	cleaned = strings.TrimSuffix(cleaned, "som")

	if cleaned == "" || cleaned == "-" || cleaned == "—" ||
		strings.EqualFold(cleaned, "n/a") {
		return decimal.Decimal{}, ErrBadNumber
	}

	comma := strings.LastIndexByte(cleaned, ',')
	dot := strings.LastIndexByte(cleaned, '.')
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// 12.295,00 -> dot was thousands
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// 12,295.00 -> comma was thousands
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case comma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-comma-1 == 3 {
			// 12,295 -> thousands
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			if strings.Count(cleaned, ",") > 1 {
				return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrBadNumber, s)
			}
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}
	return d, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

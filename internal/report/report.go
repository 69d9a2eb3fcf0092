// Package report renders store snapshots for humans: a monospace text
// table for chat and terminals, and the same table as a PNG for clients
// that mangle whitespace.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"uzrates/internal/rates"
)

// Best is the most favorable pair of rates for one currency: the bank
// paying the most when you sell cash, and the bank charging the least
// when you buy it. Synthesized quotes never win either slot.
type Best struct {
	Currency string          `json:"currency"`
	BuyBank  string          `json:"buy_bank"`
	Buy      decimal.Decimal `json:"buy"`
	SellBank string          `json:"sell_bank"`
	Sell     decimal.Decimal `json:"sell"`
}

// BestRates collapses quotes to one row per currency, sorted by
// currency code. Ties keep the first bank in input order.
func BestRates(quotes []rates.Quote) []Best {
	best := make(map[string]*Best, 4)
	for _, q := range quotes {
		if q.Synthesized {
			continue
		}
		b := best[q.Currency]
		if b == nil {
			b = &Best{Currency: q.Currency}
			best[q.Currency] = b
		}
		if q.Buy.Valid && (b.BuyBank == "" || q.Buy.Decimal.GreaterThan(b.Buy)) {
			b.BuyBank, b.Buy = q.Bank, q.Buy.Decimal
		}
		if q.Sell.Valid && (b.SellBank == "" || q.Sell.Decimal.LessThan(b.Sell)) {
			b.SellBank, b.Sell = q.Bank, q.Sell.Decimal
		}
	}
	out := make([]Best, 0, len(best))
	for _, b := range best {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// Table renders quotes grouped by currency. Quotes are assumed to be
// store order (bank, then currency); missing sides print as a dash and
// synthesized quotes carry a trailing asterisk.
func Table(quotes []rates.Quote) string {
	byCurrency := make(map[string][]rates.Quote)
	var codes []string
	for _, q := range quotes {
		if _, seen := byCurrency[q.Currency]; !seen {
			codes = append(codes, q.Currency)
		}
		byCurrency[q.Currency] = append(byCurrency[q.Currency], q)
	}
	sort.Strings(codes)

	bankWidth := len("bank")
	for _, q := range quotes {
		if len(q.Bank) > bankWidth {
			bankWidth = len(q.Bank)
		}
	}

	var sb strings.Builder
	synthesized := false
	for i, code := range codes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s\n", code)
		fmt.Fprintf(&sb, "%-*s  %10s  %10s\n", bankWidth, "bank", "buy", "sell")
		for _, q := range byCurrency[code] {
			mark := " "
			if q.Synthesized {
				mark = "*"
				synthesized = true
			}
			fmt.Fprintf(&sb, "%-*s  %10s  %10s%s\n", bankWidth, q.Bank, side(q.Buy), side(q.Sell), mark)
		}
	}
	if synthesized {
		sb.WriteString("\n* both sides from the bank's central-bank reference rate\n")
	}
	return sb.String()
}

func side(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

const (
	pngMargin     = 10
	pngLineHeight = 15
)

// Image renders the text table as a PNG.
func Image(quotes []rates.Quote) ([]byte, error) {
	lines := strings.Split(strings.TrimRight(Table(quotes), "\n"), "\n")

	face := basicfont.Face7x13
	maxCols := 0
	for _, l := range lines {
		if len(l) > maxCols {
			maxCols = len(l)
		}
	}
	w := maxCols*face.Advance + 2*pngMargin
	h := len(lines)*pngLineHeight + 2*pngMargin

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(pngMargin, pngMargin+(i+1)*pngLineHeight-4)
		d.DrawString(l)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Garantbank's exchange table leads with a header row plus a subtitle
// row before the data. Buy and sell live in one combined cell with
// dedicated purchase/sale spans; there is no central column.
func NewGarantbank(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID:   "garantbank",
		URL:      "https://garantbank.uz/uz/exchange-rates",
		Row:      "table.exchange-table tr",
		SkipRows: 2,
		Label: []source.Cell{
			source.Sel(".exchange-currency"),
		},
		Buy: []source.Cell{
			source.Sel(".exchange-purchase"),
		},
		Sell: []source.Cell{
			source.Sel(".exchange-sale"),
		},
	}, hc)
}

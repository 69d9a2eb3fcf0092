package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Poytaxtbank uses the same tabbed exchange widget as Aloqabank (same
// CMS), first tab = individuals at the cash desk. First table row is a
// header without td cells.
func NewPoytaxtbank(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID:   "poytaxtbank",
		URL:      "https://poytaxtbank.uz/uz/services/exchange-rates/",
		Row:      `.exchange__main .exchange__group[data-tabs-target="tab1"] table.exchange__table tr`,
		SkipRows: 1,
		MinCells: 4,
		Label: []source.Cell{
			source.Sel("td:nth-child(1) span"),
			source.Col(0),
		},
		Buy: []source.Cell{
			source.Sel("td:nth-child(2) span"),
			source.Col(1),
		},
		Sell: []source.Cell{
			source.Sel("td:nth-child(3) span"),
			source.Col(2),
		},
		Central: []source.Cell{
			source.Sel("td:nth-child(4) span"),
			source.Col(3),
		},
	}, hc)
}

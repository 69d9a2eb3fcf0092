package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// MKBank's office rates hide on its gold-bars page, first tab. Plain
// four-column table: code, buy, sell, central.
func NewMKBank(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID:   "mkbank",
		URL:      "https://mkbank.uz/uz/private/gold-bars/",
		Row:      `.currency__group[data-tabs-target="tab1"] table.currency__table tr`,
		SkipRows: 1,
		MinCells: 4,
		Label:    []source.Cell{source.Col(0)},
		Buy:      []source.Cell{source.Col(1)},
		Sell:     []source.Cell{source.Col(2)},
		Central:  []source.Cell{source.Col(3)},
	}, hc)
}

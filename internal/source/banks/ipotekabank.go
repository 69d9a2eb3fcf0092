package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Ipotekabank shows three identical tables (branch, ATM, corporate);
// the row selector pins the first one, which is the branch/office table
// with the central-bank column.
func NewIpotekabank(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID:   "ipotekabank",
		URL:      "https://www.ipotekabank.uz/currency/",
		Row:      "table.table.table-hover.table-striped:first-of-type tbody tr",
		MinCells: 4,
		Label:    []source.Cell{source.Col(0)},
		Buy:      []source.Cell{source.Col(1)},
		Sell:     []source.Cell{source.Col(2)},
		Central:  []source.Cell{source.Col(3)},
	}, hc)
}

package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Aloqabank publishes an individual-rates tab on its landing page.
// Each row carries a name/code pair and three value cells: buy, sell,
// central bank. Values come with footnote asterisks ("12 890,00*")
// which the normalizer strips.
func NewAloqabank(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID:   "aloqabank",
		URL:      "https://aloqabank.uz/uz/",
		Row:      `.exchange__group[data-tabs-target="tab1"] .exchange__table tr`,
		MinCells: 4,
		Label: []source.Cell{
			source.Sel(".currency-name__code"),
			source.Sel(".currency-name__text"),
		},
		Buy: []source.Cell{
			source.Sel("td:nth-child(2) .exchange-value span"),
			source.Col(1),
		},
		Sell: []source.Cell{
			source.Sel("td:nth-child(3) .exchange-value span"),
			source.Col(2),
		},
		Central: []source.Cell{
			source.Sel("td:nth-child(4) .exchange-value span"),
			source.Col(3),
		},
	}, hc)
}

package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Octobank lists office rates as widget rows, not a table: a heading
// with the code and two paragraph values in visual order (buy, sell).
// Placeholder rows show zeros; the normalizer treats zero values as
// absent and drops the row.
func NewOctobank(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID: "octobank",
		URL:    "https://octobank.uz/uz/interaktiv-xizmatlar/kurs-valyut",
		Row:    ".widgets_01_currency-wrapper .widgets_01_currency-item-wrapper",
		Label: []source.Cell{
			source.Sel("h6.widgets_01_currency-item-heading"),
		},
		Buy: []source.Cell{
			source.SelN(".widgets_01_currency-item-course-wrapper .widgets_01_currency-item-paragraph", 0),
		},
		Sell: []source.Cell{
			source.SelN(".widgets_01_currency-item-course-wrapper .widgets_01_currency-item-paragraph", 1),
		},
	}, hc)
}

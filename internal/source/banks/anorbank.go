package banks

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// var so fixture tests can point it at a local server
var anorbankURL = "https://anorbank.uz/uz/about/exchange-rates/"

// Anorbank's desktop table wraps USD in an accordion header (three
// block cells: buy, sell, central) while all other currencies are plain
// four-cell rows with a "Name, CODE" label. The page also renders a
// mobile card variant of the same data; only the desktop table is read
// to avoid double rows.
func NewAnorbank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "anorbank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			doc, err := source.FetchDocument(ctx, hc, anorbankURL, nil)
			if err != nil {
				return nil, err
			}
			table := doc.Find("#desktop_currencies_table")
			if table.Length() == 0 {
				return nil, fmt.Errorf("%w: anorbank desktop table missing", source.ErrParse)
			}

			var out []source.Raw

			// USD summary lives in the accordion head.
			head := table.Find(".accordion__head .block-container").First()
			if head.Length() > 0 {
				out = append(out, source.Raw{
					Currency: "USD",
					Buy:      source.CleanText(head.Find(".block-1").Text()),
					Sell:     source.CleanText(head.Find(".block-2").Text()),
					Central:  source.CleanText(head.Find(".block-3").Text()),
				})
			}

			table.Find("tbody > tr").Each(func(_ int, tr *goquery.Selection) {
				if tr.Find(".accordion").Length() > 0 {
					return // the USD accordion row, handled above
				}
				tds := tr.Find("td")
				if tds.Length() != 4 {
					return
				}
				label := source.CleanText(tds.Eq(0).Text()) // "Evro, EUR"
				if label == "" {
					return
				}
				out = append(out, source.Raw{
					Currency: label,
					Buy:      source.CleanText(tds.Eq(1).Text()),
					Sell:     source.CleanText(tds.Eq(2).Text()),
					Central:  source.CleanText(tds.Eq(3).Text()),
				})
			})

			if len(out) == 0 {
				return nil, fmt.Errorf("%w: anorbank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

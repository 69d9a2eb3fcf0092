package banks

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Davrbank renders three identical tables in page order: bank offices,
// legal entities, mobile app. Only the first is read. Column order is
// unusual: name, central bank ("MB"), sell ("Sotuv"), buy ("Xarid").
func NewDavrbank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "davrbank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			doc, err := source.FetchDocument(ctx, hc, "https://davrbank.uz/uz/exchange-rate", nil)
			if err != nil {
				return nil, err
			}
			tables := doc.Find("table.min-w-full.table-auto.border-collapse.text-left")
			if tables.Length() == 0 {
				return nil, fmt.Errorf("%w: davrbank rate tables missing", source.ErrParse)
			}
			var out []source.Raw
			tables.Eq(0).Find("tbody > tr").Each(func(_ int, tr *goquery.Selection) {
				tds := tr.Find("td")
				if tds.Length() < 4 {
					return
				}
				label := source.CleanText(tds.Eq(0).Text()) // "AQSH dollari", "Yevro", ...
				if label == "" {
					return
				}
				out = append(out, source.Raw{
					Currency: label,
					Central:  source.CleanText(tds.Eq(1).Text()),
					Sell:     source.CleanText(tds.Eq(2).Text()),
					Buy:      source.CleanText(tds.Eq(3).Text()),
				})
			})
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: davrbank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

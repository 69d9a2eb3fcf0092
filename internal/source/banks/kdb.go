package banks

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// KDB packs buy and sell into a single "12 100 / 12 200" cell, with
// "n/a" for sides it does not trade (RUB). The mobile table under the
// #kdb tab is the stable one across page revisions.
func NewKDB(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "kdb",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			doc, err := source.FetchDocument(ctx, hc, "https://kdb.uz/en/interactive-services/exchange-rates", nil)
			if err != nil {
				return nil, err
			}
			var out []source.Raw
			doc.Find("#kdb table.d-lg-none tbody tr").Each(func(_ int, tr *goquery.Selection) {
				label := source.CleanText(tr.Find("th").Text())
				if label == "" {
					return
				}
				buy, sell := splitPair(source.CleanText(tr.Find("td").First().Text()))
				out = append(out, source.Raw{Currency: label, Buy: buy, Sell: sell})
			})
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: kdb", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

// splitPair splits "a / b" cells; "n/a" sides come back empty and the
// normalizer treats them as absent.
func splitPair(s string) (buy, sell string) {
	// blank out n/a markers first so they do not confuse the split
	s = strings.ReplaceAll(strings.ReplaceAll(s, "N/A", ""), "n/a", "")
	parts := strings.SplitN(s, "/", 2)
	buy = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		sell = strings.TrimSpace(parts[1])
	}
	return buy, sell
}

package banks

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"uzrates/internal/httpx"
	"uzrates/internal/normalize"
	"uzrates/internal/source"
)

var tbcHrefCode = regexp.MustCompile(`/currency/([a-z]{3})/`)

// var so fixture tests can point it at a local server
var tbcbankURL = "https://tbcbank.uz/uz/currency/"

// TBC lists each currency as a card with three numbers in visual order:
// buy, then two values whose "Sotish"/"MB kursi" labels are swapped on
// some page revisions. The SellIsLarger rule resolves the ambiguity:
// sell is whichever of the two non-buy values is larger, the other is
// the central rate. Kept as an explicit, tested rule rather than an
// inline heuristic. NoCentralFallback keeps that guessed central value
// from being promoted to a missing buy or sell side.
func NewTBCBank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID:   "tbcbank",
		Norm: normalize.Rules{SellIsLarger: true, NoCentralFallback: true},
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			doc, err := source.FetchDocument(ctx, hc, tbcbankURL, nil)
			if err != nil {
				return nil, err
			}
			var out []source.Raw
			doc.Find(".currency__list-body .body-item").Each(func(_ int, item *goquery.Selection) {
				a := item.Find(".rates-title a").First()
				label := source.CleanText(a.Text())
				if m := tbcHrefCode.FindStringSubmatch(a.AttrOr("href", "")); m != nil {
					label = m[1] // iso code straight from the link
				}
				if label == "" {
					return
				}
				var nums []string
				item.Find(".rate").Each(func(_ int, r *goquery.Selection) {
					if t := source.CleanText(r.Text()); t != "" {
						nums = append(nums, t)
					}
				})
				if len(nums) < 3 {
					return
				}
				out = append(out, source.Raw{
					Currency: label,
					Buy:      nums[0],
					Sell:     nums[1],
					Central:  nums[2],
				})
			})
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: tbcbank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

package banks

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

var infinOfficeRe = regexp.MustCompile(`(?i)Exchange\s*office`)

// var so fixture tests can point it at a local server
var infinbankURL = "https://www.infinbank.com/en/private/exchange-rates/"

// Infinbank's table is transposed: currencies run across the header and
// each section ("Exchange office", ...) spans two body rows, buy then
// sell. The rowspan on the section title shifts the cell offsets: the
// buy row carries the title plus a "Buy" label before its values, the
// sell row only a "Sell" label.
func NewInfinbank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "infinbank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			doc, err := source.FetchDocument(ctx, hc, infinbankURL, nil)
			if err != nil {
				return nil, err
			}

			var codes []string
			doc.Find(".rates-table thead th .rates-flag .text").Each(func(_ int, s *goquery.Selection) {
				codes = append(codes, source.CleanText(s.Text()))
			})
			if len(codes) == 0 {
				return nil, fmt.Errorf("%w: infinbank header codes missing", source.ErrParse)
			}

			rows := doc.Find(".rates-table tbody tr")
			officeIdx := -1
			rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
				td0 := tr.Find("td").First()
				if td0.HasClass("rates-subtitle") && infinOfficeRe.MatchString(td0.Text()) {
					officeIdx = i
					return false
				}
				return true
			})
			if officeIdx < 0 || officeIdx+1 >= rows.Length() {
				return nil, fmt.Errorf("%w: infinbank exchange office rows missing", source.ErrParse)
			}

			buyCells := rows.Eq(officeIdx).Find("td")
			sellCells := rows.Eq(officeIdx + 1).Find("td")
			out := make([]source.Raw, 0, len(codes))
			for k, code := range codes {
				bi, si := k+2, k+1 // offsets differ because of the title rowspan
				if bi >= buyCells.Length() || si >= sellCells.Length() {
					break
				}
				out = append(out, source.Raw{
					Currency: code,
					Buy:      source.CleanText(buyCells.Eq(bi).Text()),
					Sell:     source.CleanText(sellCells.Eq(si).Text()),
				})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: infinbank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

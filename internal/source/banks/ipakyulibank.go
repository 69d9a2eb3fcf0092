package banks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"uzrates/internal/httpx"
	"uzrates/internal/normalize"
	"uzrates/internal/source"
)

// Ipak Yuli is a Nuxt site: the rates never appear in the static HTML,
// only inside the __NUXT_DATA__ payload, a flat array where objects
// hold indexes into the same array instead of values. Rates come in
// tiyin, hence the scale divisor.
const ipakyuliURL = "https://en.ipakyulibank.uz/physical"

const ipakyuliTab = "At the checkout"

func NewIpakYuliBank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID:   "ipakyulibank",
		Norm: normalize.Rules{ScaleDivisor: 100},
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			doc, err := source.FetchDocument(ctx, hc, ipakyuliURL, nil)
			if err != nil {
				return nil, err
			}
			payload := doc.Find("script#__NUXT_DATA__").First().Text()
			if payload == "" {
				return nil, fmt.Errorf("%w: ipakyulibank nuxt payload missing", source.ErrParse)
			}
			var flat []any
			if err := json.Unmarshal([]byte(payload), &flat); err != nil {
				return nil, fmt.Errorf("%w: ipakyulibank nuxt payload: %v", source.ErrParse, err)
			}
			out := nuxtRates(flat, ipakyuliTab)
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: ipakyulibank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

// nuxtRates pulls the rate rows for the named tab out of a flat Nuxt
// data array. Objects in the array store indexes, so every value has
// to be resolved through the array before use.
func nuxtRates(flat []any, tab string) []source.Raw {
	resolve := func(v any) any {
		idx, ok := v.(float64)
		if !ok {
			return v
		}
		i := int(idx)
		if i < 0 || i >= len(flat) {
			return nil
		}
		return flat[i]
	}
	str := func(v any) string {
		s, _ := resolve(v).(string)
		return s
	}

	var rows []source.Raw
	for _, el := range flat {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		title := str(obj["title"])
		if title == "" {
			title = str(obj["name"])
		}
		if !strings.EqualFold(strings.TrimSpace(title), tab) {
			continue
		}
		for _, v := range obj {
			list, ok := resolve(v).([]any)
			if !ok {
				continue
			}
			for _, li := range list {
				rate, ok := resolve(li).(map[string]any)
				if !ok {
					continue
				}
				cur := str(rate["currency"])
				if cur == "" {
					cur = str(rate["code"])
				}
				if cur == "" {
					continue
				}
				buy := nuxtNumber(resolve(rate["buy"]))
				sell := nuxtNumber(resolve(rate["sell"]))
				if buy == "" && sell == "" {
					continue
				}
				rows = append(rows, source.Raw{
					Currency: cur,
					Buy:      buy,
					Sell:     sell,
					Central:  nuxtNumber(resolve(rate["cb"])),
				})
			}
		}
	}
	return rows
}

func nuxtNumber(v any) string {
	switch t := v.(type) {
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", t), "0"), ".")
	case string:
		return source.CleanText(t)
	default:
		return ""
	}
}

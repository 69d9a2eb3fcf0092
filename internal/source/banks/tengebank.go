package banks

import (
	"context"
	"encoding/json"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Tengebank returns table data for several customer segments; the
// personal (cash desk) segment is the one reported. The API sits behind
// a DDoS-Guard wall, so a cookie from a prior browser visit is usually
// required. A var so fixture tests can point it at a local server.
var tengebankURL = "https://tengebank.uz/api/exchangerates/tables"

type tengebankResponse struct {
	Date     string          `json:"date"`
	Personal []tengebankTable `json:"personal"`
}

type tengebankTable struct {
	Date     string `json:"date"`
	Currency map[string]struct {
		Buy  json.Number `json:"buy"`
		Sell json.Number `json:"sell"`
	} `json:"currency"`
}

func NewTengebank(hc *httpx.Client, cookie string) source.Source {
	headers := map[string]string{}
	if cookie != "" {
		headers["Cookie"] = cookie
	}
	return &source.Func{
		ID: "tengebank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body tengebankResponse
			if err := source.GetJSON(ctx, hc, tengebankURL, headers, &body); err != nil {
				return nil, err
			}
			if len(body.Personal) == 0 {
				return nil, fmt.Errorf("%w: tengebank personal table missing", source.ErrParse)
			}
			table := body.Personal[0]
			out := make([]source.Raw, 0, len(table.Currency))
			for code, v := range table.Currency {
				out = append(out, source.Raw{
					Currency: code,
					Buy:      v.Buy.String(),
					Sell:     v.Sell.String(),
				})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: tengebank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

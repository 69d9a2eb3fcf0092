package banks

import (
	"context"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// var so fixture tests can point it at a local server
var hayotbankURL = "https://api.hayotbank.uz/api/v1/curr-exchange-rate/get-all"

type hayotbankResponse struct {
	Data []struct {
		Active bool `json:"active"`
		Title  struct {
			En string `json:"en"`
		} `json:"title"`
		Buy  string `json:"buy"`
		Sell string `json:"sell"`
		CBU  string `json:"cbu"`
	} `json:"data"`
}

func NewHayotbank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "hayotbank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body hayotbankResponse
			if err := source.GetJSON(ctx, hc, hayotbankURL, nil, &body); err != nil {
				return nil, err
			}
			var out []source.Raw
			for _, row := range body.Data {
				if !row.Active {
					continue
				}
				out = append(out, source.Raw{
					Currency: row.Title.En,
					Buy:      row.Buy,
					Sell:     row.Sell,
					Central:  row.CBU,
				})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: hayotbank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

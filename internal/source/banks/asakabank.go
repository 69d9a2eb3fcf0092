package banks

import (
	"context"
	"encoding/json"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

const asakabankURL = "https://back.asakabank.uz/core/v1/currency-list/"

type asakabankResponse struct {
	Results []struct {
		ShortName    string      `json:"short_name"`
		CurrencyType int         `json:"currency_type"`
		Purchase     json.Number `json:"purchase"`
		Sale         json.Number `json:"sale"`
		RateCB       json.Number `json:"rate_cb"`
	} `json:"results"`
}

func NewAsakabank(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "asakabank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body asakabankResponse
			if err := source.GetJSON(ctx, hc, asakabankURL, nil, &body); err != nil {
				return nil, err
			}
			var out []source.Raw
			for _, row := range body.Results {
				// currency_type 1 is the cash desk rate; other types
				// cover cards and transfers.
				if row.CurrencyType != 1 {
					continue
				}
				out = append(out, source.Raw{
					Currency: row.ShortName,
					Buy:      row.Purchase.String(),
					Sell:     row.Sale.String(),
					Central:  row.RateCB.String(),
				})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: asakabank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

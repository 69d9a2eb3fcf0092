package banks

import (
	"context"
	"encoding/json"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/normalize"
	"uzrates/internal/source"
)

// Hamkorbank publishes rates in tiyin (1/100 of a sum), so the values
// are scaled down during normalization.
const hamkorbankURL = "https://api-dbo.hamkorbank.uz/webflow/v1/exchanges"

type hamkorbankResponse struct {
	Data []struct {
		CurrencyChar string      `json:"currency_char"`
		BuyingRate   json.Number `json:"buying_rate"`
		SellingRate  json.Number `json:"selling_rate"`
		SBCourse     json.Number `json:"sb_course"`
	} `json:"data"`
}

func NewHamkorbank(hc *httpx.Client, cookie string) source.Source {
	headers := map[string]string{}
	if cookie != "" {
		headers["Cookie"] = cookie
	}
	return &source.Func{
		ID:   "hamkorbank",
		Norm: normalize.Rules{ScaleDivisor: 100},
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body hamkorbankResponse
			if err := source.GetJSON(ctx, hc, hamkorbankURL, headers, &body); err != nil {
				return nil, err
			}
			out := make([]source.Raw, 0, len(body.Data))
			for _, row := range body.Data {
				out = append(out, source.Raw{
					Currency: row.CurrencyChar,
					Buy:      row.BuyingRate.String(),
					Sell:     row.SellingRate.String(),
					Central:  row.SBCourse.String(),
				})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: hamkorbank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

package banks

import (
	"context"
	"encoding/json"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// BRB has a clean comparison API returning numeric buy/sell per code.
const brbURL = "https://brb.uz/api/currency/compare"

type brbResponse struct {
	Success   bool   `json:"success"`
	UpdatedAt string `json:"updated_at"`
	Data      []struct {
		Code string      `json:"code"`
		Buy  json.Number `json:"buy"`
		Sell json.Number `json:"sell"`
	} `json:"data"`
}

func NewBRB(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "brb",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body brbResponse
			if err := source.GetJSON(ctx, hc, brbURL, nil, &body); err != nil {
				return nil, err
			}
			if !body.Success {
				return nil, fmt.Errorf("%w: brb success=false", source.ErrParse)
			}
			out := make([]source.Raw, 0, len(body.Data))
			for _, d := range body.Data {
				if d.Code == "" {
					continue
				}
				out = append(out, source.Raw{
					Currency: d.Code,
					Buy:      d.Buy.String(),
					Sell:     d.Sell.String(),
				})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: brb", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

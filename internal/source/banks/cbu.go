package banks

import (
	"context"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// CBU is the Central Bank of Uzbekistan, included as a pseudo-provider.
// It publishes a single official rate per currency, so quotes built
// from it carry that rate on both sides and are tagged synthesized.
// The endpoint occasionally wants a PHPSESSID cookie to get past its
// front protection.
const cbuURL = "https://cbu.uz/uz/arkhiv-kursov-valyut/json/"

type cbuRate struct {
	Ccy     string `json:"Ccy"`
	Nominal string `json:"Nominal"`
	Rate    string `json:"Rate"`
	Diff    string `json:"Diff"`
	Date    string `json:"Date"`
}

func NewCBU(hc *httpx.Client, sessionID string) source.Source {
	headers := map[string]string{}
	if sessionID != "" {
		headers["Cookie"] = "PHPSESSID=" + sessionID
	}
	return &source.Func{
		ID: "cbu",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body []cbuRate
			if err := source.GetJSON(ctx, hc, cbuURL, headers, &body); err != nil {
				return nil, err
			}
			out := make([]source.Raw, 0, len(body))
			for _, r := range body {
				if r.Ccy == "" || r.Rate == "" {
					continue
				}
				out = append(out, source.Raw{Currency: r.Ccy, Central: r.Rate})
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: cbu", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

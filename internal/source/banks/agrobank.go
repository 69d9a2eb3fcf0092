package banks

import (
	"context"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Agrobank exposes its CMS page tree as JSON; rates sit in
// currency-rates blocks buried under sections. The endpoint sits behind
// a DDoS wall and may need a session cookie. A var so fixture tests can
// point it at a local server.
var agrobankURL = "https://agrobank.uz/api/v1/?action=pages&code=uz%2Fperson%2Fexchange_rates"

type agrobankResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Sections []struct {
			Blocks []struct {
				Type    string `json:"type"`
				Content struct {
					Items []struct {
						Alpha3 string `json:"alpha3"`
						Buy    string `json:"buy"`
						Rate   string `json:"rate"`
						Sale   string `json:"sale"`
					} `json:"items"`
				} `json:"content"`
			} `json:"blocks"`
		} `json:"sections"`
	} `json:"data"`
}

func NewAgrobank(hc *httpx.Client, cookie string) source.Source {
	headers := map[string]string{}
	if cookie != "" {
		headers["Cookie"] = cookie
	}
	return &source.Func{
		ID: "agrobank",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body agrobankResponse
			if err := source.GetJSON(ctx, hc, agrobankURL, headers, &body); err != nil {
				return nil, err
			}
			if !body.Success {
				return nil, fmt.Errorf("%w: agrobank success=false", source.ErrParse)
			}
			var out []source.Raw
			for _, sec := range body.Data.Sections {
				for _, blk := range sec.Blocks {
					if blk.Type != "currency-rates" {
						continue
					}
					for _, it := range blk.Content.Items {
						if it.Alpha3 == "" {
							continue
						}
						out = append(out, source.Raw{
							Currency: it.Alpha3,
							Buy:      it.Buy,
							Sell:     it.Sale,
							Central:  it.Rate,
						})
					}
				}
			}
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: agrobank", source.ErrEmpty)
			}
			return out, nil
		},
	}
}

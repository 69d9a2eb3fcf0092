package banks

import (
	"context"
	"fmt"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// UzRVB is the Uzbek Republican Currency Exchange call-auction feed.
// Like CBU it is a reference pseudo-provider: one market-clearing price
// per auction, no separate buy/sell sides.
const uzrvbURL = "https://uzrvb.uz/GetCallAuctionInfo.php"

type uzrvbResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Day       string `json:"day"`
		Symbol    string `json:"symbol"`
		Price     string `json:"price"`
		Direction bool   `json:"direction"`
		Change    string `json:"change"`
	} `json:"data"`
}

func NewUzRVB(hc *httpx.Client) source.Source {
	return &source.Func{
		ID: "uzrvb",
		FetchFunc: func(ctx context.Context) ([]source.Raw, error) {
			var body uzrvbResponse
			if err := source.GetJSON(ctx, hc, uzrvbURL, nil, &body); err != nil {
				return nil, err
			}
			if body.Data.Symbol == "" || body.Data.Price == "" {
				return nil, fmt.Errorf("%w: uzrvb auction info", source.ErrEmpty)
			}
			return []source.Raw{{Currency: body.Data.Symbol, Central: body.Data.Price}}, nil
		},
	}
}

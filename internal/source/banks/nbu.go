package banks

import (
	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// NBU renders its retail rates as a swiper carousel, one slide per
// currency, with buy and sell stacked in two direction wrappers.
// There is no central-bank column on this page.
func NewNBU(hc *httpx.Client) source.Source {
	return source.NewHTML(source.HTMLConfig{
		BankID: "nbu",
		URL:    "https://nbu.uz/jismoniy-shaxslar-valyutalar-kursi",
		Row:    ".swiper-wrapper .swiper-slide",
		Label: []source.Cell{
			source.Sel(".navbar_22_top-currency-heading"),
		},
		Buy: []source.Cell{
			source.Sel(".navbar_22_top-currency-direction-wrapper:nth-child(1) .navbar_22_top-currency-text"),
			source.SelN(".navbar_22_top-currency-text", 0),
		},
		Sell: []source.Cell{
			source.Sel(".navbar_22_top-currency-direction-wrapper:nth-child(2) .navbar_22_top-currency-text"),
			source.SelN(".navbar_22_top-currency-text", 1),
		},
	}, hc)
}

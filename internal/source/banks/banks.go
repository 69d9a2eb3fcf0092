// Package banks holds one adapter per external provider. Each file
// documents that provider's endpoint, markup quirks, scale factor and
// side tie-break rule; the actual fetching is done by the shared engines
// in internal/source, so a bank is mostly configuration.
package banks

import (
	"time"

	"uzrates/internal/httpx"
	"uzrates/internal/source"
)

// Options carries the per-deployment knobs adapters need: session
// cookies for banks behind DDoS walls, the chromium binary for the
// browser engine, and which providers to leave out.
type Options struct {
	CBUSessionID     string // PHPSESSID for cbu.uz, optional
	AgrobankCookie   string // full Cookie header for agrobank.uz, optional
	TengebankCookie  string // __ddg* cookies for tengebank.uz, optional
	HamkorbankCookie string
	ChromiumPath     string
	BrowserTimeout   time.Duration
	Disabled         []string
}

func (o Options) disabled(bank string) bool {
	for _, d := range o.Disabled {
		if d == bank {
			return true
		}
	}
	return false
}

// All builds every known adapter minus the disabled ones.
func All(hc *httpx.Client, o Options) []source.Source {
	all := []source.Source{
		NewCBU(hc, o.CBUSessionID),
		NewUzRVB(hc),
		NewAloqabank(hc),
		NewAnorbank(hc),
		NewNBU(hc),
		NewKDB(hc),
		NewPoytaxtbank(hc),
		NewDavrbank(hc),
		NewGarantbank(hc),
		NewOctobank(hc),
		NewMKBank(hc),
		NewInfinbank(hc),
		NewTBCBank(hc),
		NewIpotekabank(hc),
		NewAgrobank(hc, o.AgrobankCookie),
		NewBRB(hc),
		NewTengebank(hc, o.TengebankCookie),
		NewHayotbank(hc),
		NewHamkorbank(hc, o.HamkorbankCookie),
		NewAsakabank(hc),
		NewIpakYuliBank(hc),
		NewSQB(o.ChromiumPath, o.BrowserTimeout),
		NewXB(o.ChromiumPath, o.BrowserTimeout),
	}
	out := make([]source.Source, 0, len(all))
	for _, s := range all {
		if o.disabled(s.Bank()) {
			continue
		}
		out = append(out, s)
	}
	return out
}

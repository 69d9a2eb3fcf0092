package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"uzrates/internal/httpx"
	"uzrates/internal/normalize"
)

// Cell is one lookup strategy for a value inside a quote row. Bank
// markup drifts between page revisions, so every field carries an
// ordered list of strategies instead of a single selector.
type Cell struct {
	Selector string // CSS selector relative to the row; wins over Index
	Nth      int    // which selector match to take (0 = first)
	Index    int    // positional <td> index, used when Selector is empty
}

// Sel, SelN and Col are shorthands for building strategy lists.
func Sel(s string) Cell         { return Cell{Selector: s, Index: -1} }
func SelN(s string, n int) Cell { return Cell{Selector: s, Nth: n, Index: -1} }
func Col(i int) Cell            { return Cell{Index: i} }

// HTMLConfig describes a selector-driven scraping adapter. One value of
// this type per bank replaces what used to be a near-identical code body.
type HTMLConfig struct {
	BankID  string
	URL     string
	Headers map[string]string

	Row      string // selector matching one quote row
	SkipRows int    // leading rows to skip (headers, subtitles)
	MinCells int    // rows with fewer <td> cells are skipped
	Label    []Cell
	Buy      []Cell
	Sell     []Cell
	Central  []Cell

	Norm normalize.Rules
}

// HTML is the scraping engine: GET, parse, extract per config.
type HTML struct {
	cfg    HTMLConfig
	client *httpx.Client
}

func NewHTML(cfg HTMLConfig, hc *httpx.Client) *HTML {
	return &HTML{cfg: cfg, client: hc}
}

func (h *HTML) Bank() string           { return h.cfg.BankID }
func (h *HTML) Rules() normalize.Rules { return h.cfg.Norm }

func (h *HTML) Fetch(ctx context.Context) ([]Raw, error) {
	doc, err := FetchDocument(ctx, h.client, h.cfg.URL, h.cfg.Headers)
	if err != nil {
		return nil, err
	}
	return h.Extract(doc)
}

// Extract runs the configured selectors against an already-parsed
// document. Split out so fixture tests can feed captured pages directly.
func (h *HTML) Extract(doc *goquery.Document) ([]Raw, error) {
	var out []Raw
	doc.Find(h.cfg.Row).Each(func(i int, row *goquery.Selection) {
		if i < h.cfg.SkipRows {
			return
		}
		if h.cfg.MinCells > 0 && row.Find("td").Length() < h.cfg.MinCells {
			return
		}
		label := pick(row, h.cfg.Label)
		if label == "" {
			return
		}
		out = append(out, Raw{
			Currency: label,
			Buy:      pick(row, h.cfg.Buy),
			Sell:     pick(row, h.cfg.Sell),
			Central:  pick(row, h.cfg.Central),
		})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrEmpty, h.cfg.BankID, h.cfg.Row)
	}
	return out, nil
}

// pick tries each strategy in order and returns the first non-empty text.
func pick(row *goquery.Selection, cells []Cell) string {
	for _, c := range cells {
		var t string
		if c.Selector != "" {
			t = CleanText(row.Find(c.Selector).Eq(c.Nth).Text())
		} else if c.Index >= 0 {
			t = CleanText(row.Find("td").Eq(c.Index).Text())
		}
		if t != "" {
			return t
		}
	}
	return ""
}

// FetchDocument GETs a page and parses it. Shared by the engine and the
// bespoke adapters whose markup does not fit the row/cell model.
func FetchDocument(ctx context.Context, hc *httpx.Client, url string, headers map[string]string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := hc.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s -> %d", ErrStatus, url, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// CleanText collapses whitespace, replacing non-breaking spaces the way
// bank pages love to sprinkle them.
func CleanText(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, " ", " ")), " ")
}

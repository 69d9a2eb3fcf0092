package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"uzrates/internal/httpx"
	"uzrates/internal/normalize"
)

// Func adapts a bespoke fetch function to the Source interface. JSON
// providers and the structurally odd HTML ones (split cells, transposed
// tables, embedded payloads) are built this way on top of GetJSON or
// FetchDocument.
type Func struct {
	ID        string
	Norm      normalize.Rules
	FetchFunc func(ctx context.Context) ([]Raw, error)
}

func (f *Func) Bank() string           { return f.ID }
func (f *Func) Rules() normalize.Rules { return f.Norm }
func (f *Func) Fetch(ctx context.Context) ([]Raw, error) {
	return f.FetchFunc(ctx)
}

// GetJSON fetches url and decodes the body into v. Session cookies and
// other per-provider headers go into headers.
func GetJSON(ctx context.Context, hc *httpx.Client, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := hc.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return fmt.Errorf("%w: GET %s -> %d: %s", ErrStatus, url, resp.StatusCode, string(b))
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrParse, url, err)
	}
	return nil
}

// Package source defines the contract every bank adapter implements and
// the shared fetch engines (HTML, JSON, headless browser) they are built
// from. Per-bank behavior lives in configuration, not code: see banks/.
package source

import (
	"context"
	"errors"

	"uzrates/internal/normalize"
)

// Raw is one provider row before normalization. It never crosses the
// orchestrator boundary undecoded: the pipeline turns it into a
// canonical quote or drops it.
type Raw struct {
	Currency string `json:"currency"` // free-text name or code as published
	Buy      string `json:"buy"`
	Sell     string `json:"sell"`
	Central  string `json:"central"` // central-bank reference column, if present
}

// Source fetches zero or more raw rows from exactly one external
// provider. Implementations do network I/O only; they never touch the
// store.
type Source interface {
	// Bank is the stable provider identifier, e.g. "aloqabank".
	Bank() string
	Fetch(ctx context.Context) ([]Raw, error)
	// Rules is the normalization configuration for this provider
	// (scale factor, tie-break rule). Documented per adapter.
	Rules() normalize.Rules
}

// Error kinds surfaced distinctly by adapters. Transport-level failures
// (DNS, refused, deadline) pass through untyped and are classified as
// network errors at the orchestrator boundary.
var (
	// ErrStatus: the endpoint answered with a non-2xx status.
	ErrStatus = errors.New("unexpected http status")
	// ErrParse: the expected element or field was absent.
	ErrParse = errors.New("structural parse failure")
	// ErrEmpty: fetch succeeded but produced zero recognizable rows.
	// Soft failure: logged, not escalated, not retried.
	ErrEmpty = errors.New("no rows")
)

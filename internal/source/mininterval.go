package source

import (
	"context"
	"sync"
	"time"

	"uzrates/internal/normalize"
)

// MinInterval wraps a source and enforces a minimum time between fetches.
// Scheduled runs are minutes apart, but back-to-back manual triggers
// should not hammer a bank's site and trip its anti-bot defenses.
// Concurrent calls wait until the interval has elapsed since the last
// call, or return early if the context is canceled.
type MinInterval struct {
	S        Source
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Bank() string           { return m.S.Bank() }
func (m *MinInterval) Rules() normalize.Rules { return m.S.Rules() }

func (m *MinInterval) Fetch(ctx context.Context) ([]Raw, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	rows, err := m.S.Fetch(ctx)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return rows, err
}

// Timeout passes through the wrapped source's deadline override.
func (m *MinInterval) Timeout() time.Duration {
	if t, ok := m.S.(interface{ Timeout() time.Duration }); ok {
		return t.Timeout()
	}
	return 0
}

// Package pipeline orchestrates one refresh cycle: fan out over the
// registered sources with bounded concurrency, normalize what came
// back, and once every source has finished commit the surviving quotes
// to the store in a single pass. A failing source never affects any
// other source's outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"uzrates/internal/normalize"
	"uzrates/internal/rates"
	"uzrates/internal/source"
	"uzrates/internal/store"
)

type Config struct {
	MaxInFlight int           // concurrent fetches; default 6
	Timeout     time.Duration // per-attempt deadline for HTTP sources; default 15s
	Attempts    int           // fetch attempts per source per run; default 2
	Backoff     time.Duration // delay before the first retry, doubled after; default 2s
	BreakAfter  int           // consecutive failed runs before a source is benched; default 3
	Cooldown    time.Duration // how long a benched source stays benched; default 30m
	Currencies  []string      // whitelist; default rates.DefaultCurrencies
	Logger      *log.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 6
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Attempts <= 0 {
		c.Attempts = 2
	}
	if c.Backoff <= 0 {
		c.Backoff = 2 * time.Second
	}
	if c.BreakAfter <= 0 {
		c.BreakAfter = 3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Minute
	}
	if len(c.Currencies) == 0 {
		c.Currencies = rates.DefaultCurrencies
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Result is one source's outcome for one run.
type Result struct {
	Bank    string
	Stored  int
	Dropped int  // rows rejected during normalization
	Benched bool // skipped because the source's breaker is open
	Err     error
}

type breaker struct {
	failures  int
	openUntil time.Time
}

type Pipeline struct {
	reg *source.Registry
	st  *store.Store
	cfg Config

	mu       sync.Mutex
	breakers map[string]*breaker

	// test seams
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(reg *source.Registry, st *store.Store, cfg Config) *Pipeline {
	return &Pipeline{
		reg:      reg,
		st:       st,
		cfg:      cfg.withDefaults(),
		breakers: make(map[string]*breaker),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// outcome holds one source's fetch-phase output until every source has
// finished and the commit pass can apply it to the store.
type outcome struct {
	res    Result
	quotes []rates.Quote
	dur    time.Duration
}

// Run refreshes every registered source and returns one result per
// source, in registry order. It blocks until all sources finish or ctx
// is canceled. The store is not touched while fetches are in flight:
// quotes are collected first and committed in one pass at the end.
func (p *Pipeline) Run(ctx context.Context) []Result {
	srcs := p.reg.All()
	outs := make([]outcome, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxInFlight)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			outs[i] = p.collect(ctx, src)
			return nil
		})
	}
	g.Wait()

	results := make([]Result, len(srcs))
	for i := range outs {
		o := &outs[i]
		if !o.res.Benched {
			p.commit(&o.res, o.quotes)
			p.record(o.res.Bank, o.res.Err)
			p.log(o.res, o.dur)
		}
		results[i] = o.res
	}
	return results
}

// RunOne refreshes a single source by bank id, bypassing its breaker.
func (p *Pipeline) RunOne(ctx context.Context, bank string) (Result, error) {
	src, ok := p.reg.Get(bank)
	if !ok {
		return Result{}, fmt.Errorf("unknown bank %q", bank)
	}
	o := p.gather(ctx, src)
	p.commit(&o.res, o.quotes)
	p.log(o.res, 0)
	return o.res, o.res.Err
}

func (p *Pipeline) collect(ctx context.Context, src source.Source) outcome {
	bank := src.Bank()
	if until, open := p.benched(bank); open {
		p.cfg.Logger.Printf("fetch %s: benched until %s", bank, until.Format(time.RFC3339))
		return outcome{res: Result{Bank: bank, Benched: true}}
	}

	start := p.now()
	o := p.gather(ctx, src)
	o.dur = p.now().Sub(start)
	return o
}

// gather fetches and normalizes one source without touching the store.
func (p *Pipeline) gather(ctx context.Context, src source.Source) outcome {
	o := outcome{res: Result{Bank: src.Bank()}}

	rows, err := p.fetch(ctx, src)
	if err != nil {
		o.res.Err = err
		return o
	}

	now := p.now()
	quotes := make([]rates.Quote, 0, len(rows))
	for _, row := range rows {
		q, err := normalize.Quote(src.Bank(), row.Currency, row.Buy, row.Sell, row.Central, src.Rules(), p.cfg.Currencies, now)
		if err != nil {
			o.res.Dropped++
			if !errors.Is(err, normalize.ErrUnknownCurrency) && !errors.Is(err, normalize.ErrEmptyQuote) {
				p.cfg.Logger.Printf("fetch %s: drop row %q: %v", src.Bank(), row.Currency, err)
			}
			continue
		}
		quotes = append(quotes, q)
	}
	if len(quotes) == 0 {
		o.res.Err = fmt.Errorf("%w: %s after normalization", source.ErrEmpty, src.Bank())
		return o
	}
	o.quotes = quotes
	return o
}

// commit applies a source's surviving quotes to the store.
func (p *Pipeline) commit(res *Result, quotes []rates.Quote) {
	if res.Err != nil {
		return
	}
	for _, q := range quotes {
		if err := p.st.Upsert(q); err != nil {
			res.Err = err
			return
		}
		res.Stored++
	}
}

// fetch runs the source with a per-attempt deadline, retrying transient
// failures with doubling backoff. Empty results are not retried: the
// endpoint answered, it simply had nothing to say.
func (p *Pipeline) fetch(ctx context.Context, src source.Source) ([]source.Raw, error) {
	timeout := p.cfg.Timeout
	// wrappers report 0 when the underlying source has no override
	if td, ok := src.(interface{ Timeout() time.Duration }); ok && td.Timeout() > 0 {
		timeout = td.Timeout()
	}

	backoff := p.cfg.Backoff
	var lastErr error
	for attempt := 0; attempt < p.cfg.Attempts; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}
		rows, err := p.fetchOnce(ctx, src, timeout)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if errors.Is(err, source.ErrEmpty) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (p *Pipeline) fetchOnce(ctx context.Context, src source.Source, timeout time.Duration) (rows []source.Raw, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", src.Bank(), r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return src.Fetch(ctx)
}

func (p *Pipeline) benched(bank string) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.breakers[bank]
	if b == nil || p.now().After(b.openUntil) {
		return time.Time{}, false
	}
	return b.openUntil, true
}

func (p *Pipeline) record(bank string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.breakers[bank]
	if b == nil {
		b = &breaker{}
		p.breakers[bank] = b
	}
	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= p.cfg.BreakAfter {
		b.openUntil = p.now().Add(p.cfg.Cooldown)
		b.failures = 0
	}
}

func (p *Pipeline) log(res Result, dur time.Duration) {
	if res.Err != nil {
		p.cfg.Logger.Printf("fetch %s: %s error: %v", res.Bank, classify(res.Err), res.Err)
		return
	}
	p.cfg.Logger.Printf("fetch %s: stored=%d dropped=%d dur=%s", res.Bank, res.Stored, res.Dropped, dur.Round(time.Millisecond))
}

// classify buckets an error for the per-source log line.
func classify(err error) string {
	switch {
	case errors.Is(err, source.ErrEmpty):
		return "empty"
	case errors.Is(err, source.ErrStatus):
		return "status"
	case errors.Is(err, source.ErrParse), errors.Is(err, normalize.ErrBadNumber):
		return "parse"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "network"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

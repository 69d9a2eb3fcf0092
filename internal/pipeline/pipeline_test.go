package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"uzrates/internal/normalize"
	"uzrates/internal/rates"
	"uzrates/internal/source"
	"uzrates/internal/store"
)

type fakeSource struct {
	id    string
	rules normalize.Rules
	calls int
	fn    func(ctx context.Context) ([]source.Raw, error)
}

func (f *fakeSource) Bank() string           { return f.id }
func (f *fakeSource) Rules() normalize.Rules { return f.rules }
func (f *fakeSource) Fetch(ctx context.Context) ([]source.Raw, error) {
	f.calls++
	return f.fn(ctx)
}

func usdRow() []source.Raw {
	return []source.Raw{{Currency: "USD", Buy: "12 190", Sell: "12 320"}}
}

func newPipeline(t *testing.T, cfg Config, srcs ...source.Source) (*Pipeline, *store.Store) {
	t.Helper()
	reg := source.NewRegistry()
	for _, s := range srcs {
		reg.MustRegister(s)
	}
	cfg.Logger = log.New(io.Discard, "", 0)
	st := store.NewMemory()
	p := New(reg, st, cfg)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p, st
}

func TestRun_FailureIsolation(t *testing.T) {
	good := &fakeSource{id: "good", fn: func(context.Context) ([]source.Raw, error) { return usdRow(), nil }}
	bad := &fakeSource{id: "bad", fn: func(context.Context) ([]source.Raw, error) {
		return nil, fmt.Errorf("%w: 503", source.ErrStatus)
	}}
	boom := &fakeSource{id: "boom", fn: func(context.Context) ([]source.Raw, error) { panic("nil map write") }}

	p, st := newPipeline(t, Config{}, good, bad, boom)
	results := p.Run(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	byBank := map[string]Result{}
	for _, r := range results {
		byBank[r.Bank] = r
	}
	if byBank["good"].Err != nil || byBank["good"].Stored != 1 {
		t.Fatalf("good: %+v", byBank["good"])
	}
	if !errors.Is(byBank["bad"].Err, source.ErrStatus) {
		t.Fatalf("bad: want ErrStatus, got %v", byBank["bad"].Err)
	}
	if byBank["boom"].Err == nil {
		t.Fatal("boom: panic should surface as an error")
	}
	if _, ok := st.Get(rates.Key{Bank: "good", Currency: "USD"}); !ok {
		t.Fatal("good quote missing from store")
	}
}

func TestRun_CommitsAfterAllFetches(t *testing.T) {
	release := make(chan struct{})
	fetched := make(chan struct{})
	fast := &fakeSource{id: "fast", fn: func(context.Context) ([]source.Raw, error) {
		defer close(fetched)
		return usdRow(), nil
	}}
	slow := &fakeSource{id: "slow", fn: func(ctx context.Context) ([]source.Raw, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return []source.Raw{{Currency: "EUR", Buy: "12 780", Sell: "12 890"}}, nil
	}}

	p, st := newPipeline(t, Config{Timeout: time.Minute}, fast, slow)
	done := make(chan []Result, 1)
	go func() { done <- p.Run(context.Background()) }()

	<-fetched
	for i := 0; i < 20; i++ {
		if st.Len() != 0 {
			t.Fatal("store written while a source was still in flight")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	results := <-done
	for _, r := range results {
		if r.Err != nil || r.Stored != 1 {
			t.Fatalf("%s: %+v", r.Bank, r)
		}
	}
	if st.Len() != 2 {
		t.Fatalf("Len = %d, want 2", st.Len())
	}
}

func TestRun_DropsUnknownAndEmptyRows(t *testing.T) {
	src := &fakeSource{id: "mixed", fn: func(context.Context) ([]source.Raw, error) {
		return []source.Raw{
			{Currency: "USD", Buy: "12 190", Sell: "12 320"},
			{Currency: "Oltin quyma", Buy: "980000"},
			{Currency: "EUR"},
		}, nil
	}}
	p, st := newPipeline(t, Config{}, src)
	res := p.Run(context.Background())[0]
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Stored != 1 || res.Dropped != 2 {
		t.Fatalf("stored=%d dropped=%d, want 1/2", res.Stored, res.Dropped)
	}
	if st.Len() != 1 {
		t.Fatalf("store len = %d, want 1", st.Len())
	}
}

func TestRun_AllRowsDroppedIsEmpty(t *testing.T) {
	src := &fakeSource{id: "junk", fn: func(context.Context) ([]source.Raw, error) {
		return []source.Raw{{Currency: "Oltin quyma", Buy: "980000"}}, nil
	}}
	p, _ := newPipeline(t, Config{}, src)
	res := p.Run(context.Background())[0]
	if !errors.Is(res.Err, source.ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", res.Err)
	}
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	src := &fakeSource{id: "flaky"}
	src.fn = func(context.Context) ([]source.Raw, error) {
		if src.calls == 1 {
			return nil, fmt.Errorf("%w: 502", source.ErrStatus)
		}
		return usdRow(), nil
	}
	p, _ := newPipeline(t, Config{Attempts: 2}, src)
	res := p.Run(context.Background())[0]
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if src.calls != 2 {
		t.Fatalf("calls = %d, want 2", src.calls)
	}
}

func TestFetch_NoRetryOnEmpty(t *testing.T) {
	src := &fakeSource{id: "hollow"}
	src.fn = func(context.Context) ([]source.Raw, error) {
		return nil, fmt.Errorf("%w: hollow", source.ErrEmpty)
	}
	p, _ := newPipeline(t, Config{Attempts: 3}, src)
	res := p.Run(context.Background())[0]
	if !errors.Is(res.Err, source.ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", res.Err)
	}
	if src.calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on empty)", src.calls)
	}
}

func TestFetch_TimeoutOverride(t *testing.T) {
	slow := source.NewBrowser(source.BrowserConfig{BankID: "slow", Timeout: 5 * time.Minute})
	p, _ := newPipeline(t, Config{Timeout: time.Second}, slow)
	var got time.Duration
	if td, ok := p.reg.All()[0].(interface{ Timeout() time.Duration }); ok {
		got = td.Timeout()
	}
	if got != 5*time.Minute {
		t.Fatalf("timeout override = %v, want 5m", got)
	}
}

func TestFetch_DeadlineApplies(t *testing.T) {
	src := &fakeSource{id: "stuck"}
	src.fn = func(ctx context.Context) ([]source.Raw, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	p, _ := newPipeline(t, Config{Timeout: 20 * time.Millisecond, Attempts: 1}, src)
	res := p.Run(context.Background())[0]
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", res.Err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	src := &fakeSource{id: "stable", fn: func(context.Context) ([]source.Raw, error) { return usdRow(), nil }}
	p, st := newPipeline(t, Config{}, src)
	p.Run(context.Background())
	p.Run(context.Background())
	if st.Len() != 1 {
		t.Fatalf("store len = %d after two runs, want 1", st.Len())
	}
}

func TestRun_OverwritesManualOverride(t *testing.T) {
	src := &fakeSource{id: "nbu", fn: func(context.Context) ([]source.Raw, error) { return usdRow(), nil }}
	p, st := newPipeline(t, Config{}, src)

	override := rates.Quote{Bank: "nbu", Currency: "USD", Sell: rates.DS("99999"), ObservedAt: time.Now()}
	if err := st.Upsert(override); err != nil {
		t.Fatal(err)
	}

	p.Run(context.Background())
	got, _ := st.Get(rates.Key{Bank: "nbu", Currency: "USD"})
	if got.Sell.Decimal.String() != "12320" {
		t.Fatalf("sell = %s, fetch should replace the override", got.Sell.Decimal)
	}
}

func TestBreaker_BenchesAfterConsecutiveFailures(t *testing.T) {
	src := &fakeSource{id: "down"}
	src.fn = func(context.Context) ([]source.Raw, error) {
		return nil, fmt.Errorf("%w: 503", source.ErrStatus)
	}
	p, _ := newPipeline(t, Config{Attempts: 1, BreakAfter: 3, Cooldown: 30 * time.Minute}, src)

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if res := p.Run(context.Background())[0]; res.Benched {
			t.Fatalf("run %d: benched too early", i)
		}
	}
	if res := p.Run(context.Background())[0]; !res.Benched {
		t.Fatal("4th run: expected benched")
	}
	if src.calls != 3 {
		t.Fatalf("calls = %d, want 3", src.calls)
	}

	// cooldown elapses, the source gets another chance
	clock = clock.Add(31 * time.Minute)
	src.fn = func(context.Context) ([]source.Raw, error) { return usdRow(), nil }
	res := p.Run(context.Background())[0]
	if res.Benched || res.Err != nil {
		t.Fatalf("after cooldown: %+v", res)
	}

	// success closed the breaker for good
	if res := p.Run(context.Background())[0]; res.Benched {
		t.Fatal("breaker should be closed after a success")
	}
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	src := &fakeSource{id: "wobbly"}
	fail := true
	src.fn = func(context.Context) ([]source.Raw, error) {
		if fail {
			return nil, fmt.Errorf("%w: 500", source.ErrStatus)
		}
		return usdRow(), nil
	}
	p, _ := newPipeline(t, Config{Attempts: 1, BreakAfter: 3}, src)

	for i := 0; i < 6; i++ {
		fail = i%2 == 0
		if res := p.Run(context.Background())[0]; res.Benched {
			t.Fatalf("run %d: benched despite interleaved successes", i)
		}
	}
}

func TestRunOne_UnknownBank(t *testing.T) {
	p, _ := newPipeline(t, Config{})
	if _, err := p.RunOne(context.Background(), "nosuch"); err == nil {
		t.Fatal("expected error for unknown bank")
	}
}

package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestParseDecimal_LocaleVariants(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12 295,00", "12295"},
		{"12,295.00", "12295"},
		{"12295", "12295"},
		{"12.295,00", "12295"},
		{"12 890,00*", "12890"},
		{"12219.08", "12219.08"},
		{"12 375,50", "12375.5"},
		{"1221908", "1221908"},
		{"12 295 so'm", "12295"},
	}
	for _, c := range cases {
		d, err := ParseDecimal(c.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", c.in, err)
		}
		if d.String() != c.want {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", c.in, d.String(), c.want)
		}
	}
}

func TestParseDecimal_SameCanonicalValue(t *testing.T) {
	// All known locale spellings of the same number normalize identically.
	ref, err := ParseDecimal("12295.00")
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{"12 295,00", "12,295.00", "12295"} {
		d, err := ParseDecimal(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if !d.Equal(ref) {
			t.Fatalf("%q = %s, want %s", in, d, ref)
		}
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	for _, in := range []string{"", "-", "n/a", "N/A", "abc", "1,2,3", "—"} {
		if _, err := ParseDecimal(in); !errors.Is(err, ErrBadNumber) {
			t.Fatalf("ParseDecimal(%q): want ErrBadNumber, got %v", in, err)
		}
	}
}

func TestDetectCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"USD", "USD", true},
		{"usd", "USD", true},
		{"Evro (EUR)", "EUR", true},
		{"AQSh dollari (USD*)", "USD", true},
		{"AQSH dollari", "USD", true},
		{"Rossiya rubli", "RUB", true},
		{"Yevro", "EUR", true},
		{"Евро", "EUR", true},
		{"840", "USD", true},
		{"GRB", "GBP", true},
		{"Qozog'iston tengesi", "KZT", true},
		{"Evro, EUR", "EUR", true},
		{"", "", false},
		{"oltin", "", false},
	}
	for _, c := range cases {
		got, ok := DetectCurrency(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("DetectCurrency(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestQuote_EndToEnd(t *testing.T) {
	now := time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC)
	allowed := []string{"USD", "EUR", "RUB"}

	q, err := Quote("aloqabank", "Evro (EUR)", "12 780,00*", "12 890,00*", "", Rules{}, allowed, now)
	if err != nil {
		t.Fatal(err)
	}
	if q.Currency != "EUR" || q.Buy.Decimal.String() != "12780" || q.Sell.Decimal.String() != "12890" {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Synthesized {
		t.Fatal("directly observed quote must not be tagged synthesized")
	}
	if !q.ObservedAt.Equal(now) {
		t.Fatalf("observedAt = %v", q.ObservedAt)
	}
}

func TestQuote_MinorUnitScaling(t *testing.T) {
	now := time.Now()
	q, err := Quote("hamkorbank", "USD", "1221908", "1228000", "", Rules{ScaleDivisor: 100}, []string{"USD"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if q.Buy.Decimal.String() != "12219.08" {
		t.Fatalf("buy = %s, want 12219.08", q.Buy.Decimal)
	}
	if q.Sell.Decimal.String() != "12280" {
		t.Fatalf("sell = %s, want 12280", q.Sell.Decimal)
	}
}

func TestQuote_SellIsLargerTieBreak(t *testing.T) {
	// TBC publishes [buy, x, y] where sell/central labels are unreliable:
	// sell is the larger of the two remaining values.
	now := time.Now()
	q, err := Quote("tbcbank", "USD", "12100", "12123.38", "12190", Rules{SellIsLarger: true}, []string{"USD"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if q.Sell.Decimal.String() != "12190" {
		t.Fatalf("sell = %s, want the larger candidate 12190", q.Sell.Decimal)
	}
	if q.Synthesized {
		t.Fatalf("tie-break must not tag synthesized: %+v", q)
	}
}

func TestQuote_CentralFallbackTagged(t *testing.T) {
	now := time.Now()
	q, err := Quote("cbu", "USD", "", "", "12171.03", Rules{}, []string{"USD"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Synthesized {
		t.Fatal("central-rate fallback must be tagged synthesized")
	}
	if q.Buy.Decimal.String() != "12171.03" || q.Sell.Decimal.String() != "12171.03" {
		t.Fatalf("unexpected fallback values: %+v", q)
	}
}

func TestQuote_NoCentralFallback(t *testing.T) {
	now := time.Now()
	r := Rules{NoCentralFallback: true}

	if _, err := Quote("tbcbank", "USD", "", "", "12171.03", r, []string{"USD"}, now); !errors.Is(err, ErrEmptyQuote) {
		t.Fatalf("central-only row must be empty, got %v", err)
	}

	q, err := Quote("tbcbank", "USD", "12100", "", "12171.03", r, []string{"USD"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if q.Sell.Valid || q.Synthesized {
		t.Fatalf("missing side must stay missing: %+v", q)
	}
}

func TestQuote_DropsUnknownAndEmpty(t *testing.T) {
	now := time.Now()
	allowed := []string{"USD", "EUR", "RUB"}

	if _, err := Quote("x", "oltin tanga", "1", "2", "", Rules{}, allowed, now); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("want ErrUnknownCurrency, got %v", err)
	}
	// whitelisted set excludes GBP even though it is detectable
	if _, err := Quote("x", "GBP", "1", "2", "", Rules{}, allowed, now); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("want ErrUnknownCurrency for non-whitelisted, got %v", err)
	}
	if _, err := Quote("x", "USD", "", "", "", Rules{}, allowed, now); !errors.Is(err, ErrEmptyQuote) {
		t.Fatalf("want ErrEmptyQuote, got %v", err)
	}
	// zero placeholders count as absent
	if _, err := Quote("x", "USD", "0", "0,00", "", Rules{}, allowed, now); !errors.Is(err, ErrEmptyQuote) {
		t.Fatalf("want ErrEmptyQuote for zero rows, got %v", err)
	}
}

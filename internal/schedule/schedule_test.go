package schedule

import (
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"08:00", "0 8 * * *"},
		{"09:10", "10 9 * * *"},
		{"16:10", "10 16 * * *"},
		{" 11:11 ", "11 11 * * *"},
	}
	for _, c := range cases {
		got, err := dailySpec(c.in)
		if err != nil {
			t.Fatalf("dailySpec(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("dailySpec(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDailySpec_Rejects(t *testing.T) {
	for _, in := range []string{"", "8", "25:00", "08:61", "aa:bb", "08.30"} {
		if _, err := dailySpec(in); err == nil {
			t.Fatalf("dailySpec(%q): expected error", in)
		}
	}
}

func TestAddDaily(t *testing.T) {
	s := New(time.UTC)
	err := s.AddDaily([]string{"08:00", "09:10", "10:40", "11:11", "16:10"}, func() {})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddHourly(func() {}); err != nil {
		t.Fatal(err)
	}
	if s.Entries() != 6 {
		t.Fatalf("entries = %d, want 6", s.Entries())
	}
}

func TestAddDaily_BadTimeFails(t *testing.T) {
	s := New(time.UTC)
	if err := s.AddDaily([]string{"08:00", "nope"}, func() {}); err == nil {
		t.Fatal("expected error for malformed time")
	}
}

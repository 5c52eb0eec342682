package streak

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCurrent(t *testing.T) {
	today := day("2025-06-10")

	cases := []struct {
		name  string
		dates []string
		want  int
	}{
		{"no check-ins", nil, 0},
		{"single today", []string{"2025-06-10"}, 1},
		{"single yesterday", []string{"2025-06-09"}, 1},
		{"single two days ago", []string{"2025-06-08"}, 0},
		{"three consecutive ending today", []string{"2025-06-08", "2025-06-09", "2025-06-10"}, 3},
		{"gap breaks run", []string{"2025-06-06", "2025-06-08", "2025-06-09", "2025-06-10"}, 3},
		{"consecutive ending yesterday", []string{"2025-06-07", "2025-06-08", "2025-06-09"}, 3},
		{"stale run", []string{"2025-06-01", "2025-06-02", "2025-06-03"}, 0},
		{"unordered input", []string{"2025-06-10", "2025-06-08", "2025-06-09"}, 3},
		{"duplicates counted once", []string{"2025-06-09", "2025-06-09", "2025-06-10"}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dates := make([]time.Time, len(tc.dates))
			for i, s := range tc.dates {
				dates[i] = day(s)
			}
			if got := Current(dates, today); got != tc.want {
				t.Errorf("Current() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCurrentIncrementsByOneWhenConsecutive(t *testing.T) {
	today := day("2025-06-10")
	dates := []time.Time{day("2025-06-08"), day("2025-06-09")}

	before := Current(dates, today)
	after := Current(append(dates, today), today)

	if after != before+1 {
		t.Errorf("Expected streak to grow from %d to %d, got %d", before, before+1, after)
	}
}

func TestCompletionRate(t *testing.T) {
	today := day("2025-06-30")

	dates := []time.Time{
		day("2025-06-30"),
		day("2025-06-29"),
		day("2025-06-28"),
		day("2025-06-30"), // duplicate, counted once
		day("2025-05-01"), // outside window
	}

	got := CompletionRate(dates, 30, today)
	want := 3.0 / 30.0
	if got != want {
		t.Errorf("CompletionRate() = %f, want %f", got, want)
	}

	if got := CompletionRate(nil, 30, today); got != 0 {
		t.Errorf("Expected 0 for empty dates, got %f", got)
	}
	if got := CompletionRate(dates, 0, today); got != 0 {
		t.Errorf("Expected 0 for zero window, got %f", got)
	}
}

func TestLongest(t *testing.T) {
	today := day("2025-06-10")

	sets := [][]time.Time{
		{day("2025-06-10")},
		{day("2025-06-08"), day("2025-06-09"), day("2025-06-10")},
		{day("2025-06-01")},
	}

	if got := Longest(sets, today); got != 3 {
		t.Errorf("Longest() = %d, want 3", got)
	}
	if got := Longest(nil, today); got != 0 {
		t.Errorf("Longest(nil) = %d, want 0", got)
	}
}

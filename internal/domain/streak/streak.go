// Package streak implements the consecutive-day arithmetic behind the
// progress statistics: current streaks and completion rates over a
// rolling window of check-in dates.
package streak

import (
	"sort"
	"time"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// Current calculates the user's current streak for a challenge from its
// check-in dates.
//
// A streak is a run of consecutive calendar days ending today or yesterday.
// A most recent check-in older than yesterday means the streak is broken
// and the result is 0. Duplicate dates are tolerated and counted once.
//
// Parameters:
//   - dates: The challenge's check-in dates, in any order
//   - today: The reference day, normalized internally
//
// Returns the number of consecutive days in the active streak.
func Current(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	days := dedupeDescending(dates)
	today = domain.NormalizeDate(today)

	// The streak must still be alive: latest check-in today or yesterday.
	if days[0].Before(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		if days[i].AddDate(0, 0, -1).Equal(days[i+1]) {
			streak++
		} else {
			break
		}
	}

	return streak
}

// CompletionRate calculates the fraction of the last `window` days
// (ending today, inclusive) that have a check-in. The result is in [0, 1].
func CompletionRate(dates []time.Time, window int, today time.Time) float64 {
	if window <= 0 {
		return 0
	}

	today = domain.NormalizeDate(today)
	start := today.AddDate(0, 0, -(window - 1))

	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		day := domain.NormalizeDate(d)
		if !day.Before(start) && !day.After(today) {
			seen[day] = struct{}{}
		}
	}

	return float64(len(seen)) / float64(window)
}

// Longest returns the maximum of the current streaks computed for each
// date set. It backs the "longest current streak across subscriptions"
// statistic.
func Longest(dateSets [][]time.Time, today time.Time) int {
	longest := 0
	for _, dates := range dateSets {
		if s := Current(dates, today); s > longest {
			longest = s
		}
	}
	return longest
}

// dedupeDescending normalizes, deduplicates, and sorts dates newest-first.
func dedupeDescending(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := domain.NormalizeDate(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

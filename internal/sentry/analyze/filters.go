package analyze

import (
	"sort"
	"strings"
	"time"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
)

// EventFilter decides whether an event belongs to the analysis set.
// Filters compose with AND logic; missing fields are treated as non-match.
type EventFilter func(audit.Event) bool

// ByUser matches events by OS user, case-insensitive.
func ByUser(user string) EventFilter {
	return func(e audit.Event) bool {
		return strings.EqualFold(e.OSUser, user)
	}
}

// ByDatabase matches events by database name, case-insensitive.
func ByDatabase(db string) EventFilter {
	return func(e audit.Event) bool {
		return strings.EqualFold(e.DBName, db)
	}
}

// Since matches events with a timestamp on or after t. Events without a
// timestamp never match.
func Since(t time.Time) EventFilter {
	return func(e audit.Event) bool {
		return e.HasTimestamp() && !e.Timestamp.Before(t)
	}
}

// Until matches events with a timestamp on or before t.
func Until(t time.Time) EventFilter {
	return func(e audit.Event) bool {
		return e.HasTimestamp() && !e.Timestamp.After(t)
	}
}

// Apply returns the events matching all filters, preserving input order.
func Apply(events []audit.Event, filters ...EventFilter) []audit.Event {
	if len(filters) == 0 {
		return events
	}
	out := make([]audit.Event, 0, len(events))
	for _, e := range events {
		match := true
		for _, f := range filters {
			if !f(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// MinScore keeps results at or above the given score, preserving order.
func MinScore(results []Result, min int) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Score >= min {
			out = append(out, r)
		}
	}
	return out
}

// SortByScore orders results by risk descending. The sort is stable so
// equal-score results keep their input order, keeping output deterministic.
func SortByScore(results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

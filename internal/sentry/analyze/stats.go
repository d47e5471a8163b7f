package analyze

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
)

// Stats aggregates a batch of results into the executive-summary numbers.
type Stats struct {
	TotalEvents int
	Users       []string // distinct OS users, sorted
	AverageRisk float64

	ByLevel     map[string]int // high / medium / low
	ByOperation map[string]int // leading SQL keyword

	OutlierCount      int
	OffHoursCount     int
	SensitiveCount    int // events touching the watch-list
	UnauthorizedCount int // context mentions "unauthorized"

	FirstTimestamp *time.Time
	LastTimestamp  *time.Time

	TopRisk []Result // up to three highest-scoring events
}

// Summarize computes aggregate statistics over a batch of results.
// sensitiveNames is the watch-list used to count sensitive-object access.
func Summarize(results []Result, sensitiveNames []string) *Stats {
	s := &Stats{
		ByLevel:     make(map[string]int),
		ByOperation: make(map[string]int),
	}

	users := make(map[string]struct{})
	totalRisk := 0

	for _, r := range results {
		s.TotalEvents++
		users[r.OSUser] = struct{}{}
		totalRisk += r.Score

		s.ByLevel[r.Level]++
		s.ByOperation[audit.Operation(r.Statement)]++

		if r.Anomaly.IsOutlier {
			s.OutlierCount++
		}
		if r.Anomaly.OffHours {
			s.OffHoursCount++
		}
		if matchesSensitive(r.AccessedObj, sensitiveNames) {
			s.SensitiveCount++
		}
		if strings.Contains(strings.ToLower(r.Context), "unauthorized") {
			s.UnauthorizedCount++
		}

		if r.HasTimestamp() {
			ts := r.Timestamp
			if s.FirstTimestamp == nil || ts.Before(*s.FirstTimestamp) {
				s.FirstTimestamp = &ts
			}
			if s.LastTimestamp == nil || ts.After(*s.LastTimestamp) {
				s.LastTimestamp = &ts
			}
		}
	}

	if s.TotalEvents > 0 {
		s.AverageRisk = float64(totalRisk) / float64(s.TotalEvents)
	}

	for u := range users {
		s.Users = append(s.Users, u)
	}
	sort.Strings(s.Users)

	top := SortByScore(results)
	if len(top) > 3 {
		top = top[:3]
	}
	s.TopRisk = top

	return s
}

func matchesSensitive(obj string, names []string) bool {
	if obj == "" {
		return false
	}
	lower := strings.ToLower(obj)
	for _, n := range names {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// PrintSummary writes a human-readable summary of the batch.
func (s *Stats) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Total events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "  Active users: %d\n", len(s.Users))

	if s.FirstTimestamp != nil && s.LastTimestamp != nil {
		fmt.Fprintf(w, "  Time range: %s to %s\n",
			s.FirstTimestamp.Format(time.RFC3339),
			s.LastTimestamp.Format(time.RFC3339))
	}

	fmt.Fprintf(w, "  Average risk score: %.1f/100\n", s.AverageRisk)
	fmt.Fprintf(w, "\n")

	if len(s.ByLevel) > 0 {
		fmt.Fprintf(w, "  By risk level:\n")
		printSortedMap(w, s.ByLevel, "    ")
		fmt.Fprintf(w, "\n")
	}

	if len(s.ByOperation) > 0 {
		fmt.Fprintf(w, "  By operation:\n")
		printSortedMap(w, s.ByOperation, "    ")
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "  Sensitive object access: %d\n", s.SensitiveCount)
	fmt.Fprintf(w, "  Unauthorized changes: %d\n", s.UnauthorizedCount)
	fmt.Fprintf(w, "  Outlier activities: %d\n", s.OutlierCount)
	fmt.Fprintf(w, "  Off-hours access: %d\n", s.OffHoursCount)

	if len(s.TopRisk) > 0 {
		fmt.Fprintf(w, "\n  Top risk events:\n")
		for i, r := range s.TopRisk {
			ts := ""
			if r.HasTimestamp() {
				ts = r.Timestamp.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "    %d. %s - risk %d/100 - %s (%s)\n",
				i+1, r.OSUser, r.Score, r.AccessedObj, ts)
		}
	}
}

// printSortedMap prints a map sorted by value descending, ties broken by
// key ascending for predictable output.
func printSortedMap(w io.Writer, m map[string]int, indent string) {
	type kv struct {
		key   string
		value int
	}

	var pairs []kv
	for k, v := range m {
		pairs = append(pairs, kv{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value == pairs[j].value {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value > pairs[j].value
	})

	for _, pair := range pairs {
		fmt.Fprintf(w, "%s%s: %d\n", indent, pair.key, pair.value)
	}
}

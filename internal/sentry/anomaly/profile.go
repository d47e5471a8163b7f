package anomaly

import (
	"sort"
	"time"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
)

// UserProfile summarizes a user's historical footprint in the corpus.
type UserProfile struct {
	User              string         `json:"user"`
	TotalActivities   int            `json:"total_activities"`
	DatabasesAccessed int            `json:"databases_accessed"`
	CommonDatabases   map[string]int `json:"common_databases"`
	CommonOperations  map[string]int `json:"common_operations"`
	CommonPrograms    map[string]int `json:"common_programs"`
	OffHoursPercent   float64        `json:"off_hours_percent"`
	WeekendActivities int            `json:"weekend_activities"`
}

// Profile builds a behavioral profile for a user over the corpus. Returns a
// zero-valued profile when the user has no events.
func (d *Detector) Profile(user string, corpus []audit.Event) UserProfile {
	userEvents := filterByUser(corpus, user)
	p := UserProfile{User: user, TotalActivities: len(userEvents)}
	if len(userEvents) == 0 {
		return p
	}

	databases := make(map[string]int)
	operations := make(map[string]int)
	programs := make(map[string]int)
	offHours := 0

	for _, e := range userEvents {
		databases[e.DBName]++
		operations[audit.Operation(e.Statement)]++
		programs[e.Program]++
		if d.isOffHours(e.Timestamp) {
			offHours++
		}
		if wd := e.Timestamp.Weekday(); e.HasTimestamp() && (wd == time.Saturday || wd == time.Sunday) {
			p.WeekendActivities++
		}
	}

	p.DatabasesAccessed = len(databases)
	p.CommonDatabases = topN(databases, 3)
	p.CommonOperations = topN(operations, 3)
	p.CommonPrograms = topN(programs, 3)
	p.OffHoursPercent = float64(offHours) / float64(len(userEvents)) * 100
	return p
}

// CoordinatedEvent records potentially coordinated activity: other users
// touching the same database or object within the time window around an
// event.
type CoordinatedEvent struct {
	PrimaryUser        string    `json:"primary_user"`
	PrimaryTime        time.Time `json:"primary_time"`
	CoordinatedUsers   []string  `json:"coordinated_users"`
	Database           string    `json:"database"`
	Object             string    `json:"object"`
	TotalUsersInvolved int       `json:"total_users_involved"`
}

// DetectCoordinated scans the corpus for events where at least two other
// users performed similar activity (same database or same accessed object)
// within +/- window of the event.
func DetectCoordinated(corpus []audit.Event, window time.Duration) []CoordinatedEvent {
	sorted := make([]audit.Event, len(corpus))
	copy(sorted, corpus)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out []CoordinatedEvent
	for _, e := range sorted {
		if !e.HasTimestamp() {
			continue
		}
		windowStart := e.Timestamp.Add(-window)
		windowEnd := e.Timestamp.Add(window)

		var users []string
		for _, other := range sorted {
			if other.OSUser == e.OSUser || !other.HasTimestamp() {
				continue
			}
			if other.Timestamp.Before(windowStart) || other.Timestamp.After(windowEnd) {
				continue
			}
			if other.DBName == e.DBName || (e.AccessedObj != "" && other.AccessedObj == e.AccessedObj) {
				users = append(users, other.OSUser)
			}
		}

		if len(users) >= 2 {
			out = append(out, CoordinatedEvent{
				PrimaryUser:        e.OSUser,
				PrimaryTime:        e.Timestamp,
				CoordinatedUsers:   users,
				Database:           e.DBName,
				Object:             e.AccessedObj,
				TotalUsersInvolved: len(users) + 1,
			})
		}
	}
	return out
}

// topN keeps the n highest counts from m, ties broken by key for
// deterministic output.
func topN(m map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		value int
	}
	pairs := make([]kv, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, kv{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value == pairs[j].value {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value > pairs[j].value
	})

	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		out[p.key] = p.value
	}
	return out
}

package analyze

import (
	"fmt"
	"strings"
)

// Narrative renders a one-paragraph plain-language account of a scored
// event, with badges for the signals that fired. sensitiveNames is the
// watch-list used to call out sensitive-table access.
func Narrative(r Result, sensitiveNames []string) string {
	timeStr := "an unknown time"
	if r.HasTimestamp() {
		timeStr = r.Timestamp.Format("2006-01-02 15:04")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Risk score %d/100 - %s accessed the %s database and %s on %q using %s from %s at %s.",
		r.Score, r.OSUser, r.DBName, r.Explanation, r.AccessedObj, r.Program, r.SrcIP, timeStr)

	if r.Context != "" {
		fmt.Fprintf(&b, " Context: %s.", r.Context)
	}

	var badges []string
	if matchesSensitive(r.AccessedObj, sensitiveNames) {
		badges = append(badges, "sensitive table access")
	}
	if strings.Contains(strings.ToLower(r.Context), "unauthorized") {
		badges = append(badges, "unauthorized change")
	}
	if r.Anomaly.IsOutlier {
		badges = append(badges, "outlier activity")
	}
	if r.Anomaly.OffHours {
		badges = append(badges, "off-hours access")
	}
	if len(badges) > 0 {
		fmt.Fprintf(&b, " Flags: %s.", strings.Join(badges, ", "))
	}

	if r.Anomaly.UnusualVolume && r.Anomaly.VolumeDescription != "" {
		fmt.Fprintf(&b, " Unusual data volume: %s.", r.Anomaly.VolumeDescription)
	}

	return b.String()
}

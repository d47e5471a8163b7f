package anomaly

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/config"
	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
)

// Result is the per-event anomaly verdict. IsOutlier is the OR of the three
// individual signals; it carries no independent logic. Results are computed
// fresh on every call and never stored on the event.
type Result struct {
	IsOutlier         bool   `json:"is_outlier"`
	OffHours          bool   `json:"off_hours"`
	UnusualVolume     bool   `json:"unusual_volume"`
	VolumeDescription string `json:"volume_description,omitempty"`
	AtypicalBehavior  bool   `json:"atypical_behavior"`
}

// bulkKeywords flag statements that move data in bulk.
var bulkKeywords = []string{"BULK", "BATCH", "IMPORT", "EXPORT", "BACKUP", "RESTORE"}

// Detector computes anomaly flags for events against a corpus baseline. The
// off-hours window is independently configurable from the scorer's; both
// default to the same time settings.
type Detector struct {
	offStart int // minutes since midnight
	offEnd   int

	frequencyThreshold int
	minVolumeEvents    int
	minBehaviorEvents  int
}

// NewDetector builds a detector from the risk configuration. A nil config
// uses the compiled-in defaults.
func NewDetector(cfg *config.RiskConfig) *Detector {
	if cfg == nil {
		cfg = config.DefaultRiskConfig()
	}

	start, err := config.ParseClock(cfg.TimeSettings.OffHoursStart)
	if err != nil {
		start = 18 * 60
	}
	end, err := config.ParseClock(cfg.TimeSettings.OffHoursEnd)
	if err != nil {
		end = 8 * 60
	}

	d := &Detector{
		offStart:           start,
		offEnd:             end,
		frequencyThreshold: cfg.AnomalySettings.FrequencyThreshold,
		minVolumeEvents:    cfg.AnomalySettings.MinVolumeEvents,
		minBehaviorEvents:  cfg.AnomalySettings.MinBehaviorEvents,
	}
	if d.frequencyThreshold <= 0 {
		d.frequencyThreshold = 10
	}
	if d.minVolumeEvents <= 0 {
		d.minVolumeEvents = 5
	}
	if d.minBehaviorEvents <= 0 {
		d.minBehaviorEvents = 10
	}
	return d
}

// Detect computes the anomaly flags for one event relative to the full
// corpus it belongs to. Two calls with the same (event, corpus) yield
// identical results; the detector holds no mutable state.
//
// Detect never fails: an internal panic yields the all-false default so a
// batch pass completes with one result per event.
func (d *Detector) Detect(e audit.Event, corpus []audit.Event) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Warnw("Anomaly detection failed, using default result",
				"event_id", e.EventID,
				"panic", r)
			res = Result{}
		}
	}()

	userEvents := filterByUser(corpus, e.OSUser)

	res.OffHours = d.isOffHours(e.Timestamp)
	res.UnusualVolume, res.VolumeDescription = d.volumeAnomaly(e, userEvents)
	res.AtypicalBehavior = d.atypicalBehavior(e, userEvents)
	res.IsOutlier = res.OffHours || res.UnusualVolume || res.AtypicalBehavior
	return res
}

// isOffHours: all of Saturday/Sunday, plus the wrapping evening-to-morning
// window on weekdays.
func (d *Detector) isOffHours(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= d.offStart || minute <= d.offEnd
}

// volumeAnomaly checks for unusual data-access volume. The minimum-history
// gate applies uniformly to all three checks; with fewer than
// minVolumeEvents events for the user nothing is evaluable. First match
// wins.
func (d *Detector) volumeAnomaly(e audit.Event, userEvents []audit.Event) (bool, string) {
	if len(userEvents) < d.minVolumeEvents {
		return false, ""
	}

	statement := strings.ToUpper(e.Statement)

	if strings.Contains(statement, "SELECT *") {
		return true, "Potential data dump using SELECT *"
	}

	// Trailing 1-hour window ending at this event's timestamp, inclusive.
	if e.HasTimestamp() {
		windowStart := e.Timestamp.Add(-time.Hour)
		count := 0
		for _, ue := range userEvents {
			if !ue.Timestamp.Before(windowStart) && !ue.Timestamp.After(e.Timestamp) {
				count++
			}
		}
		if count > d.frequencyThreshold {
			return true, fmt.Sprintf("High query frequency: %d queries in 1 hour", count)
		}
	}

	for _, kw := range bulkKeywords {
		if strings.Contains(statement, kw) {
			return true, "Bulk data operation detected"
		}
	}

	return false, ""
}

// atypicalBehavior compares the event against the user's historical
// footprint: first-time or rare database, first-time program, or a rarely
// used operation keyword. Checks short-circuit on the first hit.
func (d *Detector) atypicalBehavior(e audit.Event, userEvents []audit.Event) bool {
	if len(userEvents) < d.minBehaviorEvents {
		return false
	}
	total := float64(len(userEvents))

	dbCount := 0
	for _, ue := range userEvents {
		if ue.DBName == e.DBName {
			dbCount++
		}
	}
	if dbCount == 0 {
		return true // first-ever access to this database
	}
	if float64(dbCount)/total < 0.10 {
		return true
	}

	programSeen := false
	for _, ue := range userEvents {
		if ue.Program == e.Program {
			programSeen = true
			break
		}
	}
	if !programSeen {
		return true // first use of this program
	}

	op := audit.Operation(e.Statement)
	opCount := 0
	for _, ue := range userEvents {
		if audit.Operation(ue.Statement) == op {
			opCount++
		}
	}
	if opCount > 0 && float64(opCount)/total < 0.05 {
		return true
	}

	return false
}

func filterByUser(corpus []audit.Event, user string) []audit.Event {
	out := make([]audit.Event, 0, len(corpus))
	for _, e := range corpus {
		if e.OSUser == user {
			out = append(out, e)
		}
	}
	return out
}

package analyze

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteNDJSON writes one result per line as newline-delimited JSON,
// preserving all event fields and the derived risk/anomaly data.
func WriteNDJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{
	"event_id", "timestamp", "os_user", "exec_user", "db_type", "db_name",
	"program", "module", "src_host", "src_ip", "accessed_obj",
	"accessed_obj_owner", "statement", "context",
	"risk_score", "risk_level", "explanation",
	"is_outlier", "off_hours", "unusual_volume", "volume_description",
	"atypical_behavior",
}

// WriteCSV writes the results as a CSV table with one header row.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, r := range results {
		ts := ""
		if r.HasTimestamp() {
			ts = r.Timestamp.Format(time.RFC3339)
		}
		row := []string{
			r.EventID, ts, r.OSUser, r.ExecUser, r.DBType, r.DBName,
			r.Program, r.Module, r.SrcHost, r.SrcIP, r.AccessedObj,
			r.AccessedObjOwner, r.Statement, r.Context,
			strconv.Itoa(r.Score), r.Level, r.Explanation,
			strconv.FormatBool(r.Anomaly.IsOutlier),
			strconv.FormatBool(r.Anomaly.OffHours),
			strconv.FormatBool(r.Anomaly.UnusualVolume),
			r.Anomaly.VolumeDescription,
			strconv.FormatBool(r.Anomaly.AtypicalBehavior),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

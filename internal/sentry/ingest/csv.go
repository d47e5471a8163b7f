package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
)

// requiredColumns is the 13-column audit export layout. Column order in the
// file does not matter; the header row is matched by name.
var requiredColumns = []string{
	"_time", "OS_User", "Exec_User", "DB_Type", "DB_Name",
	"Program", "Module", "Src_Host", "Src_IP",
	"Accessed_Obj", "Accessed_Obj_Owner", "Statement", "MS_Context",
}

// ReadCSV reads an audit-log CSV export into canonical events. Every row
// gets a fresh event ID. Rows with unparseable timestamps are kept with a
// zero timestamp and logged; the engine substitutes documented defaults for
// them, so a batch pass still yields one result per row.
func ReadCSV(r io.Reader) ([]audit.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows rejected per-row below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	field := func(row []string, name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var events []audit.Event
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.L().Warnw("Skipping malformed CSV row",
				"line", line,
				"error", err)
			continue
		}

		e := audit.Event{
			EventID:          uuid.NewString(),
			Timestamp:        NormalizeTimestamp(field(row, "_time")),
			OSUser:           field(row, "OS_User"),
			ExecUser:         field(row, "Exec_User"),
			DBType:           field(row, "DB_Type"),
			DBName:           field(row, "DB_Name"),
			Program:          field(row, "Program"),
			Module:           field(row, "Module"),
			SrcHost:          field(row, "Src_Host"),
			SrcIP:            field(row, "Src_IP"),
			AccessedObj:      field(row, "Accessed_Obj"),
			AccessedObjOwner: field(row, "Accessed_Obj_Owner"),
			Statement:        field(row, "Statement"),
			Context:          field(row, "MS_Context"),
		}
		if !e.HasTimestamp() && field(row, "_time") != "" {
			logger.L().Warnw("Unparseable timestamp, keeping event without one",
				"line", line,
				"value", field(row, "_time"))
		}
		events = append(events, e)
	}

	logger.L().Infow("Loaded audit CSV", "events", len(events))
	return events, nil
}

// ReadCSVFile reads an audit CSV from a file path.
func ReadCSVFile(path string) ([]audit.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit CSV %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// NormalizeTimestamp parses any common timestamp layout into UTC.
// Returns the zero time for empty or unparseable input.
func NormalizeTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

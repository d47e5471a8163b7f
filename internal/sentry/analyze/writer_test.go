package analyze

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rudolph001/sqlsentry/internal/sentry/anomaly"
	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
)

func TestWriteNDJSON(t *testing.T) {
	results := []Result{
		{
			Event: audit.Event{
				EventID: "e1", OSUser: "alice", DBName: "SalesDB",
				Statement: "SELECT id FROM Orders",
				Timestamp: at("2024-01-02 09:00:00"),
			},
			Score: 5, Level: "low", Explanation: "queried specific data from tables",
		},
		{
			Event: audit.Event{EventID: "e2", OSUser: "bob"},
			Score: 100, Level: "high",
			Anomaly: anomaly.Result{IsOutlier: true, OffHours: true},
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteNDJSON(&buf, results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "e1", first["event_id"])
	assert.Equal(t, float64(5), first["risk_score"])
	assert.Equal(t, "low", first["risk_level"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	anomalyBlock, ok := second["anomaly"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, anomalyBlock["is_outlier"])
	assert.Equal(t, true, anomalyBlock["off_hours"])
}

func TestWriteCSV(t *testing.T) {
	results := []Result{
		{
			Event: audit.Event{
				EventID: "e1", OSUser: "alice", DBName: "SalesDB",
				AccessedObj: "Orders",
				Statement:   `SELECT "name" FROM Orders, quoted`,
				Timestamp:   at("2024-01-02 09:00:00"),
			},
			Score: 42, Level: "medium", Explanation: "queried specific data from tables",
			Anomaly: anomaly.Result{UnusualVolume: true, VolumeDescription: "Bulk data operation detected", IsOutlier: true},
		},
		{
			Event: audit.Event{EventID: "e2"},
			Score: 0, Level: "low",
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, results))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, csvHeader, header)
	require.Len(t, rows[1], len(header))

	get := func(row []string, col string) string {
		for i, h := range header {
			if h == col {
				return row[i]
			}
		}
		t.Fatalf("column %q not in header", col)
		return ""
	}

	assert.Equal(t, "e1", get(rows[1], "event_id"))
	assert.Equal(t, "42", get(rows[1], "risk_score"))
	assert.Equal(t, "medium", get(rows[1], "risk_level"))
	assert.Equal(t, "true", get(rows[1], "is_outlier"))
	assert.Equal(t, "Bulk data operation detected", get(rows[1], "volume_description"))
	assert.Equal(t, `SELECT "name" FROM Orders, quoted`, get(rows[1], "statement"))

	// Missing timestamp renders empty, not the zero time.
	assert.Equal(t, "", get(rows[2], "timestamp"))
	assert.Equal(t, "false", get(rows[2], "is_outlier"))
}

func TestNarrative(t *testing.T) {
	r := Result{
		Event: audit.Event{
			OSUser: "bob", DBName: "FinanceDB", AccessedObj: "Salaries",
			Program: "sqlcmd", SrcIP: "10.1.2.3",
			Context:   "unauthorized emergency",
			Timestamp: at("2024-01-01 23:30:00"),
		},
		Score:       100,
		Level:       "high",
		Explanation: "deleted all records from a table (high risk)",
		Anomaly: anomaly.Result{
			IsOutlier: true, OffHours: true,
			UnusualVolume: true, VolumeDescription: "Bulk data operation detected",
		},
	}

	text := Narrative(r, []string{"Salaries"})
	assert.Contains(t, text, "Risk score 100/100")
	assert.Contains(t, text, "bob accessed the FinanceDB database")
	assert.Contains(t, text, "deleted all records from a table (high risk)")
	assert.Contains(t, text, "2024-01-01 23:30")
	assert.Contains(t, text, "Context: unauthorized emergency.")
	assert.Contains(t, text, "sensitive table access")
	assert.Contains(t, text, "unauthorized change")
	assert.Contains(t, text, "outlier activity")
	assert.Contains(t, text, "off-hours access")
	assert.Contains(t, text, "Unusual data volume: Bulk data operation detected.")
}

func TestNarrativeQuietEvent(t *testing.T) {
	r := Result{
		Event: audit.Event{
			OSUser: "alice", DBName: "SalesDB", AccessedObj: "Orders",
			Program: "SSMS", SrcIP: "10.0.0.1",
		},
		Score:       5,
		Level:       "low",
		Explanation: "queried specific data from tables",
	}

	text := Narrative(r, nil)
	assert.Contains(t, text, "an unknown time")
	assert.NotContains(t, text, "Flags:")
	assert.NotContains(t, text, "Context:")
	assert.NotContains(t, text, "Unusual data volume")
}

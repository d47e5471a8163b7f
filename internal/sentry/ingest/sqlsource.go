package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
)

// SQLSource reads audit rows from a database table instead of a CSV export.
// The table carries the same 13 columns as the CSV layout, snake-cased.
type SQLSource struct {
	Driver string // "mysql" or "postgres"
	DSN    string
	Table  string
}

// Read fetches all audit rows ordered by time. Rows with NULL fields are
// kept with empty strings, matching the present-but-empty contract of the
// CSV reader.
func (s SQLSource) Read(ctx context.Context) ([]audit.Event, error) {
	if s.Driver != "mysql" && s.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported driver %q (want mysql or postgres)", s.Driver)
	}
	if s.Table == "" {
		return nil, fmt.Errorf("audit table name is required")
	}

	db, err := sql.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", s.Driver, err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT event_time, os_user, exec_user, db_type, db_name,
		program, module, src_host, src_ip,
		accessed_obj, accessed_obj_owner, statement, ms_context
		FROM %s ORDER BY event_time`, s.Table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query audit table %s: %w", s.Table, err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var ts sql.NullString
		var cols [12]sql.NullString
		dest := []any{&ts}
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}

		events = append(events, audit.Event{
			EventID:          uuid.NewString(),
			Timestamp:        NormalizeTimestamp(ts.String),
			OSUser:           cols[0].String,
			ExecUser:         cols[1].String,
			DBType:           cols[2].String,
			DBName:           cols[3].String,
			Program:          cols[4].String,
			Module:           cols[5].String,
			SrcHost:          cols[6].String,
			SrcIP:            cols[7].String,
			AccessedObj:      cols[8].String,
			AccessedObjOwner: cols[9].String,
			Statement:        cols[10].String,
			Context:          cols[11].String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}

	logger.L().Infow("Loaded audit events from database",
		"driver", s.Driver,
		"table", s.Table,
		"events", len(events))
	return events, nil
}

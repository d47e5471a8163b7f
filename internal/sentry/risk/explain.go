package risk

import "strings"

// Explain converts a SQL statement into a plain-English description of what
// it does. Rules are ordered most-specific first ("SELECT *" before plain
// "SELECT", unscoped DELETE before scoped DELETE). Total function with a
// default branch; the result is never empty.
func Explain(statement string) string {
	if strings.TrimSpace(statement) == "" {
		return "executed an unknown operation"
	}
	s := strings.ToUpper(strings.TrimSpace(statement))

	switch {
	case strings.Contains(s, "SELECT *"):
		return "queried all columns from a table (potential data dump)"
	case strings.Contains(s, "DELETE") && !strings.Contains(s, "WHERE"):
		return "deleted all records from a table (high risk)"
	case strings.Contains(s, "DELETE"):
		return "deleted specific records from a table"
	case strings.Contains(s, "UPDATE") && !strings.Contains(s, "WHERE"):
		return "updated all records in a table (high risk)"
	case strings.Contains(s, "UPDATE"):
		return "updated specific records in a table"
	case strings.Contains(s, "INSERT"):
		return "inserted new records into a table"
	case strings.Contains(s, "DROP TABLE"):
		return "permanently removed a table from the database"
	case strings.Contains(s, "DROP"):
		return "removed database objects (schema change)"
	case strings.Contains(s, "ALTER"):
		return "modified database structure or permissions"
	case strings.Contains(s, "TRUNCATE"):
		return "removed all data from a table (non-recoverable)"
	case strings.Contains(s, "GRANT"):
		return "granted database permissions to users"
	case strings.Contains(s, "REVOKE"):
		return "removed database permissions from users"
	case strings.Contains(s, "CREATE"):
		return "created new database objects"
	case strings.Contains(s, "SELECT"):
		return "queried specific data from tables"
	default:
		return "executed a custom SQL operation"
	}
}

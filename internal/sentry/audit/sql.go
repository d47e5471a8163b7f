package audit

import "strings"

// sqlOperations are the statement keywords the engine classifies on.
var sqlOperations = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "DROP",
	"ALTER", "CREATE", "GRANT", "REVOKE", "TRUNCATE",
}

// NormalizeSQL strips leading comments and whitespace from a SQL string so
// classification is not blocked by comment headers like /* ... */ or -- ...
func NormalizeSQL(statement string) string {
	s := strings.TrimSpace(statement)

	for {
		switch {
		case strings.HasPrefix(s, "/*"):
			if end := strings.Index(s, "*/"); end != -1 {
				s = strings.TrimSpace(s[end+2:])
				continue
			}
			return "" // unterminated block comment
		case strings.HasPrefix(s, "--"):
			if end := strings.Index(s, "\n"); end != -1 {
				s = strings.TrimSpace(s[end+1:])
				continue
			}
			return "" // whole line was a comment
		}
		break
	}

	return s
}

// Operation extracts the leading SQL keyword of a statement, upper-cased.
// Unrecognized or empty statements classify as "OTHER".
func Operation(statement string) string {
	s := strings.ToUpper(NormalizeSQL(statement))

	for _, op := range sqlOperations {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return "OTHER"
}

// IsSelectStar reports whether the statement contains a SELECT * projection.
func IsSelectStar(statement string) bool {
	return strings.Contains(strings.ToUpper(statement), "SELECT *")
}

package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/config"
)

func defaultCfg() *config.RiskConfig {
	return config.DefaultRiskConfig()
}

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOperationRisk(t *testing.T) {
	weights := defaultCfg().SQLOperationWeights

	tests := []struct {
		name      string
		statement string
		expected  int
	}{
		{"empty_statement", "", 10},
		{"whitespace_only", "   ", 10},
		{"select_star", "SELECT * FROM CustomerData", 25},
		{"plain_select", "SELECT id FROM t", 5},
		{"delete_with_where", "DELETE FROM t WHERE id=1", 45},
		{"delete_without_where_penalized", "DELETE FROM t", 50}, // 45+15 capped at 50
		{"update_with_where", "UPDATE t SET a=1 WHERE id=1", 30},
		{"update_without_where_penalized", "UPDATE t SET a=1", 45},
		{"drop", "DROP TABLE t", 50},
		{"truncate", "TRUNCATE TABLE t", 50},
		{"grant", "GRANT SELECT ON db.* TO 'x'", 40},
		{"unrecognized_keyword", "VACUUM ANALYZE t", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OperationRisk(tt.statement, weights))
		})
	}
}

func TestTimingRisk(t *testing.T) {
	ts := defaultCfg().TimeSettings

	tests := []struct {
		name     string
		when     time.Time
		expected int
	}{
		{"missing_timestamp", time.Time{}, 5},
		{"tuesday_afternoon", at("2024-01-02 14:00:00"), 0},
		{"monday_evening", at("2024-01-01 23:30:00"), 15},
		{"monday_early_morning", at("2024-01-01 07:30:00"), 15},
		{"monday_late_night_stacks", at("2024-01-01 02:00:00"), 25}, // off-hours + late night
		{"saturday_afternoon", at("2024-01-06 14:00:00"), 10},
		{"saturday_late_night_capped", at("2024-01-06 02:00:00"), 35}, // 10+15+10
		{"five_am_inclusive", at("2024-01-01 05:00:00"), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimingRisk(tt.when, ts))
		})
	}
}

func TestTimingRiskWeekendExceedsWeekday(t *testing.T) {
	ts := defaultCfg().TimeSettings
	saturday := TimingRisk(at("2024-01-06 02:00:00"), ts)
	tuesday := TimingRisk(at("2024-01-02 14:00:00"), ts)
	assert.Greater(t, saturday, tuesday)
}

func TestContextRisk(t *testing.T) {
	cfg := defaultCfg()

	tests := []struct {
		name     string
		context  string
		expected int
	}{
		{"missing_context", "", 10},
		{"high_risk_keyword", "emergency fix - unauthorized", 25},
		{"high_risk_wins_over_low", "unauthorized but approved", 25},
		{"low_risk_keyword", "scheduled maintenance", 0},
		{"ticket_reference", "CHG000123 - schema update", 5},
		{"req_ticket", "data export REQ001234", 5},
		{"neutral", "quarterly numbers", 10},
		{"ticket_without_digits_is_neutral", "change pending", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContextRisk(tt.context, cfg))
		})
	}
}

func TestSensitiveObjectRisk(t *testing.T) {
	watchList := defaultCfg().SensitiveObjects

	tests := []struct {
		name     string
		obj      string
		expected int
	}{
		{"missing_object", "", 0},
		{"watch_list_match", "Salaries", 35},
		{"watch_list_substring", "hr_records_archive", 35},
		{"high_risk_family", "credit_cards", 35},
		{"broader_family", "user_passwords", 25},
		{"broader_family_token", "api_tokens", 25},
		{"benign_object", "Regions", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SensitiveObjectRisk(tt.obj, watchList))
		})
	}
}

func TestSensitiveObjectRiskCallerListPrecedence(t *testing.T) {
	// An explicit caller list is consulted instead of the config list.
	assert.Equal(t, 35, SensitiveObjectRisk("Invoices", []string{"invoice"}))
	assert.Equal(t, 0, SensitiveObjectRisk("Invoices", []string{"ledger"}))
}

func TestUserRisk(t *testing.T) {
	patterns := defaultCfg().AdminPatterns

	tests := []struct {
		name     string
		osUser   string
		execUser string
		expected int
	}{
		{"same_plain_user", "alice", "alice", 0},
		{"mismatched_users", "alice", "svc_batch", 15},
		{"admin_account", "dba_admin", "dba_admin", 10},
		{"mismatch_plus_admin_capped", "root", "appuser", 25},
		{"single_admin_match_only", "admin_root_sa", "admin_root_sa", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserRisk(tt.osUser, tt.execUser, patterns))
		})
	}
}

func TestProgramRisk(t *testing.T) {
	cfg := defaultCfg()

	tests := []struct {
		name     string
		program  string
		expected int
	}{
		{"missing_program", "", 5},
		{"cli_tool", "sqlcmd", 15},
		{"scripting", "python3.11", 15},
		{"management_gui", "SSMS", 8},
		{"sql_ide", "DBeaver 23.3", 8},
		{"cli_substring_wins", "MySQL Workbench", 15},
		{"other", "Excel", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProgramRisk(tt.program, cfg))
		})
	}
}

func TestScoreClampInvariant(t *testing.T) {
	cfg := defaultCfg()

	events := []audit.Event{
		{},
		{Statement: "DROP TABLE Credit_Cards", AccessedObj: "Credit_Cards",
			Context: "unauthorized emergency", Timestamp: at("2024-01-06 02:00:00"),
			OSUser: "root", ExecUser: "other", Program: "sqlcmd"},
		{Statement: "SELECT 1", OSUser: "alice", ExecUser: "alice"},
		{Statement: "garbage ;;; not sql", AccessedObj: "???", Context: "???"},
	}

	for _, e := range events {
		score := Score(e, nil, cfg)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestScoreIdempotent(t *testing.T) {
	cfg := defaultCfg()
	e := audit.Event{
		Statement:   "UPDATE Payroll SET Amount = 0",
		AccessedObj: "Payroll",
		Context:     "hotfix",
		Timestamp:   at("2024-01-01 23:00:00"),
		OSUser:      "bob",
		ExecUser:    "bob",
		Program:     "psql",
	}

	first := Score(e, nil, cfg)
	second := Score(e, nil, cfg)
	assert.Equal(t, first, second)
}

func TestScoreDangerousSensitiveFloor(t *testing.T) {
	cfg := defaultCfg()

	// Destructive operations on sensitive objects are never reported below
	// 75, regardless of every other field.
	events := []audit.Event{
		{Statement: "DELETE FROM Salaries WHERE id = 1", AccessedObj: "Salaries",
			Context: "approved scheduled maintenance", Timestamp: at("2024-01-02 14:00:00"),
			OSUser: "alice", ExecUser: "alice", Program: "Excel"},
		{Statement: "DROP TABLE Credit_Cards", AccessedObj: "Credit_Cards"},
		{Statement: "TRUNCATE TABLE payment_history", AccessedObj: "payment_history"},
	}

	for _, e := range events {
		score := Score(e, nil, cfg)
		assert.GreaterOrEqual(t, score, 75, "statement %q", e.Statement)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestScoreUnscopedMutationPenalty(t *testing.T) {
	cfg := defaultCfg()

	// Non-sensitive object isolates the WHERE-clause penalty from the
	// dangerous-sensitive floor.
	base := audit.Event{
		AccessedObj: "Widgets",
		Timestamp:   at("2024-01-02 14:00:00"),
		OSUser:      "alice",
		ExecUser:    "alice",
	}

	unscoped := base
	unscoped.Statement = "DELETE FROM Widgets"
	scoped := base
	scoped.Statement = "DELETE FROM Widgets WHERE id=1"

	assert.Greater(t, Score(unscoped, nil, cfg), Score(scoped, nil, cfg))
}

func TestScoreScenarioHighRisk(t *testing.T) {
	cfg := defaultCfg()

	// Destructive statement on a sensitive table, suspicious context,
	// off-hours, CLI tool: the floor escalates well past 90.
	e := audit.Event{
		Statement:   "DELETE FROM Salaries WHERE 1=1",
		AccessedObj: "Salaries",
		Context:     "unauthorized emergency bypass",
		Timestamp:   at("2024-01-01 23:30:00"), // a Monday, off-hours
		OSUser:      "bob",
		ExecUser:    "bob",
		Program:     "sqlcmd",
		DBName:      "FinanceDB",
	}

	score := Score(e, nil, cfg)
	assert.GreaterOrEqual(t, score, 90)
	assert.LessOrEqual(t, score, 100)
}

func TestScoreScenarioLowRisk(t *testing.T) {
	cfg := defaultCfg()

	e := audit.Event{
		Statement:   "SELECT Region FROM Regions",
		AccessedObj: "Regions",
		Context:     "scheduled maintenance",
		Timestamp:   at("2024-01-02 14:00:00"), // a Tuesday, business hours
		OSUser:      "alice",
		ExecUser:    "alice",
		Program:     "SSMS",
		DBName:      "InventoryDB",
	}

	score := Score(e, nil, cfg)
	require.Less(t, score, 10, "all sub-risks minimal, no escalations should fire")
	assert.GreaterOrEqual(t, score, 0)
}

func TestScoreEscalationOrdering(t *testing.T) {
	cfg := defaultCfg()

	// Sensitive SELECT * off-hours with suspicious context: escalations 1
	// and 2 both apply but the dangerous-sensitive floor does not (SELECT
	// is not destructive), so the score stays below the floor's territory
	// for this weighted total.
	e := audit.Event{
		Statement:   "SELECT name FROM Employees",
		AccessedObj: "Employees",
		Context:     "urgent manual check",
		Timestamp:   at("2024-01-01 23:00:00"),
		OSUser:      "carol",
		ExecUser:    "carol",
		Program:     "psql",
	}

	// op=5, time=15, ctx=25, sens=35, user=0, prog=15
	// weighted: 1.5 + 3 + 3.75 + 8.75 + 0 + 0.75 = 17.75
	// escalation 1 skipped (op < 30); escalation 2: x1.5 = 26.625
	assert.Equal(t, 26, Score(e, nil, cfg))
}

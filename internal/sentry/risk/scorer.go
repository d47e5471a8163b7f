package risk

import (
	"regexp"
	"strings"
	"time"

	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/config"
	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
)

// FallbackScore is returned when a scoring pass fails internally. A batch
// pass must always complete with one result per input event, so the scorer
// never propagates errors to the caller.
const FallbackScore = 50

// Fixed object-name families checked in addition to the configurable
// watch-list. First list scores 35, second 25.
var (
	highRiskObjectPatterns = []string{
		"credit_card", "credit_cards", "creditcard", "creditcards",
		"payment", "financial", "salary", "payroll", "ssn", "social_security",
	}

	sensitiveObjectPatterns = []string{
		"password", "pwd", "secret", "key", "token", "hash",
		"credit", "card", "account", "employee", "customer",
	}

	// dangerousSensitiveKeywords gates the destructive-operation floor.
	dangerousSensitiveKeywords = []string{
		"credit", "card", "payment", "financial", "salary", "ssn", "social",
	}

	ticketPattern = regexp.MustCompile(`(?i)(chg|change|ticket|req|request)\d+`)
)

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// OperationRisk scores the statement's leading SQL keyword against the
// configured operation weights (0-50).
//
// Logic:
// - Empty statement: fixed moderate default 10
// - SELECT * anywhere in the statement: scored as its own category
// - DELETE/UPDATE without a WHERE clause: base weight +15, capped at 50
// - Otherwise: weight of the leading keyword, or low default 5 if unknown
func OperationRisk(statement string, weights map[string]int) int {
	if strings.TrimSpace(statement) == "" {
		return 10
	}
	s := strings.ToUpper(audit.NormalizeSQL(statement))

	if strings.Contains(s, "SELECT *") {
		if w, ok := weights["SELECT *"]; ok {
			return w
		}
		return 20
	}

	op := audit.Operation(statement)

	// Unscoped mutations are the riskiest form of their operation.
	if (op == "DELETE" || op == "UPDATE") && !strings.Contains(s, "WHERE") {
		base, ok := weights[op]
		if !ok {
			base = 20
		}
		if base+15 > 50 {
			return 50
		}
		return base + 15
	}

	if w, ok := weights[op]; ok {
		return w
	}
	return 5
}

// TimingRisk scores the access time (0-35). Weekend, off-hours and
// late-night bonuses stack; the off-hours window wraps midnight.
func TimingRisk(t time.Time, ts config.TimeSettings) int {
	if t.IsZero() {
		return 5
	}

	start, err := config.ParseClock(ts.OffHoursStart)
	if err != nil {
		start = 18 * 60
	}
	end, err := config.ParseClock(ts.OffHoursEnd)
	if err != nil {
		end = 8 * 60
	}

	score := 0
	minute := t.Hour()*60 + t.Minute()

	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		score += ts.WeekendBonus
	}
	if minute >= start || minute <= end {
		score += ts.OffHoursBonus
	}
	if minute <= 5*60 {
		score += ts.LateNightBonus
	}

	if score > 35 {
		return 35
	}
	return score
}

// ContextRisk scores the free-text context annotation. Missing context is
// mildly suspicious; a recognized change-ticket reference is mildly
// reassuring. First keyword match wins.
func ContextRisk(context string, cfg *config.RiskConfig) int {
	if strings.TrimSpace(context) == "" {
		return 10
	}
	lower := strings.ToLower(context)

	for _, kw := range cfg.HighRiskKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return 25
		}
	}
	for _, kw := range cfg.LowRiskKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return 0
		}
	}
	if ticketPattern.MatchString(context) {
		return 5
	}
	return 10
}

// SensitiveObjectRisk scores access to protected objects: 35 for the
// watch-list or the high-risk name family, 25 for the broader sensitive
// family, 0 otherwise.
func SensitiveObjectRisk(accessedObj string, sensitiveNames []string) int {
	if strings.TrimSpace(accessedObj) == "" {
		return 0
	}
	lower := strings.ToLower(accessedObj)

	for _, name := range sensitiveNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			return 35
		}
	}
	if containsAny(lower, highRiskObjectPatterns) {
		return 35
	}
	if containsAny(lower, sensitiveObjectPatterns) {
		return 25
	}
	return 0
}

// UserRisk scores identity factors (0-25): mismatched OS/exec users signal
// impersonation, admin-pattern account names raise the stakes.
func UserRisk(osUser, execUser string, adminPatterns []string) int {
	score := 0

	if osUser != execUser {
		score += 15
	}

	lower := strings.ToLower(osUser)
	for _, p := range adminPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			score += 10
			break
		}
	}

	if score > 25 {
		return 25
	}
	return score
}

// ProgramRisk scores the client tool: 15 for CLI/scripting tools, 8 for GUI
// management tools, 5 otherwise.
func ProgramRisk(program string, cfg *config.RiskConfig) int {
	if strings.TrimSpace(program) == "" {
		return 5
	}
	lower := strings.ToLower(program)

	for _, p := range cfg.HighRiskPrograms {
		if strings.Contains(lower, strings.ToLower(p)) {
			return 15
		}
	}
	for _, p := range cfg.MediumRiskPrograms {
		if strings.Contains(lower, strings.ToLower(p)) {
			return 8
		}
	}
	return 5
}

// isDangerousSensitive reports whether the event is a destructive operation
// (DELETE/DROP/TRUNCATE) against a sensitive object. Such events are floored
// at 75 regardless of other factors.
func isDangerousSensitive(e audit.Event, sensitiveNames []string) bool {
	op := audit.Operation(e.Statement)
	if op != "DELETE" && op != "DROP" && op != "TRUNCATE" {
		return false
	}

	obj := strings.ToLower(e.AccessedObj)
	if obj == "" {
		return false
	}
	if containsAny(obj, dangerousSensitiveKeywords) {
		return true
	}
	for _, name := range sensitiveNames {
		if strings.Contains(obj, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// Score computes the 0-100 risk score for a single event.
//
// sensitiveNames is the watch-list of protected object substrings; a nil
// value falls back to cfg.SensitiveObjects (an explicit caller-supplied list
// takes precedence).
//
// The weighted component sum is escalated by ordered multipliers for
// dangerous combinations, then floored at 75 for destructive operations on
// sensitive data. The ordering matters: multiplication does not commute with
// the floor, so the escalations are applied exactly in this sequence.
//
// Score never fails; an internal panic yields FallbackScore so a batch pass
// completes with one result per event.
func Score(e audit.Event, sensitiveNames []string, cfg *config.RiskConfig) (score int) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Warnw("Risk scoring failed, using fallback score",
				"event_id", e.EventID,
				"panic", r)
			score = FallbackScore
		}
	}()

	if sensitiveNames == nil {
		sensitiveNames = cfg.SensitiveObjects
	}

	opRisk := OperationRisk(e.Statement, cfg.SQLOperationWeights)
	timeRisk := TimingRisk(e.Timestamp, cfg.TimeSettings)
	ctxRisk := ContextRisk(e.Context, cfg)
	sensRisk := SensitiveObjectRisk(e.AccessedObj, sensitiveNames)
	userRisk := UserRisk(e.OSUser, e.ExecUser, cfg.AdminPatterns)
	progRisk := ProgramRisk(e.Program, cfg)

	w := cfg.RiskWeights
	total := float64(opRisk)*w.SQLOperation +
		float64(timeRisk)*w.Timing +
		float64(ctxRisk)*w.Context +
		float64(sensRisk)*w.SensitiveObjects +
		float64(userRisk)*w.UserFactors +
		float64(progRisk)*w.Program

	// Escalations compound: each applies to the running total.
	if sensRisk > 0 && opRisk >= 30 {
		total *= 1.8
	}
	if timeRisk > 0 && ctxRisk >= 20 {
		total *= 1.5
	}
	if sensRisk > 0 && opRisk >= 40 && timeRisk > 0 {
		total *= 2.0
	}

	// Destructive operations on sensitive data are never reported below 75.
	if isDangerousSensitive(e, sensitiveNames) {
		total *= 2.5
		if total < 75 {
			total = 75
		}
	}

	logger.L().Debugw("Computed risk score",
		"event_id", e.EventID,
		"operation_risk", opRisk,
		"timing_risk", timeRisk,
		"context_risk", ctxRisk,
		"sensitive_risk", sensRisk,
		"user_risk", userRisk,
		"program_risk", progRisk,
		"total", total)

	score = int(total)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

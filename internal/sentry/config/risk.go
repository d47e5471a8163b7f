package config

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// RiskWeights are the six component weights applied when combining
// sub-scores into a final risk score. They should sum to 1.0; deviation is
// surfaced to the operator as an advisory, not an error.
type RiskWeights struct {
	SQLOperation     float64 `json:"sql_operation"`
	Timing           float64 `json:"timing"`
	Context          float64 `json:"context"`
	SensitiveObjects float64 `json:"sensitive_objects"`
	UserFactors      float64 `json:"user_factors"`
	Program          float64 `json:"program"`
}

// Sum returns the total of all component weights.
func (w RiskWeights) Sum() float64 {
	return w.SQLOperation + w.Timing + w.Context + w.SensitiveObjects + w.UserFactors + w.Program
}

// TimeSettings define the off-hours window and the timing bonuses.
// The window wraps midnight: off-hours = t >= start OR t <= end.
type TimeSettings struct {
	OffHoursStart     string  `json:"off_hours_start"` // "HH:MM"
	OffHoursEnd       string  `json:"off_hours_end"`   // "HH:MM"
	WeekendMultiplier float64 `json:"weekend_multiplier"`
	OffHoursBonus     int     `json:"off_hours_bonus"`
	WeekendBonus      int     `json:"weekend_bonus"`
	LateNightBonus    int     `json:"late_night_bonus"`
}

// RiskThresholds band numeric scores into reporting levels.
type RiskThresholds struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// AnomalySettings tune the population-statistics gates of the anomaly
// detector.
type AnomalySettings struct {
	FrequencyThreshold int `json:"frequency_threshold"` // queries per trailing hour
	MinVolumeEvents    int `json:"min_volume_events"`   // user history required for volume checks
	MinBehaviorEvents  int `json:"min_behavior_events"` // user history required for behavior checks
}

// RiskConfig is the full tunable scoring policy. It is persisted as a single
// JSON document and versioned only by full replacement: an update replaces
// one section and re-persists the whole structure.
type RiskConfig struct {
	SQLOperationWeights map[string]int  `json:"sql_operation_weights"`
	RiskWeights         RiskWeights     `json:"risk_weights"`
	TimeSettings        TimeSettings    `json:"time_settings"`
	SensitiveObjects    []string        `json:"sensitive_objects"`
	HighRiskKeywords    []string        `json:"high_risk_keywords"`
	LowRiskKeywords     []string        `json:"low_risk_keywords"`
	HighRiskPrograms    []string        `json:"high_risk_programs"`
	MediumRiskPrograms  []string        `json:"medium_risk_programs"`
	AdminPatterns       []string        `json:"admin_patterns"`
	RiskThresholds      RiskThresholds  `json:"risk_thresholds"`
	AnomalySettings     AnomalySettings `json:"anomaly_settings"`
}

// ParseClock parses an "HH:MM" time-of-day into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time-of-day %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Level bands a numeric score into "high", "medium" or "low".
func (t RiskThresholds) Level(score int) string {
	switch {
	case score >= t.High:
		return "high"
	case score >= t.Medium:
		return "medium"
	default:
		return "low"
	}
}

// ValidateRiskConfig checks that all required sections are present and
// structurally usable. Internal numeric consistency is not enforced: a
// weight sum deviating from 1.0 comes back as an advisory warning, never an
// error.
func ValidateRiskConfig(c *RiskConfig) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("risk config is nil")
	}
	if len(c.SQLOperationWeights) == 0 {
		return nil, fmt.Errorf("missing section: sql_operation_weights")
	}
	if c.RiskWeights == (RiskWeights{}) {
		return nil, fmt.Errorf("missing section: risk_weights")
	}
	if c.TimeSettings.OffHoursStart == "" || c.TimeSettings.OffHoursEnd == "" {
		return nil, fmt.Errorf("missing section: time_settings")
	}
	if _, err := ParseClock(c.TimeSettings.OffHoursStart); err != nil {
		return nil, fmt.Errorf("time_settings.off_hours_start: %w", err)
	}
	if _, err := ParseClock(c.TimeSettings.OffHoursEnd); err != nil {
		return nil, fmt.Errorf("time_settings.off_hours_end: %w", err)
	}
	if c.SensitiveObjects == nil {
		return nil, fmt.Errorf("missing section: sensitive_objects")
	}
	if c.HighRiskKeywords == nil {
		return nil, fmt.Errorf("missing section: high_risk_keywords")
	}
	if c.LowRiskKeywords == nil {
		return nil, fmt.Errorf("missing section: low_risk_keywords")
	}

	var warnings []string
	if sum := c.RiskWeights.Sum(); math.Abs(sum-1.0) > 0.001 {
		warnings = append(warnings, fmt.Sprintf("risk_weights sum to %.3f, expected 1.0", sum))
	}
	for op, weight := range c.SQLOperationWeights {
		if weight < 0 || weight > 50 {
			warnings = append(warnings, fmt.Sprintf("sql_operation_weights[%s] = %d outside 0-50", op, weight))
		}
	}
	return warnings, nil
}

// DecodeRiskConfig decodes and validates a RiskConfig JSON document.
func DecodeRiskConfig(r io.Reader) (*RiskConfig, []string, error) {
	var c RiskConfig
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, nil, fmt.Errorf("decode risk config JSON: %w", err)
	}
	warnings, err := ValidateRiskConfig(&c)
	if err != nil {
		return nil, nil, err
	}
	return &c, warnings, nil
}

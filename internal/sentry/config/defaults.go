package config

// DefaultRiskConfig returns the compiled-in scoring policy. The store falls
// back to these values whenever the persisted document is absent or corrupt.
func DefaultRiskConfig() *RiskConfig {
	return &RiskConfig{
		SQLOperationWeights: map[string]int{
			"DELETE":   45,
			"DROP":     50,
			"ALTER":    35,
			"UPDATE":   30,
			"INSERT":   15,
			"GRANT":    40,
			"REVOKE":   35,
			"SELECT *": 25,
			"TRUNCATE": 50,
			"CREATE":   15,
			"SELECT":   5,
		},
		RiskWeights: RiskWeights{
			SQLOperation:     0.30,
			Timing:           0.20,
			Context:          0.15,
			SensitiveObjects: 0.25,
			UserFactors:      0.05,
			Program:          0.05,
		},
		TimeSettings: TimeSettings{
			OffHoursStart:     "18:00",
			OffHoursEnd:       "08:00",
			WeekendMultiplier: 1.5,
			OffHoursBonus:     15,
			WeekendBonus:      10,
			LateNightBonus:    10,
		},
		SensitiveObjects: []string{
			"Salaries", "Employees", "HR_Records", "CustomerData",
			"AuditLog", "Payroll", "SSN", "Credit",
		},
		HighRiskKeywords: []string{
			"unauthorized", "emergency", "bypass", "override", "manual",
			"temp", "temporary", "hotfix", "urgent", "critical",
		},
		LowRiskKeywords: []string{
			"scheduled", "approved", "maintenance", "routine", "standard",
			"automated", "planned", "regular",
		},
		HighRiskPrograms: []string{
			"sqlcmd", "psql", "mysql", "mongosh", "redis-cli",
			"powershell", "cmd", "bash", "python", "perl", "script",
		},
		MediumRiskPrograms: []string{
			"ssms", "management studio", "workbench", "navigator",
			"toad", "dbeaver", "navicat",
		},
		AdminPatterns: []string{
			"admin", "root", "sa", "dba", "system", "service",
		},
		RiskThresholds: RiskThresholds{
			High:   70,
			Medium: 40,
			Low:    0,
		},
		AnomalySettings: AnomalySettings{
			FrequencyThreshold: 10,
			MinVolumeEvents:    5,
			MinBehaviorEvents:  10,
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rudolph001/sqlsentry/internal/sentry/analyze"
	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/config"
	"github.com/Rudolph001/sqlsentry/internal/sentry/ingest"
	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score audit events for insider-threat risk and flag anomalies",
	Long: `Analyze runs a batch pass over a database-access audit log and emits one
result per event: a 0-100 risk score, a risk level, a plain-English
explanation of the SQL statement, and anomaly flags (off-hours access,
unusual volume, atypical behavior) computed against the full event set.

Input: an audit CSV export (--input) or an audit table in MySQL/Postgres
(--db-driver/--dsn/--table).
Output: NDJSON or CSV results, optionally with an aggregate summary.`,
	RunE: runAnalyze,
}

var (
	analyzeFlagInput      string
	analyzeFlagOutput     string
	analyzeFlagFormat     string
	analyzeFlagRiskConfig string
	analyzeFlagUser       string
	analyzeFlagDatabase   string
	analyzeFlagSince      string
	analyzeFlagUntil      string
	analyzeFlagMinScore   int
	analyzeFlagSummary    bool
	analyzeFlagNarrative  bool
	analyzeFlagWorkers    int
	analyzeFlagSensitive  []string

	analyzeFlagDBDriver string
	analyzeFlagDSN      string
	analyzeFlagTable    string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlagInput, "input", "", "audit CSV file (or use --db-driver)")
	analyzeCmd.Flags().StringVar(&analyzeFlagOutput, "output", "", "output file (default stdout)")
	analyzeCmd.Flags().StringVar(&analyzeFlagFormat, "format", "", "output format: ndjson|csv (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFlagRiskConfig, "risk-config", "", "risk config JSON file (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFlagUser, "user", "", "only analyze events for this OS user")
	analyzeCmd.Flags().StringVar(&analyzeFlagDatabase, "database", "", "only analyze events for this database")
	analyzeCmd.Flags().StringVar(&analyzeFlagSince, "since", "", "only events at or after this time (ISO 8601)")
	analyzeCmd.Flags().StringVar(&analyzeFlagUntil, "until", "", "only events at or before this time (ISO 8601)")
	analyzeCmd.Flags().IntVar(&analyzeFlagMinScore, "min-score", 0, "only output results at or above this score")
	analyzeCmd.Flags().BoolVar(&analyzeFlagSummary, "summary", false, "print aggregate summary to stderr")
	analyzeCmd.Flags().BoolVar(&analyzeFlagNarrative, "narratives", false, "emit plain-language narratives instead of structured results")
	analyzeCmd.Flags().IntVar(&analyzeFlagWorkers, "workers", 0, "parallel workers (0 = one per CPU)")
	analyzeCmd.Flags().StringSliceVar(&analyzeFlagSensitive, "sensitive", nil, "override sensitive object watch-list")

	analyzeCmd.Flags().StringVar(&analyzeFlagDBDriver, "db-driver", "", "read events from a database: mysql|postgres")
	analyzeCmd.Flags().StringVar(&analyzeFlagDSN, "dsn", "", "database connection string (with --db-driver)")
	analyzeCmd.Flags().StringVar(&analyzeFlagTable, "table", "", "audit table name (with --db-driver)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	appCfg := config.Get()
	start := time.Now()

	// A user changing their mind mid-pass just cancels; results are
	// discarded, nothing to roll back.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// Load events
	var events []audit.Event
	var err error
	switch {
	case analyzeFlagDBDriver != "":
		src := ingest.SQLSource{
			Driver: analyzeFlagDBDriver,
			DSN:    analyzeFlagDSN,
			Table:  analyzeFlagTable,
		}
		events, err = src.Read(ctx)
	case analyzeFlagInput != "":
		events, err = ingest.ReadCSVFile(analyzeFlagInput)
	default:
		return fmt.Errorf("either --input or --db-driver is required")
	}
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	// Load risk config; every scoring call uses the config current at call
	// time, so we load after flags are resolved.
	riskPath := appCfg.Analysis.RiskConfigFile
	if analyzeFlagRiskConfig != "" {
		riskPath = analyzeFlagRiskConfig
	}
	riskCfg := config.NewStore(riskPath).Load()

	// Apply event filters
	var filters []analyze.EventFilter
	if analyzeFlagUser != "" {
		filters = append(filters, analyze.ByUser(analyzeFlagUser))
	}
	if analyzeFlagDatabase != "" {
		filters = append(filters, analyze.ByDatabase(analyzeFlagDatabase))
	}
	if analyzeFlagSince != "" {
		t := ingest.NormalizeTimestamp(analyzeFlagSince)
		if t.IsZero() {
			return fmt.Errorf("invalid --since value %q", analyzeFlagSince)
		}
		filters = append(filters, analyze.Since(t))
	}
	if analyzeFlagUntil != "" {
		t := ingest.NormalizeTimestamp(analyzeFlagUntil)
		if t.IsZero() {
			return fmt.Errorf("invalid --until value %q", analyzeFlagUntil)
		}
		filters = append(filters, analyze.Until(t))
	}
	events = analyze.Apply(events, filters...)

	workers := analyzeFlagWorkers
	if workers == 0 {
		workers = appCfg.Analysis.Workers
	}

	results, err := analyze.Run(ctx, events, riskCfg, analyze.Options{
		Workers:          workers,
		SensitiveObjects: analyzeFlagSensitive,
	})
	if err != nil {
		return fmt.Errorf("analysis pass: %w", err)
	}

	if analyzeFlagMinScore > 0 {
		results = analyze.MinScore(results, analyzeFlagMinScore)
	}

	// Output writer
	var output io.Writer = os.Stdout
	if analyzeFlagOutput != "" {
		f, err := os.Create(analyzeFlagOutput)
		if err != nil {
			return fmt.Errorf("create output file %s: %w", analyzeFlagOutput, err)
		}
		defer f.Close()
		output = f
	}

	sensitiveNames := analyzeFlagSensitive
	if sensitiveNames == nil {
		sensitiveNames = riskCfg.SensitiveObjects
	}

	format := analyzeFlagFormat
	if format == "" {
		format = appCfg.Output.Format
	}

	switch {
	case analyzeFlagNarrative:
		for _, r := range analyze.SortByScore(results) {
			fmt.Fprintln(output, analyze.Narrative(r, sensitiveNames))
		}
	case format == "csv":
		if err := analyze.WriteCSV(output, results); err != nil {
			return err
		}
	case format == "ndjson":
		if err := analyze.WriteNDJSON(output, results); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if analyzeFlagSummary {
		analyze.Summarize(results, sensitiveNames).PrintSummary(os.Stderr)
	}

	logger.L().Infow("Analysis complete",
		"events", len(events),
		"results", len(results),
		"duration", time.Since(start).String())
	return nil
}

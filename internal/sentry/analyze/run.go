package analyze

import (
	"context"
	"runtime"
	"sync"

	"github.com/Rudolph001/sqlsentry/internal/sentry/anomaly"
	"github.com/Rudolph001/sqlsentry/internal/sentry/audit"
	"github.com/Rudolph001/sqlsentry/internal/sentry/config"
	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
	"github.com/Rudolph001/sqlsentry/internal/sentry/risk"
)

// Result pairs an event with everything the engine derives from it.
type Result struct {
	audit.Event

	Score       int            `json:"risk_score"`
	Level       string         `json:"risk_level"`
	Explanation string         `json:"explanation"`
	Anomaly     anomaly.Result `json:"anomaly"`
}

// Options tune a batch pass.
type Options struct {
	// Workers caps the parallelism of the pass; 0 means one per CPU.
	Workers int

	// SensitiveObjects overrides the config watch-list when non-nil.
	SensitiveObjects []string
}

// Run scores and anomaly-checks every event in the batch, producing one
// Result per input event in input order.
//
// Scoring and detection are pure per-event computations over read-only
// shared state (config, corpus), so the pass parallelizes across events.
// Cancellation via ctx discards in-flight results and returns ctx.Err();
// there are no side effects to undo.
func Run(ctx context.Context, events []audit.Event, cfg *config.RiskConfig, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(events) {
		workers = len(events)
	}
	if workers < 1 {
		workers = 1
	}

	detector := anomaly.NewDetector(cfg)
	results := make([]Result, len(events))

	logger.L().Debugw("Starting batch analysis",
		"events", len(events),
		"workers", workers)

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				e := events[i]
				results[i] = Result{
					Event:       e,
					Score:       risk.Score(e, opts.SensitiveObjects, cfg),
					Level:       "",
					Explanation: risk.Explain(e.Statement),
					Anomaly:     detector.Detect(e, events),
				}
				results[i].Level = cfg.RiskThresholds.Level(results[i].Score)
			}
		}()
	}

feed:
	for i := range events {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		logger.L().Infow("Batch analysis cancelled", "error", err)
		return nil, err
	}
	return results, nil
}

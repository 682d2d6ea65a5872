package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/micro-hil/go-hil/metrics"
	"github.com/micro-hil/go-hil/results"
	"github.com/micro-hil/go-hil/types"
)

// RunResult captures the outcome of one complete run.
type RunResult struct {
	RunID    string
	Status   types.TestStatus
	Summary  types.RunSummary
	Duration time.Duration
}

func (r *RunResult) String() string {
	return fmt.Sprintf("RunID: %s\nStatus: %s\nPassed: %d\nFailed: %d\nSkipped: %d\nDuration: %s",
		r.RunID, r.Status, r.Summary.Passed, r.Summary.Failed, r.Summary.Skipped, r.Duration)
}

// Config holds configuration for creating an Orchestrator.
type Config struct {
	Groups  []types.TestGroup // discovery order, preserved as given
	Handles types.HandleSet
	Sink    *results.Sink
	Log     log.Logger
}

// Orchestrator sequences discovered test groups through the execution
// engine and produces a RunSummary. It is the only caller permitted to
// hand peripheral handles to executing code.
type Orchestrator struct {
	groups  []types.TestGroup
	handles types.HandleSet
	sink    *results.Sink
	log     log.Logger
	runID   string
}

// NewOrchestrator creates an orchestrator for one run.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("result sink is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Orchestrator{
		groups:  cfg.Groups,
		handles: cfg.Handles,
		sink:    cfg.Sink,
		log:     cfg.Log,
	}, nil
}

// Run executes every group in discovery order and returns the folded
// summary. Group order is preserved verbatim from discovery so repeated
// runs against unchanged input produce byte-identical result ordering.
// Every result is streamed into the sink as it is produced; the summary
// is computed strictly as a fold over the sink snapshot, never from an
// independently maintained counter.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	o.runID = uuid.New().String()
	defer func() { o.runID = "" }()

	start := time.Now()
	o.log.Info("Starting test run", "run_id", o.runID, "groups", len(o.groups))

	eng := &engine{
		log:     o.log,
		tracer:  otel.Tracer("group engine"),
		sink:    o.sink,
		handles: o.handles,
	}
	for _, group := range o.groups {
		eng.runGroup(ctx, group)
	}

	summary := types.Summarize(o.sink.Snapshot())
	result := &RunResult{
		RunID:    o.runID,
		Status:   summary.Status(),
		Summary:  summary,
		Duration: time.Since(start),
	}

	metrics.RecordRun(o.runID, string(result.Status), summary.Total(),
		summary.Passed, summary.Failed, summary.Skipped, result.Duration)

	o.log.Info("Test run completed", "run_id", result.RunID, "status", result.Status,
		"passed", summary.Passed, "failed", summary.Failed, "skipped", summary.Skipped)
	return result, nil
}

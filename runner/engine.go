package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/micro-hil/go-hil/results"
	"github.com/micro-hil/go-hil/types"
)

// Phase is a state of the per-group execution state machine.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseSetup
	PhaseRunning
	PhaseTeardown
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseSetup:
		return "setup"
	case PhaseRunning:
		return "running"
	case PhaseTeardown:
		return "teardown"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// engine drives a single test group through its lifecycle. The terminal
// state is always PhaseDone; there is no retry. Whatever happens in
// setup or the cases, the teardown phase runs exactly once per group.
type engine struct {
	log     log.Logger
	tracer  trace.Tracer
	sink    *results.Sink
	handles types.HandleSet
}

// runGroup executes one group's state machine. It never returns an
// error: every failure inside the group is captured as a TestResult, so
// one group's failure cannot prevent subsequent groups from running.
func (e *engine) runGroup(ctx context.Context, group types.TestGroup) {
	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("group %s", group.Name))
	defer span.End()

	e.log.Info("Running test group", "group", group.Name, "cases", len(group.Cases))

	phase := PhaseInit
	var setupErr error
	for phase != PhaseDone {
		switch phase {
		case PhaseInit:
			// Unconditional entry, no side effects yet.
			phase = PhaseSetup

		case PhaseSetup:
			setupErr = e.runSetup(ctx, group)
			if setupErr != nil {
				// Setup failed: record every case as skipped so the
				// counters stay distinct from true failures, then go
				// straight to teardown. Running is skipped entirely;
				// no case may execute against unready state.
				e.skipCases(group, setupErr)
				phase = PhaseTeardown
			} else {
				phase = PhaseRunning
			}

		case PhaseRunning:
			for _, tc := range group.Cases {
				e.runCase(ctx, group, tc)
			}
			phase = PhaseTeardown

		case PhaseTeardown:
			e.runTeardown(ctx, group)
			phase = PhaseDone
		}
	}
}

// runSetup invokes the group's setup hook, if any. Absence is immediate
// success. On failure one synthetic Fail result is appended under the
// setup sentinel.
func (e *engine) runSetup(ctx context.Context, group types.TestGroup) error {
	if group.Setup == nil {
		return nil
	}
	_, span := e.tracer.Start(ctx, fmt.Sprintf("setup %s", group.Name))
	defer span.End()

	sentinel := types.SetupSentinel(group.Name)
	start := time.Now()
	err := e.invoke(group.Setup, group.Name, sentinel)
	if err == nil {
		return nil
	}
	e.log.Error("Group setup failed", "group", group.Name, "err", err)
	e.sink.Append(types.TestResult{
		Group:     group.Name,
		Case:      sentinel,
		Status:    types.TestStatusFail,
		Message:   err.Error(),
		Timestamp: start,
		Duration:  time.Since(start),
	})
	return err
}

// skipCases records a Skip result for every case that would have run,
// each referencing the setup failure.
func (e *engine) skipCases(group types.TestGroup, setupErr error) {
	for _, tc := range group.Cases {
		e.sink.Append(types.TestResult{
			Group:     group.Name,
			Case:      tc.Name,
			Status:    types.TestStatusSkip,
			Message:   fmt.Sprintf("skipped: setup failed: %v", setupErr),
			Timestamp: time.Now(),
		})
	}
}

// runCase executes one case in isolation. Returned errors and panics are
// treated identically: both record a Fail and neither aborts the
// remaining cases in the group.
func (e *engine) runCase(ctx context.Context, group types.TestGroup, tc types.TestCase) {
	_, span := e.tracer.Start(ctx, fmt.Sprintf("case %s", tc.Name))
	defer span.End()

	start := time.Now()
	err := e.invoke(tc.Run, group.Name, tc.Name)
	result := types.TestResult{
		Group:     group.Name,
		Case:      tc.Name,
		Status:    types.TestStatusPass,
		Timestamp: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Status = types.TestStatusFail
		result.Message = err.Error()
		e.log.Warn("Case failed", "group", group.Name, "case", tc.Name, "err", err)
	} else {
		e.log.Debug("Case passed", "group", group.Name, "case", tc.Name, "duration", result.Duration)
	}
	e.sink.Append(result)
}

// runTeardown invokes the group's teardown hook and appends exactly one
// teardown-phase result, Pass or Fail. It runs even when setup never
// touched hardware and even when every case failed; a teardown failure
// is recorded under its own sentinel so it stays independently visible
// in the result stream.
func (e *engine) runTeardown(ctx context.Context, group types.TestGroup) {
	_, span := e.tracer.Start(ctx, fmt.Sprintf("teardown %s", group.Name))
	defer span.End()

	sentinel := types.TeardownSentinel(group.Name)
	start := time.Now()
	var err error
	if group.Teardown != nil {
		err = e.invoke(group.Teardown, group.Name, sentinel)
	}
	result := types.TestResult{
		Group:     group.Name,
		Case:      sentinel,
		Status:    types.TestStatusPass,
		Timestamp: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Status = types.TestStatusFail
		result.Message = err.Error()
		e.log.Error("Group teardown failed", "group", group.Name, "err", err)
	}
	e.sink.Append(result)
}

// invoke calls a hook or case function with a fresh run context,
// converting a panic into an ordinary error so the state machine treats
// raised and returned failures identically.
func (e *engine) invoke(fn func(*types.RunContext) error, group, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	rc := &types.RunContext{
		Group:   group,
		Case:    name,
		Log:     e.log.New("group", group, "case", name),
		Handles: e.handles,
	}
	return fn(rc)
}

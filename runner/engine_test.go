package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/micro-hil/go-hil/results"
	"github.com/micro-hil/go-hil/types"
)

func newTestEngine(sink *results.Sink, handles types.HandleSet) *engine {
	return &engine{
		log:     log.New(),
		tracer:  otel.Tracer("engine test"),
		sink:    sink,
		handles: handles,
	}
}

func passCase(name string) types.TestCase {
	return types.TestCase{Name: name, Run: func(*types.RunContext) error { return nil }}
}

func failCase(name, msg string) types.TestCase {
	return types.TestCase{Name: name, Run: func(*types.RunContext) error { return errors.New(msg) }}
}

func TestEngine_GroupWithoutHooks(t *testing.T) {
	sink := results.NewSink()
	eng := newTestEngine(sink, nil)

	eng.runGroup(context.Background(), types.TestGroup{
		Name:  "g2",
		Cases: []types.TestCase{passCase("t1"), failCase("t2", "expected 1, got 2")},
	})

	snapshot := sink.Snapshot()
	require.Len(t, snapshot, 3)

	assert.Equal(t, "t1", snapshot[0].Case)
	assert.Equal(t, types.TestStatusPass, snapshot[0].Status)

	assert.Equal(t, "t2", snapshot[1].Case)
	assert.Equal(t, types.TestStatusFail, snapshot[1].Status)
	assert.Equal(t, "expected 1, got 2", snapshot[1].Message)

	// Teardown is implicit success when absent, and always the group's
	// last result.
	assert.Equal(t, types.TeardownSentinel("g2"), snapshot[2].Case)
	assert.Equal(t, types.TestStatusPass, snapshot[2].Status)
}

func TestEngine_SetupFailureSkipsCasesButRunsTeardown(t *testing.T) {
	sink := results.NewSink()
	eng := newTestEngine(sink, nil)

	casesRan := 0
	teardownRan := 0
	eng.runGroup(context.Background(), types.TestGroup{
		Name:  "g",
		Setup: func(*types.RunContext) error { return errors.New("bus not ready") },
		Cases: []types.TestCase{
			{Name: "t1", Run: func(*types.RunContext) error { casesRan++; return nil }},
			{Name: "t2", Run: func(*types.RunContext) error { casesRan++; return nil }},
		},
		Teardown: func(*types.RunContext) error { teardownRan++; return nil },
	})

	assert.Equal(t, 0, casesRan, "no case may execute after a setup failure")
	assert.Equal(t, 1, teardownRan, "teardown runs exactly once regardless of setup outcome")

	snapshot := sink.Snapshot()
	require.Len(t, snapshot, 4)

	assert.Equal(t, types.SetupSentinel("g"), snapshot[0].Case)
	assert.Equal(t, types.TestStatusFail, snapshot[0].Status)
	assert.Contains(t, snapshot[0].Message, "bus not ready")

	assert.Equal(t, "t1", snapshot[1].Case)
	assert.Equal(t, types.TestStatusSkip, snapshot[1].Status)
	assert.Contains(t, snapshot[1].Message, "setup failed")

	assert.Equal(t, "t2", snapshot[2].Case)
	assert.Equal(t, types.TestStatusSkip, snapshot[2].Status)

	assert.Equal(t, types.TeardownSentinel("g"), snapshot[3].Case)
	assert.Equal(t, types.TestStatusPass, snapshot[3].Status)

	summary := types.Summarize(snapshot)
	assert.Equal(t, 1, summary.Passed) // the teardown result
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
}

func TestEngine_TeardownFailureIsIndependentlyVisible(t *testing.T) {
	sink := results.NewSink()
	eng := newTestEngine(sink, nil)

	eng.runGroup(context.Background(), types.TestGroup{
		Name:     "g",
		Cases:    []types.TestCase{passCase("t1")},
		Teardown: func(*types.RunContext) error { return errors.New("release failed") },
	})

	snapshot := sink.Snapshot()
	require.Len(t, snapshot, 2)

	last := snapshot[len(snapshot)-1]
	assert.Equal(t, types.TeardownSentinel("g"), last.Case)
	assert.Equal(t, types.TestStatusFail, last.Status)
	assert.Equal(t, "release failed", last.Message)

	summary := types.Summarize(snapshot)
	assert.Equal(t, 1, summary.Failed)
}

func TestEngine_PanicsAreTreatedAsFailures(t *testing.T) {
	sink := results.NewSink()
	eng := newTestEngine(sink, nil)

	eng.runGroup(context.Background(), types.TestGroup{
		Name: "g",
		Cases: []types.TestCase{
			{Name: "t1", Run: func(*types.RunContext) error { panic("unexpected register value") }},
			passCase("t2"),
		},
	})

	snapshot := sink.Snapshot()
	require.Len(t, snapshot, 3)

	assert.Equal(t, types.TestStatusFail, snapshot[0].Status)
	assert.Contains(t, snapshot[0].Message, "panic")
	assert.Contains(t, snapshot[0].Message, "unexpected register value")

	// The panic did not abort the remaining cases.
	assert.Equal(t, "t2", snapshot[1].Case)
	assert.Equal(t, types.TestStatusPass, snapshot[1].Status)
}

func TestEngine_SetupPanicFollowsSetupFailurePath(t *testing.T) {
	sink := results.NewSink()
	eng := newTestEngine(sink, nil)

	eng.runGroup(context.Background(), types.TestGroup{
		Name:  "g",
		Setup: func(*types.RunContext) error { panic("no such device") },
		Cases: []types.TestCase{passCase("t1")},
	})

	snapshot := sink.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, types.TestStatusFail, snapshot[0].Status)
	assert.Equal(t, types.TestStatusSkip, snapshot[1].Status)
	assert.Equal(t, types.TestStatusPass, snapshot[2].Status)
}

func TestEngine_CaseReceivesRunContext(t *testing.T) {
	sink := results.NewSink()
	handles := types.HandleSet{"gpio": fakeHandle("gpio")}
	eng := newTestEngine(sink, handles)

	var got *types.RunContext
	eng.runGroup(context.Background(), types.TestGroup{
		Name: "g",
		Cases: []types.TestCase{{
			Name: "t1",
			Run: func(rc *types.RunContext) error {
				got = rc
				return nil
			},
		}},
	})

	require.NotNil(t, got)
	assert.Equal(t, "g", got.Group)
	assert.Equal(t, "t1", got.Case)
	require.NotNil(t, got.Log)
	h, ok := got.Handle("gpio")
	require.True(t, ok)
	assert.Equal(t, "gpio", h.Name())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "init", PhaseInit.String())
	assert.Equal(t, "setup", PhaseSetup.String())
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "teardown", PhaseTeardown.String())
	assert.Equal(t, "done", PhaseDone.String())
}

type fakeHandle string

func (f fakeHandle) Name() string { return string(f) }

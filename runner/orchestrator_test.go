package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-hil/go-hil/results"
	"github.com/micro-hil/go-hil/types"
)

func TestOrchestrator_RequiresSink(t *testing.T) {
	_, err := NewOrchestrator(Config{Log: log.New()})
	require.Error(t, err)
}

func TestOrchestrator_FailedGroupDoesNotStopLaterGroups(t *testing.T) {
	sink := results.NewSink()

	g3Ran := false
	groups := []types.TestGroup{
		{
			Name:  "g",
			Setup: func(*types.RunContext) error { return errors.New("probe missing") },
			Cases: []types.TestCase{passCase("t1"), passCase("t2")},
		},
		{
			Name:  "g2",
			Cases: []types.TestCase{passCase("t1"), failCase("t2", "mismatch")},
		},
		{
			Name: "g3",
			Cases: []types.TestCase{{
				Name: "t1",
				Run:  func(*types.RunContext) error { g3Ran = true; return nil },
			}},
		},
	}

	orch, err := NewOrchestrator(Config{Groups: groups, Sink: sink, Log: log.New()})
	require.NoError(t, err)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, g3Ran, "groups after a failing group must still execute")
	assert.Equal(t, types.TestStatusFail, result.Status)
	assert.NotEmpty(t, result.RunID)

	// Results appear in discovery order, group by group, with each
	// group's teardown result last.
	var order []string
	for _, r := range sink.Snapshot() {
		order = append(order, r.Group+"/"+r.Case)
	}
	assert.Equal(t, []string{
		"g/" + types.SetupSentinel("g"),
		"g/t1",
		"g/t2",
		"g/" + types.TeardownSentinel("g"),
		"g2/t1",
		"g2/t2",
		"g2/" + types.TeardownSentinel("g2"),
		"g3/t1",
		"g3/" + types.TeardownSentinel("g3"),
	}, order)
}

func TestOrchestrator_SummaryIsFoldOverSink(t *testing.T) {
	sink := results.NewSink()
	groups := []types.TestGroup{
		{Name: "g1", Cases: []types.TestCase{passCase("a"), failCase("b", "boom")}},
		{Name: "g2", Cases: []types.TestCase{passCase("c")}},
	}

	orch, err := NewOrchestrator(Config{Groups: groups, Sink: sink, Log: log.New()})
	require.NoError(t, err)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.Summarize(sink.Snapshot()), result.Summary)
	assert.Equal(t, result.Summary.Total(), sink.Len())
}

func TestOrchestrator_EmptyRunIsSkipStatus(t *testing.T) {
	sink := results.NewSink()
	orch, err := NewOrchestrator(Config{Sink: sink, Log: log.New()})
	require.NoError(t, err)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.TestStatusSkip, result.Status)
	assert.Zero(t, result.Summary.Total())
}

func TestRunResult_String(t *testing.T) {
	r := &RunResult{RunID: "abc", Status: types.TestStatusPass, Summary: types.RunSummary{Passed: 2}}
	s := r.String()
	assert.Contains(t, s, "RunID: abc")
	assert.Contains(t, s, "Passed: 2")
}

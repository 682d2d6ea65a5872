package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_FoldsAllStatuses(t *testing.T) {
	results := []TestResult{
		{Group: "g", Case: "t1", Status: TestStatusPass},
		{Group: "g", Case: "t2", Status: TestStatusFail},
		{Group: "g", Case: "t3", Status: TestStatusSkip},
		{Group: "g", Case: "t4", Status: TestStatusPass},
	}

	s := Summarize(results)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 4, s.Total())
}

func TestSummarize_EmptyStream(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, RunSummary{}, s)
	assert.Equal(t, TestStatusSkip, s.Status())
}

func TestRunSummary_Status(t *testing.T) {
	assert.Equal(t, TestStatusFail, RunSummary{Passed: 5, Failed: 1}.Status())
	assert.Equal(t, TestStatusPass, RunSummary{Passed: 5, Skipped: 2}.Status())
	assert.Equal(t, TestStatusSkip, RunSummary{Skipped: 3}.Status())
}

func TestSentinels(t *testing.T) {
	assert.Equal(t, "modbus_tests setup", SetupSentinel("modbus_tests"))
	assert.Equal(t, "modbus_tests teardown", TeardownSentinel("modbus_tests"))
}

func TestNoArg_AdaptsZeroArgumentCase(t *testing.T) {
	called := false
	fn := NoArg(func() error {
		called = true
		return nil
	})

	require.NoError(t, fn(&RunContext{Group: "g", Case: "t"}))
	assert.True(t, called)

	wantErr := errors.New("boom")
	fn = NoArg(func() error { return wantErr })
	assert.ErrorIs(t, fn(nil), wantErr)
}

func TestRunContext_Handle(t *testing.T) {
	rc := &RunContext{Handles: HandleSet{"gpio": fakeHandle("gpio")}}

	h, ok := rc.Handle("gpio")
	require.True(t, ok)
	assert.Equal(t, "gpio", h.Name())

	_, ok = rc.Handle("spi")
	assert.False(t, ok)
}

type fakeHandle string

func (f fakeHandle) Name() string { return string(f) }

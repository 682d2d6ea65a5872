package types

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// TestStatus represents the possible outcomes of an executed test phase
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
	TestStatusSkip TestStatus = "skip"
)

// TestResult captures the outcome of a single executed case or lifecycle
// phase. Results are immutable once appended to a sink.
type TestResult struct {
	Group     string
	Case      string
	Status    TestStatus
	Message   string // failure detail or skip reason, empty on pass
	Timestamp time.Time
	Duration  time.Duration
}

// RunContext is the execution context handed to a running case or hook.
// It replaces ambient global state: everything a case may touch during a
// run (logging, the active handle set) is reachable from here, and only
// from here.
type RunContext struct {
	Group   string
	Case    string
	Log     log.Logger
	Handles HandleSet
}

// Handle returns the initialized driver registered under the given
// category name, e.g. "gpio" or "modbus".
func (rc *RunContext) Handle(category string) (Handle, bool) {
	h, ok := rc.Handles[category]
	return h, ok
}

// CaseFunc is the signature of a runnable test case. A returned error
// marks the case failed; a panic inside the function is treated
// identically to a returned error.
type CaseFunc func(rc *RunContext) error

// HookFunc is the signature of a group setup or teardown hook.
type HookFunc func(rc *RunContext) error

// NoArg adapts a case function that takes no arguments. It mirrors the
// zero-argument test form: the case neither logs through the framework
// nor touches peripherals via the context.
func NoArg(fn func() error) CaseFunc {
	return func(*RunContext) error {
		return fn()
	}
}

// TestCase is one discovered test function. Immutable once discovered.
type TestCase struct {
	Name string
	Run  CaseFunc
}

// TestGroup is one discovered module's worth of test cases plus optional
// lifecycle hooks, schedulable as a single unit. Setup and Teardown may
// be nil; absence is treated as immediate success.
type TestGroup struct {
	Name     string
	Setup    HookFunc
	Teardown HookFunc
	Cases    []TestCase
}

// SetupSentinel is the reserved case name under which a group's setup
// phase outcome is recorded.
func SetupSentinel(group string) string {
	return fmt.Sprintf("%s setup", group)
}

// TeardownSentinel is the reserved case name under which a group's
// teardown phase outcome is recorded.
func TeardownSentinel(group string) string {
	return fmt.Sprintf("%s teardown", group)
}

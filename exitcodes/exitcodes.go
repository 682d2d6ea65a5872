// Package exitcodes defines the standard exit codes used by hil-runner.
package exitcodes

// Exit code constants used by hil-runner:
//
// * Success (0): all executed tests passed
// * TestFailure (1): one or more tests failed
// * RuntimeErr (2): runtime errors such as resource conflicts, bad
//   configuration or panics
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)

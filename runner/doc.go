// Package runner executes discovered test groups against an initialized
// peripheral handle set.
//
// The main components are:
//   - engine: drives one TestGroup through its lifecycle state machine
//     (Init -> Setup -> Running -> Teardown -> Done), isolating failures
//     per phase and emitting one TestResult per executed case plus
//     synthetic results for setup/teardown phase failures
//   - Orchestrator: sequences groups in discovery order, streams every
//     result into the sink as it is produced, and folds the sink snapshot
//     into the final RunSummary
//
// Groups and cases execute strictly sequentially: peripherals are
// physical, shared, stateful resources, so serialization is part of the
// correctness contract, not an implementation shortcut.
package runner

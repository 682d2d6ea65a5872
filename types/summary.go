package types

// RunSummary aggregates the counters of one run. It is never stored
// independently of the result stream: callers derive it with Summarize
// so counts cannot drift from what was actually recorded.
type RunSummary struct {
	Passed  int
	Failed  int
	Skipped int
}

// Total returns the number of recorded results.
func (s RunSummary) Total() int {
	return s.Passed + s.Failed + s.Skipped
}

// Status folds the summary into a single run status. An empty run is a
// skip; any failure fails the run.
func (s RunSummary) Status() TestStatus {
	switch {
	case s.Failed > 0:
		return TestStatusFail
	case s.Passed > 0:
		return TestStatusPass
	default:
		return TestStatusSkip
	}
}

// Summarize folds a result stream into its summary.
func Summarize(results []TestResult) RunSummary {
	var s RunSummary
	for _, r := range results {
		switch r.Status {
		case TestStatusPass:
			s.Passed++
		case TestStatusFail:
			s.Failed++
		case TestStatusSkip:
			s.Skipped++
		}
	}
	return s
}

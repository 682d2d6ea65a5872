// Package results provides the append-only, ordered log of test results
// that downstream reporting consumes.
package results

import (
	"sync"

	"github.com/micro-hil/go-hil/types"
)

// Sink is an ordered append log of test results. Results are appended as
// they are produced, never deleted, so a crash mid-run leaves a
// best-effort partial log. Concurrent readers observe a monotonically
// growing prefix.
type Sink struct {
	mu      sync.RWMutex
	entries []types.TestResult
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Append records one result. Results are immutable once appended.
func (s *Sink) Append(result types.TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, result)
}

// Snapshot returns the results appended so far, in append order. The
// returned slice is a copy; repeated calls without new appends return
// equal snapshots.
func (s *Sink) Snapshot() []types.TestResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.TestResult, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of results appended so far.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

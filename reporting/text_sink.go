package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/micro-hil/go-hil/types"
)

// TextSummarySink collects results during a run and writes a plain-text
// summary file when the run completes. A reporter polling mid-run reads
// the result sink directly; this sink only renders the final artifact.
type TextSummarySink struct {
	baseDir     string
	testResults map[string][]types.TestResult
}

// NewTextSummarySink creates a sink writing under baseDir.
func NewTextSummarySink(baseDir string) *TextSummarySink {
	return &TextSummarySink{
		baseDir:     baseDir,
		testResults: make(map[string][]types.TestResult),
	}
}

// Consume collects one result for later summary generation. Messages are
// stripped of ANSI escapes so driver output cannot corrupt the file.
func (s *TextSummarySink) Consume(result types.TestResult, runID string) error {
	result.Message = stripansi.Strip(result.Message)
	s.testResults[runID] = append(s.testResults[runID], result)
	return nil
}

// Complete writes testrun-<runID>/summary.log for the given run.
func (s *TextSummarySink) Complete(runID string) error {
	results := s.testResults[runID]

	outputDir := filepath.Join(s.baseDir, "testrun-"+runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	content := formatSummary(runID, results)
	summaryFile := filepath.Join(outputDir, "summary.log")
	if err := os.WriteFile(summaryFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

func formatSummary(runID string, results []types.TestResult) string {
	var b strings.Builder
	summary := types.Summarize(results)

	fmt.Fprintf(&b, "Test Run: %s\n", runID)
	fmt.Fprintf(&b, "Status: %s\n", summary.Status())
	fmt.Fprintf(&b, "Total: %d  Passed: %d  Failed: %d  Skipped: %d\n\n",
		summary.Total(), summary.Passed, summary.Failed, summary.Skipped)

	for _, group := range groupOrder(results) {
		rows := byGroup(results, group)
		stats := types.Summarize(rows)
		fmt.Fprintf(&b, "%s [%s]\n", group, stats.Status())
		for _, r := range rows {
			line := fmt.Sprintf("  %-6s %s", strings.ToUpper(string(r.Status)), r.Case)
			if r.Message != "" {
				line += ": " + r.Message
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

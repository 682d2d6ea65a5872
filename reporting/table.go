// Package reporting renders run artifacts from result-sink snapshots:
// a console table and a plain-text summary file.
package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/micro-hil/go-hil/types"
)

// TableReporter renders a result-sink snapshot as a console table:
// one row per group with its folded counters, tree-prefixed rows for
// the group's cases, and a TOTAL footer.
type TableReporter struct {
	out io.Writer
}

// NewTableReporter creates a reporter writing to out.
func NewTableReporter(out io.Writer) *TableReporter {
	return &TableReporter{out: out}
}

// Render prints the table for one run. The snapshot is consumed in
// append order, so rows appear exactly as results were produced.
func (tr *TableReporter) Render(title string, snapshot []types.TestResult) {
	t := table.NewWriter()
	t.SetOutputMirror(tr.out)
	t.SetTitle(title)

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Passed", "Failed", "Skipped", "Status", "Message",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Message", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, group := range groupOrder(snapshot) {
		rows := byGroup(snapshot, group)
		stats := types.Summarize(rows)
		t.AppendRow(table.Row{
			"Group",
			group,
			formatDuration(totalDuration(rows)),
			stats.Passed,
			stats.Failed,
			stats.Skipped,
			statusString(stats.Status()),
			"",
		})
		for i, r := range rows {
			prefix := "├──"
			if i == len(rows)-1 {
				prefix = "└──"
			}
			t.AppendRow(table.Row{
				"Case",
				fmt.Sprintf("%s %s", prefix, r.Case),
				formatDuration(r.Duration),
				boolToInt(r.Status == types.TestStatusPass),
				boolToInt(r.Status == types.TestStatusFail),
				boolToInt(r.Status == types.TestStatusSkip),
				statusString(r.Status),
				r.Message,
			})
		}
		t.AppendSeparator()
	}

	summary := types.Summarize(snapshot)
	switch summary.Status() {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(totalDuration(snapshot)),
		summary.Passed,
		summary.Failed,
		summary.Skipped,
		statusString(summary.Status()),
		"",
	})

	t.Render()
}

// groupOrder returns group names in first-appearance order.
func groupOrder(snapshot []types.TestResult) []string {
	var order []string
	seen := make(map[string]bool)
	for _, r := range snapshot {
		if !seen[r.Group] {
			seen[r.Group] = true
			order = append(order, r.Group)
		}
	}
	return order
}

func byGroup(snapshot []types.TestResult, group string) []types.TestResult {
	var out []types.TestResult
	for _, r := range snapshot {
		if r.Group == group {
			out = append(out, r)
		}
	}
	return out
}

func totalDuration(rows []types.TestResult) time.Duration {
	var d time.Duration
	for _, r := range rows {
		d += r.Duration
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func statusString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

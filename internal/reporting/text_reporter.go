// internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/xkilldash9x/stagehand/internal/scenario"
)

var statusMarks = map[scenario.Status]string{
	scenario.StatusPassed:  "✓",
	scenario.StatusFailed:  "✗",
	scenario.StatusSkipped: "-",
}

// TextReporter prints each suite as it finishes and a summary on Close.
type TextReporter struct {
	writer io.WriteCloser

	mu     sync.Mutex
	counts scenario.Counts
	suites int
	failed []string
}

func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

func (r *TextReporter) Write(result *scenario.SuiteResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", statusMarks[result.Status], result.Name)
	if len(result.Tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(result.Tags, " "))
	}
	fmt.Fprintf(&b, " (%s)\n", round(result.Duration))

	if result.SetupError != "" {
		fmt.Fprintf(&b, "    setup: %s\n", result.SetupError)
	}
	for _, st := range result.Steps {
		switch st.Status {
		case scenario.StatusFailed:
			fmt.Fprintf(&b, "    %s %s (%s)\n", statusMarks[st.Status], st.Name, round(st.Duration))
			fmt.Fprintf(&b, "        %s\n", indent(st.Error, "        "))
		case scenario.StatusSkipped:
			fmt.Fprintf(&b, "    %s %s (skipped)\n", statusMarks[st.Status], st.Name)
		default:
			fmt.Fprintf(&b, "    %s %s (%s)\n", statusMarks[st.Status], st.Name, round(st.Duration))
		}
	}
	if result.TeardownError != "" {
		fmt.Fprintf(&b, "    teardown: %s\n", result.TeardownError)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c := result.Counts()
	r.counts.Passed += c.Passed
	r.counts.Failed += c.Failed
	r.counts.Skipped += c.Skipped
	r.suites++
	if result.Status == scenario.StatusFailed {
		r.failed = append(r.failed, result.Name)
	}
	_, err := io.WriteString(r.writer, b.String())
	return err
}

// Close prints the summary and closes the writer.
func (r *TextReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := fmt.Sprintf("\n%d suites: %d passed, %d failed, %d skipped\n",
		r.suites, r.counts.Passed, r.counts.Failed, r.counts.Skipped)
	if len(r.failed) > 0 {
		summary += "failed suites: " + strings.Join(r.failed, ", ") + "\n"
	}
	_, writeErr := io.WriteString(r.writer, summary)
	closeErr := r.writer.Close()
	if writeErr != nil {
		return fmt.Errorf("failed to write summary: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}

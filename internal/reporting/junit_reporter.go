// internal/reporting/junit_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/stagehand/internal/scenario"
)

// JUnitReporter writes JUnit XML, the format CI systems ingest for test
// results. Suites become <testsuite> and steps <testcase>.
type JUnitReporter struct {
	writer io.WriteCloser

	mu     sync.Mutex
	doc    *etree.Document
	root   *etree.Element
	totals scenario.Counts
	time   time.Duration
}

func NewJUnitReporter(writer io.WriteCloser) *JUnitReporter {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return &JUnitReporter{
		writer: writer,
		doc:    doc,
		root:   doc.CreateElement("testsuites"),
	}
}

func (r *JUnitReporter) Write(result *scenario.SuiteResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := result.Counts()
	suite := r.root.CreateElement("testsuite")
	suite.CreateAttr("name", result.Name)
	suite.CreateAttr("tests", strconv.Itoa(len(result.Steps)))
	suite.CreateAttr("failures", strconv.Itoa(c.Failed))
	suite.CreateAttr("skipped", strconv.Itoa(c.Skipped))
	suite.CreateAttr("time", seconds(result.Duration))
	suite.CreateAttr("timestamp", result.Started.UTC().Format(time.RFC3339))

	if len(result.Tags) > 0 {
		props := suite.CreateElement("properties")
		for _, tag := range result.Tags {
			p := props.CreateElement("property")
			p.CreateAttr("name", "tag")
			p.CreateAttr("value", tag)
		}
	}

	for _, st := range result.Steps {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", st.Name)
		tc.CreateAttr("classname", result.Name)
		tc.CreateAttr("time", seconds(st.Duration))
		switch st.Status {
		case scenario.StatusFailed:
			f := tc.CreateElement("failure")
			f.CreateAttr("message", st.Error)
			f.SetText(st.Error)
		case scenario.StatusSkipped:
			tc.CreateElement("skipped").CreateAttr("message", st.Error)
		}
	}

	if result.SetupError != "" || result.TeardownError != "" {
		var text string
		if result.SetupError != "" {
			text += "setup: " + result.SetupError + "\n"
		}
		if result.TeardownError != "" {
			text += "teardown: " + result.TeardownError + "\n"
		}
		suite.CreateElement("system-err").SetText(text)
	}

	r.totals.Passed += c.Passed
	r.totals.Failed += c.Failed
	r.totals.Skipped += c.Skipped
	r.time += result.Duration
	return nil
}

// Close writes the document and closes the writer.
func (r *JUnitReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := r.totals.Passed + r.totals.Failed + r.totals.Skipped
	r.root.CreateAttr("tests", strconv.Itoa(total))
	r.root.CreateAttr("failures", strconv.Itoa(r.totals.Failed))
	r.root.CreateAttr("skipped", strconv.Itoa(r.totals.Skipped))
	r.root.CreateAttr("time", seconds(r.time))
	r.doc.Indent(2)

	_, writeErr := r.doc.WriteTo(r.writer)
	closeErr := r.writer.Close()
	if writeErr != nil {
		return fmt.Errorf("failed to write JUnit output: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

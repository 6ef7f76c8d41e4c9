// internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/observability"
	"github.com/xkilldash9x/stagehand/internal/scenario"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonDocument is the top-level shape of the JSON report.
type jsonDocument struct {
	RunID   string                  `json:"run_id"`
	Summary scenario.Counts         `json:"summary"`
	Suites  []*scenario.SuiteResult `json:"suites"`
}

// JSONReporter buffers suite results and writes a single document on Close.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger

	mu  sync.Mutex
	doc jsonDocument
}

func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: observability.GetLogger().Named("json_reporter"),
		doc: jsonDocument{
			RunID:  observability.RunID(),
			Suites: []*scenario.SuiteResult{},
		},
	}
}

func (r *JSONReporter) Write(result *scenario.SuiteResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc.Suites = append(r.doc.Suites, result)
	c := result.Counts()
	r.doc.Summary.Passed += c.Passed
	r.doc.Summary.Failed += c.Failed
	r.doc.Summary.Skipped += c.Skipped
	return nil
}

// Close encodes the document and closes the writer.
func (r *JSONReporter) Close() error {
	startTime := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	encodeErr := encoder.Encode(r.doc)
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode JSON report", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode JSON output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	r.logger.Debug("Wrote JSON report",
		zap.Int("suites", len(r.doc.Suites)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}

package scenario

import "time"

// Status is the outcome of a step or suite.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records one step.
type StepResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	Err error `json:"-"`
}

// SuiteResult records one suite. SetupError and TeardownError carry
// BeforeAll and AfterAll failures.
type SuiteResult struct {
	Name          string        `json:"name"`
	Tags          []string      `json:"tags,omitempty"`
	Status        Status        `json:"status"`
	Steps         []StepResult  `json:"steps"`
	SetupError    string        `json:"setup_error,omitempty"`
	TeardownError string        `json:"teardown_error,omitempty"`
	Started       time.Time     `json:"started"`
	Duration      time.Duration `json:"duration_ns"`
}

// Counts tallies step outcomes.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (c *Counts) add(s Status) {
	switch s {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusSkipped:
		c.Skipped++
	}
}

// Counts tallies the suite's steps.
func (r *SuiteResult) Counts() Counts {
	var c Counts
	for _, s := range r.Steps {
		c.add(s.Status)
	}
	return c
}

// Report is the outcome of a whole run. Suites are in the order they were
// given to the runner, whatever order they finished in.
type Report struct {
	Suites   []*SuiteResult `json:"suites"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration_ns"`
}

// Counts tallies every step of every suite.
func (r *Report) Counts() Counts {
	var c Counts
	for _, s := range r.Suites {
		for _, st := range s.Steps {
			c.add(st.Status)
		}
	}
	return c
}

// Failed reports whether any suite failed.
func (r *Report) Failed() bool {
	for _, s := range r.Suites {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

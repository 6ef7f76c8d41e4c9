// Package scenario runs tagged suites of ordered steps.
//
// A Suite owns the state its steps share, typically an actor holding a
// browser page. BeforeAll acquires that state and AfterAll releases it, so
// every step of a suite sees the same page and the order of Steps matters.
// Different suites share nothing and may run on parallel workers.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrSkipped is recorded for steps that did not run.
var ErrSkipped = errors.New("step skipped")

// Step is one scenario of a suite.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Suite is an ordered list of steps sharing one set of resources.
type Suite struct {
	Name string
	// Tags select the suite from the command line, e.g. "@web".
	Tags []string
	// Serial suites stop at the first failing step and skip the rest,
	// because later steps depend on the page state earlier ones leave.
	Serial bool

	BeforeAll func(ctx context.Context) error
	AfterAll  func(ctx context.Context) error
	Steps     []Step
}

// Validate checks the suite is runnable.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return errors.New("suite name must not be empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("suite %q has no steps", s.Name)
	}
	seen := make(map[string]bool, len(s.Steps))
	for i, st := range s.Steps {
		if st.Name == "" || st.Run == nil {
			return fmt.Errorf("suite %q: step %d needs a name and a body", s.Name, i)
		}
		if seen[st.Name] {
			return fmt.Errorf("suite %q: duplicate step %q", s.Name, st.Name)
		}
		seen[st.Name] = true
	}
	for _, tag := range s.Tags {
		if !strings.HasPrefix(tag, "@") {
			return fmt.Errorf("suite %q: tag %q must start with @", s.Name, tag)
		}
	}
	return nil
}

// Matches reports whether the suite carries any of tags. An empty filter
// matches every suite.
func (s *Suite) Matches(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if slices.Contains(s.Tags, t) {
			return true
		}
	}
	return false
}

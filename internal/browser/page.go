// internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrExpectation marks an assertion that did not hold within the
	// expectation timeout.
	ErrExpectation = errors.New("expectation not met")
	// ErrNoElement marks an action whose locator never matched a visible element.
	ErrNoElement = errors.New("no visible element")
	// ErrSessionClosed is returned by operations on a released session.
	ErrSessionClosed = errors.New("browser session closed")
)

// Page is the set of browser operations actors are built on. Every method
// blocks until the operation completes, the expectation timeout elapses, or
// ctx is done.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, loc Locator, value string) error
	Click(ctx context.Context, loc Locator) error

	ExpectVisible(ctx context.Context, loc Locator) error
	// ExpectText requires the first match's normalized text to equal text.
	ExpectText(ctx context.Context, loc Locator, text string) error
	ExpectContainsText(ctx context.Context, loc Locator, text string) error
	ExpectValue(ctx context.Context, loc Locator, value string) error

	Close(ctx context.Context) error
}

// ExpectationError reports what was expected of a locator and what the page
// last showed.
type ExpectationError struct {
	Locator  string
	Check    string
	Expected string
	Actual   string
}

func (e *ExpectationError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%s: %s: %s (actual: %s)", ErrExpectation, e.Locator, e.Check, e.Actual)
	}
	return fmt.Sprintf("%s: %s: %s %q (actual: %q)", ErrExpectation, e.Locator, e.Check, e.Expected, e.Actual)
}

func (e *ExpectationError) Unwrap() error { return ErrExpectation }

// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var _ Page = (*Session)(nil)

var errTimedOut = errors.New("expectation timeout elapsed")

// Session is one browser tab driven over CDP. It is not safe for
// overlapping operations; callers await each one before issuing the next.
type Session struct {
	id     string
	logger *zap.Logger

	// tabCtx carries the chromedp target. All operations run against a
	// context combined from it and the caller's.
	tabCtx    context.Context
	tabCancel context.CancelFunc

	expectTimeout time.Duration
	pollInterval  time.Duration
	navTimeout    time.Duration

	refSeq atomic.Uint64

	mu      sync.Mutex
	closed  bool
	onClose func()
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.tabCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the document body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	s.logger.Debug("Navigating", zap.String("url", url))
	err := s.run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Fill replaces the value of the first visible match with value, typing it
// key by key so page scripts observe input events.
func (s *Session) Fill(ctx context.Context, loc Locator, value string) error {
	sel, err := s.tag(ctx, loc)
	if err != nil {
		return err
	}
	actCtx, cancel := context.WithTimeout(ctx, s.expectTimeout)
	defer cancel()
	err = s.run(actCtx,
		chromedp.Focus(sel, chromedp.ByQuery),
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("filling %s: %w", loc, err)
	}
	return nil
}

// Click clicks the first visible match.
func (s *Session) Click(ctx context.Context, loc Locator) error {
	sel, err := s.tag(ctx, loc)
	if err != nil {
		return err
	}
	actCtx, cancel := context.WithTimeout(ctx, s.expectTimeout)
	defer cancel()
	if err := s.run(actCtx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("clicking %s: %w", loc, err)
	}
	return nil
}

// tag waits for loc to have a visible match and marks it with a one-off
// attribute, returning a CSS selector that addresses exactly that node.
func (s *Session) tag(ctx context.Context, loc Locator) (string, error) {
	ref := strconv.FormatUint(s.refSeq.Add(1), 10)
	res, err := s.waitFor(ctx, loc, ref, func(r probeResult) bool { return r.Tagged })
	if errors.Is(err, errTimedOut) {
		return "", fmt.Errorf("%w: %s (%s)", ErrNoElement, loc, describeMatches(res))
	}
	if err != nil {
		return "", fmt.Errorf("locating %s: %w", loc, err)
	}
	return fmt.Sprintf(`[%s="%s"]`, refAttr, ref), nil
}

func (s *Session) ExpectVisible(ctx context.Context, loc Locator) error {
	return s.expect(ctx, loc, "to be visible", "",
		func(r probeResult) bool { return r.Visible },
		describeMatches)
}

func (s *Session) ExpectText(ctx context.Context, loc Locator, text string) error {
	want := normalizeSpace(text)
	return s.expect(ctx, loc, "to have text", want,
		func(r probeResult) bool { return r.Count > 0 && r.Text == want },
		func(r probeResult) string { return r.Text })
}

func (s *Session) ExpectContainsText(ctx context.Context, loc Locator, text string) error {
	want := normalizeSpace(text)
	return s.expect(ctx, loc, "to contain text", want,
		func(r probeResult) bool { return r.Count > 0 && strings.Contains(r.Text, want) },
		func(r probeResult) string { return r.Text })
}

func (s *Session) ExpectValue(ctx context.Context, loc Locator, value string) error {
	return s.expect(ctx, loc, "to have value", value,
		func(r probeResult) bool { return r.Count > 0 && r.Value == value },
		func(r probeResult) string { return r.Value })
}

func (s *Session) expect(
	ctx context.Context,
	loc Locator,
	check, expected string,
	ok func(probeResult) bool,
	actual func(probeResult) string,
) error {
	res, err := s.waitFor(ctx, loc, "", ok)
	if errors.Is(err, errTimedOut) {
		return &ExpectationError{Locator: loc.String(), Check: check, Expected: expected, Actual: actual(res)}
	}
	if err != nil {
		return fmt.Errorf("expecting %s %s: %w", loc, check, err)
	}
	return nil
}

// waitFor re-probes loc every poll interval until ok accepts the result. It
// returns errTimedOut with the last observed result once the expectation
// timeout elapses. Probe errors are transient while a navigation swaps the
// execution context, so only the caller's context ends the wait early.
func (s *Session) waitFor(ctx context.Context, loc Locator, ref string, ok func(probeResult) bool) (probeResult, error) {
	expr, err := loc.probe(ref)
	if err != nil {
		return probeResult{}, err
	}

	timer := time.NewTimer(s.expectTimeout)
	defer timer.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last probeResult
	for {
		var res probeResult
		err := s.run(ctx, chromedp.Evaluate(expr, &res))
		switch {
		case err == nil:
			last = res
			if ok(res) {
				return res, nil
			}
		case errors.Is(err, ErrSessionClosed):
			return last, err
		default:
			s.logger.Debug("Locator probe failed, retrying.", zap.Stringer("locator", loc), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-timer.C:
			return last, errTimedOut
		case <-ticker.C:
		}
	}
}

// Close closes the tab. Calling it more than once is a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		defer onClose()
	}

	// chromedp.Cancel closes the target gracefully before canceling.
	if err := chromedp.Cancel(s.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("Graceful tab close failed.", zap.Error(err))
	}
	s.tabCancel()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	select {
	case <-s.tabCtx.Done():
		s.logger.Debug("Browser session closed.")
	case <-waitCtx.Done():
		s.logger.Warn("Deadline exceeded waiting for browser session to close.", zap.Error(waitCtx.Err()))
	}
	return nil
}

func describeMatches(r probeResult) string {
	switch {
	case r.Count == 0:
		return "no match"
	case !r.Visible:
		return fmt.Sprintf("%d match(es), none visible", r.Count)
	default:
		return fmt.Sprintf("%d match(es)", r.Count)
	}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package scenario

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stagehand/internal/config"
)

func newTestRunner(t *testing.T, workers int, tags ...string) *Runner {
	t.Helper()
	return NewRunner(config.RunnerConfig{Workers: workers, Tags: tags}, zaptest.NewLogger(t))
}

func pass(context.Context) error { return nil }

func TestRunner_SerialSuiteSkipsAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	var order []string
	record := func(name string, err error) Step {
		return Step{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return err
		}}
	}
	boom := errors.New("badge shows 2")
	suite := &Suite{
		Name:   "checkout",
		Tags:   []string{"@web"},
		Serial: true,
		Steps: []Step{
			record("logs in", nil),
			record("adds products", boom),
			record("opens cart", nil),
		},
	}

	report, err := newTestRunner(t, 1).Run(context.Background(), []*Suite{suite})
	require.NoError(t, err)
	require.Len(t, report.Suites, 1)

	res := report.Suites[0]
	assert.Equal(t, []string{"logs in", "adds products"}, order)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, StatusPassed, res.Steps[0].Status)
	assert.ErrorIs(t, res.Steps[1].Err, boom)
	assert.Equal(t, StatusSkipped, res.Steps[2].Status)
	assert.ErrorIs(t, res.Steps[2].Err, ErrSkipped)
	assert.Equal(t, Counts{Passed: 1, Failed: 1, Skipped: 1}, report.Counts())
	assert.True(t, report.Failed())
}

func TestRunner_NonSerialSuiteRunsEveryStep(t *testing.T) {
	var ran atomic.Int32
	suite := &Suite{
		Name: "weather",
		Steps: []Step{
			{Name: "coordinates", Run: func(context.Context) error { ran.Add(1); return errors.New("403") }},
			{Name: "postcode", Run: func(context.Context) error { ran.Add(1); return nil }},
		},
	}

	report, err := newTestRunner(t, 1).Run(context.Background(), []*Suite{suite})
	require.NoError(t, err)
	assert.EqualValues(t, 2, ran.Load())
	assert.Equal(t, Counts{Passed: 1, Failed: 1}, report.Counts())
}

func TestRunner_SetupFailureBlocksSuiteButRunsTeardown(t *testing.T) {
	var tornDown bool
	suite := &Suite{
		Name:      "checkout",
		Serial:    true,
		BeforeAll: func(context.Context) error { return errors.New("chrome not found") },
		AfterAll:  func(context.Context) error { tornDown = true; return nil },
		Steps: []Step{
			{Name: "logs in", Run: func(context.Context) error { assert.Fail(t, "step must not run"); return nil }},
		},
	}
	other := &Suite{Name: "weather", Steps: []Step{{Name: "postcode", Run: pass}}}

	report, err := newTestRunner(t, 2).Run(context.Background(), []*Suite{suite, other})
	require.NoError(t, err)

	assert.True(t, tornDown)
	assert.Equal(t, StatusFailed, report.Suites[0].Status)
	assert.Contains(t, report.Suites[0].SetupError, "chrome not found")
	assert.Equal(t, StatusSkipped, report.Suites[0].Steps[0].Status)
	assert.Equal(t, StatusPassed, report.Suites[1].Status, "other suites are unaffected")
}

func TestRunner_TeardownFailureFailsSuite(t *testing.T) {
	suite := &Suite{
		Name:     "checkout",
		AfterAll: func(context.Context) error { return errors.New("close failed") },
		Steps:    []Step{{Name: "logs in", Run: pass}},
	}
	report, err := newTestRunner(t, 1).Run(context.Background(), []*Suite{suite})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Suites[0].Status)
	assert.Equal(t, "close failed", report.Suites[0].TeardownError)
}

func TestRunner_PanicBecomesFailure(t *testing.T) {
	suite := &Suite{
		Name: "random",
		Steps: []Step{{Name: "picks from nothing", Run: func(context.Context) error {
			var empty []int
			_ = empty[0]
			return nil
		}}},
	}
	report, err := newTestRunner(t, 1).Run(context.Background(), []*Suite{suite})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Suites[0].Steps[0].Status)
	assert.Contains(t, report.Suites[0].Steps[0].Error, "panic")
}

func TestRunner_TagFilter(t *testing.T) {
	web := &Suite{Name: "checkout", Tags: []string{"@web"}, Steps: []Step{{Name: "a", Run: pass}}}
	api := &Suite{Name: "weather", Tags: []string{"@api"}, Steps: []Step{{Name: "b", Run: pass}}}

	report, err := newTestRunner(t, 2, "@api").Run(context.Background(), []*Suite{web, api})
	require.NoError(t, err)
	require.Len(t, report.Suites, 1)
	assert.Equal(t, "weather", report.Suites[0].Name)

	report, err = newTestRunner(t, 2).Run(context.Background(), []*Suite{web, api})
	require.NoError(t, err)
	assert.Len(t, report.Suites, 2)
}

func TestRunner_WorkersBoundConcurrencyAndKeepOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var active, peak int
	slow := func(context.Context) error {
		mu.Lock()
		active++
		peak = max(peak, active)
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}

	var suites []*Suite
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		suites = append(suites, &Suite{Name: name, Steps: []Step{{Name: "step", Run: slow}}})
	}

	var done atomic.Int32
	r := newTestRunner(t, 2)
	r.OnSuiteDone(func(*SuiteResult) { done.Add(1) })
	report, err := r.Run(context.Background(), suites)
	require.NoError(t, err)

	assert.LessOrEqual(t, peak, 2)
	assert.EqualValues(t, 5, done.Load())
	for i, s := range report.Suites {
		assert.Equal(t, suites[i].Name, s.Name)
	}
	assert.False(t, report.Failed())
}

func TestRunner_CancelledContextSkipsRemainingSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var afterAllErr error
	suite := &Suite{
		Name: "checkout",
		AfterAll: func(ctx context.Context) error {
			afterAllErr = ctx.Err()
			return nil
		},
		Steps: []Step{
			{Name: "first", Run: func(context.Context) error { cancel(); return nil }},
			{Name: "second", Run: pass},
		},
	}

	report, err := newTestRunner(t, 1).Run(ctx, []*Suite{suite})
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, report.Suites[0].Steps[0].Status)
	assert.Equal(t, StatusSkipped, report.Suites[0].Steps[1].Status)
	assert.ErrorIs(t, report.Suites[0].Steps[1].Err, context.Canceled)
	assert.NoError(t, afterAllErr, "teardown context is not cancelled")
}

func TestRunner_RejectsMalformedSuites(t *testing.T) {
	tests := []struct {
		name  string
		suite *Suite
	}{
		{"NoName", &Suite{Steps: []Step{{Name: "a", Run: pass}}}},
		{"NoSteps", &Suite{Name: "x"}},
		{"NilBody", &Suite{Name: "x", Steps: []Step{{Name: "a"}}}},
		{"Duplicate", &Suite{Name: "x", Steps: []Step{{Name: "a", Run: pass}, {Name: "a", Run: pass}}}},
		{"BadTag", &Suite{Name: "x", Tags: []string{"web"}, Steps: []Step{{Name: "a", Run: pass}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestRunner(t, 1).Run(context.Background(), []*Suite{tt.suite})
			assert.Error(t, err)
		})
	}
}

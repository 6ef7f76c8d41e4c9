package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/stagehand/internal/config"
)

// Runner executes suites on a bounded number of workers. Each suite runs on a
// single worker from BeforeAll through AfterAll.
type Runner struct {
	workers int
	tags    []string
	logger  *zap.Logger
	// done, when set, receives each suite result as soon as it is final.
	done func(*SuiteResult)
}

// NewRunner configures a runner from the runner section of the config.
func NewRunner(cfg config.RunnerConfig, logger *zap.Logger) *Runner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		tags:    cfg.Tags,
		logger:  logger.Named("runner"),
	}
}

// OnSuiteDone registers fn to be called with every finished suite. Calls may
// come from several workers at once.
func (r *Runner) OnSuiteDone(fn func(*SuiteResult)) { r.done = fn }

// Run executes the suites matching the runner's tags. Step and suite
// failures are reported in the returned Report, not as an error; an error
// means the suites themselves are malformed.
func (r *Runner) Run(ctx context.Context, suites []*Suite) (*Report, error) {
	selected := make([]*Suite, 0, len(suites))
	for _, s := range suites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if s.Matches(r.tags) {
			selected = append(selected, s)
		}
	}
	r.logger.Info("Starting run.",
		zap.Int("suites", len(selected)),
		zap.Int("filtered_out", len(suites)-len(selected)),
		zap.Strings("tags", r.tags),
		zap.Int("workers", r.workers),
	)

	report := &Report{
		Suites:  make([]*SuiteResult, len(selected)),
		Started: time.Now(),
	}

	// Workers never return an error: one suite failing must not cancel others.
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, s := range selected {
		g.Go(func() error {
			res := r.runSuite(ctx, s)
			report.Suites[i] = res
			if r.done != nil {
				r.done(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.Started)
	c := report.Counts()
	r.logger.Info("Run finished.",
		zap.Int("passed", c.Passed),
		zap.Int("failed", c.Failed),
		zap.Int("skipped", c.Skipped),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *Runner) runSuite(ctx context.Context, s *Suite) *SuiteResult {
	log := r.logger.With(zap.String("suite", s.Name))
	res := &SuiteResult{
		Name:    s.Name,
		Tags:    s.Tags,
		Steps:   make([]StepResult, 0, len(s.Steps)),
		Started: time.Now(),
	}
	log.Info("Suite started.", zap.Bool("serial", s.Serial))

	// A suite that cannot acquire its resources runs none of its steps.
	var blocked error
	if ctx.Err() != nil {
		blocked = ctx.Err()
	} else if s.BeforeAll != nil {
		if err := call(ctx, s.BeforeAll); err != nil {
			log.Error("Suite setup failed.", zap.Error(err))
			res.SetupError = err.Error()
			blocked = fmt.Errorf("setup failed: %w", err)
		}
	}

	for _, st := range s.Steps {
		if blocked == nil && ctx.Err() != nil {
			blocked = ctx.Err()
		}
		if blocked != nil {
			res.Steps = append(res.Steps, skipped(st.Name, blocked))
			continue
		}

		sr := runStep(ctx, st)
		res.Steps = append(res.Steps, sr)
		if sr.Status == StatusFailed {
			log.Warn("Step failed.", zap.String("step", st.Name), zap.Error(sr.Err))
			if s.Serial {
				blocked = fmt.Errorf("previous step %q failed", st.Name)
			}
		} else {
			log.Debug("Step passed.", zap.String("step", st.Name), zap.Duration("duration", sr.Duration))
		}
	}

	if s.AfterAll != nil {
		// Teardown runs even when the run was cancelled.
		if err := call(context.WithoutCancel(ctx), s.AfterAll); err != nil {
			log.Error("Suite teardown failed.", zap.Error(err))
			res.TeardownError = err.Error()
		}
	}

	res.Duration = time.Since(res.Started)
	res.Status = suiteStatus(res)
	c := res.Counts()
	log.Info("Suite finished.",
		zap.String("status", string(res.Status)),
		zap.Int("passed", c.Passed),
		zap.Int("failed", c.Failed),
		zap.Int("skipped", c.Skipped),
		zap.Duration("duration", res.Duration),
	)
	return res
}

func runStep(ctx context.Context, st Step) StepResult {
	start := time.Now()
	err := call(ctx, st.Run)
	sr := StepResult{Name: st.Name, Status: StatusPassed, Duration: time.Since(start)}
	if err != nil {
		sr.Status = StatusFailed
		sr.Err = err
		sr.Error = err.Error()
	}
	return sr
}

func skipped(name string, reason error) StepResult {
	err := fmt.Errorf("%w: %w", ErrSkipped, reason)
	return StepResult{Name: name, Status: StatusSkipped, Err: err, Error: err.Error()}
}

// call runs fn, turning a panic into an error so one broken step cannot take
// down the worker.
func call(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}

func suiteStatus(res *SuiteResult) Status {
	if res.SetupError != "" || res.TeardownError != "" {
		return StatusFailed
	}
	c := res.Counts()
	switch {
	case c.Failed > 0:
		return StatusFailed
	case c.Passed == 0 && c.Skipped > 0:
		return StatusSkipped
	default:
		return StatusPassed
	}
}

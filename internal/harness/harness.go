package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/auramodel/internal/config"
	"github.com/roach88/auramodel/internal/testutil"
)

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string { return uuid.NewString() }

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRunIDs replaces the UUID generator used for Result.RunID.
func WithRunIDs(g IDGenerator) Option {
	return func(r *Runner) { r.runIDs = g }
}

// Runner evaluates scenarios against the kernels.
//
// A Runner holds no per-scenario state, so Run may be called from
// several goroutines at once; each call gets its own sequence clock.
type Runner struct {
	config config.Config
	logger *slog.Logger
	runIDs IDGenerator
}

// NewRunner creates a runner using cfg for aggregator, evaluator and
// clock policy defaults that individual checks do not override.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs: uuidGenerator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a scenario with a default runner.
func Run(scenario *Scenario, cfg config.Config) (*Result, error) {
	return NewRunner(cfg).Run(scenario)
}

// Run executes a test scenario and returns the result.
//
// Checks are evaluated in order. A check whose observed output differs
// from its expect block adds an error carrying a go-cmp diff; later
// checks still run. The returned error is reserved for checks that could
// not be evaluated at all.
func (r *Runner) Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewDeterministicClock()
	result := NewResult(scenario.Name, r.runIDs.Generate())

	r.logger.Info("scenario started",
		"scenario", scenario.Name,
		"run_id", result.RunID,
		"checks", len(scenario.Checks))

	for i := range scenario.Checks {
		check := &scenario.Checks[i]
		label := check.label(i)

		ev, err := r.evaluate(check)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}

		seq := clock.Next()
		result.AddTrace(seq, label, check.Kernel, ev.input, ev.output)

		want := expected(check.Expect, ev.output)
		if diff := cmp.Diff(want, ev.output); diff != "" {
			result.AddError(fmt.Sprintf("%s: output mismatch (-want +got):\n%s", label, diff))
			r.logger.Warn("check failed",
				"scenario", scenario.Name,
				"check", label,
				"seq", seq)
			continue
		}

		r.logger.Debug("check passed",
			"scenario", scenario.Name,
			"check", label,
			"kernel", check.Kernel,
			"seq", seq)
	}

	r.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"run_id", result.RunID,
		"pass", result.Pass)

	return result, nil
}

// RunAll executes scenarios concurrently, at most parallel at a time
// (parallel <= 0 means no limit). Results are returned in input order.
// The first evaluation error cancels scenarios that have not started.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, s := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Run(s)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

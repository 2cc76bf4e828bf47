package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/core"
	"github.com/poiesic/reqtrace/coverage"
	"github.com/poiesic/reqtrace/matching"
	"github.com/poiesic/reqtrace/workbook"
)

// ProviderFactory builds a fresh embedding provider for one job.
type ProviderFactory func() (ai.Provider, error)

// Job is one ranking run.
type Job struct {
	Name      string
	Source    workbook.Source
	ChildMap  core.ColumnMapping
	ParentMap core.ColumnMapping

	// ChildExtra and ParentExtra name the pass-through columns copied into
	// each row. Nil copies none.
	ChildExtra  []string
	ParentExtra []string

	// Output is written with workbook.WriteFile when set.
	Output      string
	OutputSheet string
}

// Result is the outcome of one Job.
type Result struct {
	Job      Job
	Matrix   *core.TraceMatrix
	Report   core.ValidationReport
	Attempts int
	Elapsed  time.Duration
	Err      error
}

// Runner executes jobs on a bounded worker pool.
type Runner struct {
	factory     ProviderFactory
	config      matching.Config
	threshold   float64
	poolSize    int
	maxAttempts int
	baseDelay   time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithPoolSize sets the number of jobs run at once.
func WithPoolSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			return fmt.Errorf("pool size must be at least 1, got %d", size)
		}
		r.poolSize = size
		return nil
	}
}

// WithRetry sets how often a job is attempted and the first backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(r *Runner) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.maxAttempts = maxAttempts
		r.baseDelay = baseDelay
		return nil
	}
}

// WithThreshold sets the coverage threshold passed to coverage.Validate.
func WithThreshold(threshold float64) Option {
	return func(r *Runner) error {
		r.threshold = threshold
		return nil
	}
}

// WithProgress reports finished jobs to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) error {
		r.progress = w
		return nil
	}
}

// WithLogger sets the logger used by the runner and its rankers.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner. cfg is copied; nil means matching.DefaultConfig.
func NewRunner(factory ProviderFactory, cfg *matching.Config, opts ...Option) (*Runner, error) {
	if factory == nil {
		return nil, ErrProviderFactoryRequired
	}
	if cfg == nil {
		cfg = matching.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		factory:     factory,
		config:      *cfg,
		threshold:   coverage.DefaultThreshold,
		poolSize:    max(1, runtime.NumCPU()/2),
		maxAttempts: 3,
		baseDelay:   time.Second,
		logger:      slog.Default().With("component", "batch"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run executes jobs and returns one Result per job in input order. It
// blocks until every job has finished. The returned error joins the
// errors of failed jobs; individual failures are also on each Result.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(min(r.poolSize, len(jobs)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var progress *Progress
	if r.progress != nil {
		progress = NewProgress(r.progress, len(jobs))
		progress.Start()
		defer progress.Finish()
	}

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = r.runJob(ctx, jobs[i])
			if progress != nil {
				progress.JobDone(results[i].Err != nil)
			}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = Result{Job: jobs[i], Err: submitErr}
		}
	}
	wg.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Job.Name, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *Runner) runJob(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	start := time.Now()
	logger := r.logger.With("job", job.Name)

	res.Err = RetryWithBackoff(ctx, func() error {
		res.Attempts++
		err := r.runOnce(ctx, job, &res, logger)
		if err != nil && !retryable(err) {
			return Permanent(err)
		}
		return err
	}, r.maxAttempts, r.baseDelay)
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		logger.Error("job failed", "attempts", res.Attempts, "error", res.Err)
	} else {
		logger.Info("job finished",
			"rows", len(res.Matrix.Rows),
			"orphans", len(res.Report.OrphanChildren),
			"childless", len(res.Report.ChildlessParents),
			"elapsed", res.Elapsed)
	}
	return res
}

func (r *Runner) runOnce(ctx context.Context, job Job, res *Result, logger *slog.Logger) error {
	in, err := workbook.Load(job.Source, job.ChildMap, job.ParentMap)
	if err != nil {
		return err
	}

	var extras matching.Extras
	if extras.Child, err = in.ChildTable.SelectExtras(job.ChildMap, job.ChildExtra); err != nil {
		return err
	}
	if extras.Parent, err = in.ParentTable.SelectExtras(job.ParentMap, job.ParentExtra); err != nil {
		return err
	}

	provider, err := r.factory()
	if err != nil {
		return err
	}
	defer provider.Close()

	ranker, err := matching.NewRanker(provider.Embedder(), &r.config, matching.WithLogger(logger))
	if err != nil {
		return err
	}

	matrix, err := ranker.Rank(ctx, in.Children, in.Parents, extras)
	if err != nil {
		return err
	}
	res.Matrix = matrix
	res.Report = coverage.Validate(matrix, in.Children, in.Parents, r.threshold)

	if job.Output != "" {
		if err := workbook.WriteFile(job.Output, job.OutputSheet, matrix); err != nil {
			return fmt.Errorf("write %q: %w", job.Output, err)
		}
	}
	return nil
}

// retryable reports whether a failed run may succeed on a second attempt.
// Only embedding backend failures qualify; bad input or config never will.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ai.ErrEmbeddingBackend)
}

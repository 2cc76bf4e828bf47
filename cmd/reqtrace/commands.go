package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/reqtrace/batch"
	"github.com/poiesic/reqtrace/workbook"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// exitCoverageGaps is the status used by --fail-on-gaps.
const exitCoverageGaps = 2

func matchCommand(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	job := matchJob(c)
	if err := job.Source.Validate(); err != nil {
		return err
	}

	res, err := runMatch(c, s, job)
	if err != nil {
		return err
	}
	return summarize(c, s, res)
}

func runMatch(c *cli.Context, s *settings, job batch.Job) (batch.Result, error) {
	runner, err := newRunner(c, s)
	if err != nil {
		return batch.Result{}, err
	}
	results, err := runner.Run(c.Context, []batch.Job{job})
	if err != nil {
		return batch.Result{}, fmt.Errorf("matching failed: %w", err)
	}
	return results[0], nil
}

// summarize prints the preview and the coverage report for one result.
func summarize(c *cli.Context, s *settings, res batch.Result) error {
	out := c.App.Writer

	methods, err := parseMethods(c.StringSlice("filter-method"))
	if err != nil {
		return err
	}
	rows := filterRows(res.Matrix.Rows, methods, c.Float64("min-score"))
	printPreview(out, rows, len(res.Matrix.Rows), c.Int("preview"))
	printReport(out, res.Report, s.threshold)

	if job := res.Job; job.Output != "" {
		fmt.Fprintf(out, "\nTrace matrix written to %s\n", job.Output)
	}
	if c.Bool("fail-on-gaps") && res.Report.HasWarnings() {
		return cli.Exit("coverage gaps found", exitCoverageGaps)
	}
	return nil
}

func batchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one workbook pattern is required")
	}
	s, err := loadSettings(c)
	if err != nil {
		return err
	}

	suffix := c.String("suffix")
	found, err := batch.Discover(c.Args().Slice(), suffix)
	if err != nil {
		return err
	}
	// Both tables come from one workbook, which a CSV file cannot hold.
	var paths []string
	for _, path := range found {
		if format, _ := workbook.DetectFormat(path); format != workbook.FormatXLSX {
			slog.Warn("skipping non-workbook input", "path", path)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return batch.ErrNoInputs
	}
	if dir := c.String("out-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	childMap, parentMap := mappings(c)
	jobs := make([]batch.Job, len(paths))
	for i, path := range paths {
		jobs[i] = batch.Job{
			Name: path,
			Source: workbook.Source{
				ChildPath:   path,
				ChildSheet:  c.String("child-sheet"),
				ParentPath:  path,
				ParentSheet: c.String("parent-sheet"),
			},
			ChildMap:    childMap,
			ParentMap:   parentMap,
			ChildExtra:  c.StringSlice("child-extra"),
			ParentExtra: c.StringSlice("parent-extra"),
			Output:      batch.OutputPath(path, c.String("out-dir"), suffix),
			OutputSheet: c.String("output-sheet"),
		}
	}

	opts := []batch.Option{batch.WithPoolSize(max(1, c.Int("workers")))}
	if isTerminal(os.Stderr) {
		opts = append(opts, batch.WithProgress(os.Stderr))
	}
	runner, err := newRunner(c, s, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Workbooks: %d\n", len(jobs))
	fmt.Fprintf(os.Stderr, "Sheets: %s -> %s\n", c.String("child-sheet"), c.String("parent-sheet"))
	fmt.Fprintln(os.Stderr)

	results, runErr := runner.Run(c.Context, jobs)
	printBatchSummary(c.App.Writer, results)
	if runErr != nil {
		return fmt.Errorf("batch finished with failures: %w", runErr)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	job := matchJob(c)
	if err := job.Source.Validate(); err != nil {
		return err
	}

	files := []string{job.Source.ChildPath, job.Source.ParentPath, s.configPath}
	if s.matching.RulesEnabled {
		files = append(files, s.matching.LexiconPath)
	}
	watcher, err := batch.NewWatcher(files, c.Duration("debounce"), nil)
	if err != nil {
		return err
	}

	run := func() {
		// Pick up edits to the config file or lexicon as well.
		current, err := loadSettings(c)
		if err != nil {
			slog.Error("invalid configuration, keeping previous run", "error", err)
			return
		}
		res, err := runMatch(c, current, job)
		if err != nil {
			slog.Error("run failed", "error", err)
			return
		}
		if err := summarize(c, current, res); err != nil {
			var exitErr cli.ExitCoder
			if !errors.As(err, &exitErr) {
				slog.Error("summary failed", "error", err)
			}
		}
	}

	run()
	slog.Info("watching for changes", "child", job.Source.ChildPath, "parent", job.Source.ParentPath)
	return watcher.Run(c.Context, func(_ context.Context, changed []string) {
		slog.Info("inputs changed, re-running", "files", changed)
		run()
	})
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

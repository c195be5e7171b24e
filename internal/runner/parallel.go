package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/processing"
)

// Parallel submits every file as an independent unit of work to a bounded
// worker pool. Workers share no mutable state; each receives an immutable
// file path and owns its result. Results are collected in completion order.
type Parallel struct {
	transformer *processing.Transformer
	workers     int
	logger      *slog.Logger
}

// NewParallel creates the parallel strategy. workers <= 0 sizes the pool to
// the host's available compute units.
func NewParallel(transformer *processing.Transformer, workers int, logger *slog.Logger) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parallel{
		transformer: transformer,
		workers:     workers,
		logger:      logger.With(slog.String("component", "runner"), slog.String("strategy", "parallel")),
	}
}

// fileOutcome travels over the completion channel from workers to the
// collector.
type fileOutcome struct {
	file     string
	artifact *processing.Artifact
	err      error
}

// Run fans the staged files out to the worker pool and collects results as
// they complete. A failure (or panic) inside one worker's transformation is
// contained to that file; the progress callback fires on completion count.
func (p *Parallel) Run(ctx context.Context, stagedPaths []string, progress ProgressFunc) *BatchResult {
	start := time.Now()
	result := &BatchResult{Strategy: "parallel"}
	total := len(stagedPaths)

	p.logger.InfoContext(ctx, "batch started",
		slog.Int("file_count", total),
		slog.Int("workers", p.workers))

	completions := make(chan fileOutcome)

	group := new(errgroup.Group)
	group.SetLimit(p.workers)

	go func() {
		for _, path := range stagedPaths {
			path := path
			group.Go(func() error {
				completions <- p.transformOne(ctx, path)
				// Per-file errors are result values, never group
				// failures: one bad file must not stop the pool.
				return nil
			})
		}
		group.Wait()
		close(completions)
	}()

	completed := 0
	for outcome := range completions {
		completed++
		if outcome.err != nil {
			result.Failures = append(result.Failures, FileFailure{File: outcome.file, Err: outcome.err})
		} else {
			result.Artifacts = append(result.Artifacts, outcome.artifact)
		}

		if progress != nil {
			progress(float64(completed)/float64(total),
				fmt.Sprintf("Completed %s (%d/%d)", outcome.file, completed, total))
		}
	}

	result.Elapsed = time.Since(start)
	p.logger.InfoContext(ctx, "batch completed",
		slog.Int("processed", result.ProcessedCount()),
		slog.Int("failed", result.FailedCount()),
		slog.Duration("elapsed", result.Elapsed))

	return result
}

// transformOne runs the transformation unit for a single file, converting a
// worker panic into a per-file failure so it cannot crash the pool.
func (p *Parallel) transformOne(ctx context.Context, path string) (outcome fileOutcome) {
	file := filepath.Base(path)
	outcome = fileOutcome{file: file}

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "worker panicked",
				slog.String("file", file),
				slog.Any("panic", r))
			outcome.artifact = nil
			outcome.err = gwerrors.ProcessingError(file, fmt.Sprintf("transformation panicked: %v", r), nil)
		}
	}()

	outcome.artifact, outcome.err = p.transformer.Transform(ctx, path)
	return outcome
}

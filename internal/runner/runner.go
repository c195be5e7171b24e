// Package runner drives the transformation unit over a set of staged files
// under two interchangeable execution strategies: sequential and parallel.
package runner

import (
	"context"
	"time"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/processing"
)

// ProgressFunc receives progress updates while a batch runs. fraction is in
// [0,1]; message is a human-readable status line.
type ProgressFunc func(fraction float64, message string)

// FileFailure is one isolated per-file transformation failure.
type FileFailure struct {
	File string
	Err  error
}

// BatchResult is the outcome of driving the transformation unit over one
// file set. Artifacts appear in completion order, which for the parallel
// strategy is generally not the submission order.
type BatchResult struct {
	Strategy  string
	Artifacts []*processing.Artifact
	Failures  []FileFailure
	Elapsed   time.Duration
}

// ProcessedCount returns the number of successful transformations.
func (r *BatchResult) ProcessedCount() int {
	return len(r.Artifacts)
}

// FailedCount returns the number of per-file failures.
func (r *BatchResult) FailedCount() int {
	return len(r.Failures)
}

// Strategy processes an ordered list of staged file paths through the
// transformation unit. Implementations differ only in scheduling.
type Strategy interface {
	Run(ctx context.Context, stagedPaths []string, progress ProgressFunc) *BatchResult
}

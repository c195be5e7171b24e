package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/processing"
)

// Sequential processes files strictly in input order, one at a time. It is
// the deterministic correctness and performance baseline.
type Sequential struct {
	transformer *processing.Transformer
	logger      *slog.Logger
}

// NewSequential creates the sequential strategy.
func NewSequential(transformer *processing.Transformer, logger *slog.Logger) *Sequential {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequential{
		transformer: transformer,
		logger:      logger.With(slog.String("component", "runner"), slog.String("strategy", "sequential")),
	}
}

// Run transforms every staged file in order. A per-file failure is recorded
// and the batch continues; the progress callback fires after each file.
func (s *Sequential) Run(ctx context.Context, stagedPaths []string, progress ProgressFunc) *BatchResult {
	start := time.Now()
	result := &BatchResult{Strategy: "sequential"}
	total := len(stagedPaths)

	s.logger.InfoContext(ctx, "batch started", slog.Int("file_count", total))

	for i, path := range stagedPaths {
		artifact, err := s.transformer.Transform(ctx, path)
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{File: filepath.Base(path), Err: err})
		} else {
			result.Artifacts = append(result.Artifacts, artifact)
		}

		if progress != nil {
			progress(float64(i+1)/float64(total),
				fmt.Sprintf("Processed %s (%d/%d)", filepath.Base(path), i+1, total))
		}
	}

	result.Elapsed = time.Since(start)
	s.logger.InfoContext(ctx, "batch completed",
		slog.Int("processed", result.ProcessedCount()),
		slog.Int("failed", result.FailedCount()),
		slog.Duration("elapsed", result.Elapsed))

	return result
}

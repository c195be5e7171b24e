// Package ingest orchestrates one ingestion batch: every candidate file is
// inspected independently and the admitted ones are persisted to the staging
// workspace.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/infrastructure"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/inspection"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/staging"
)

// FileOutcome is the ingestion result of one candidate file.
type FileOutcome struct {
	Name       string
	Verdict    inspection.Verdict
	StagedPath string
	StageErr   error
}

// Admitted reports whether the file passed inspection and was staged.
func (o FileOutcome) Admitted() bool {
	return o.Verdict.Safe && o.StageErr == nil
}

// Err returns the classified failure behind a non-admitted outcome, nil for
// admitted files.
func (o FileOutcome) Err() error {
	if o.Admitted() {
		return nil
	}
	if !o.Verdict.Safe {
		return gwerrors.New(o.Verdict.Kind, o.Name, o.Verdict.Reason)
	}
	return o.StageErr
}

// BatchReport summarizes one ingestion batch.
type BatchReport struct {
	BatchID  string
	Outcomes []FileOutcome
}

// AdmittedCount returns the number of staged files.
func (r *BatchReport) AdmittedCount() int {
	count := 0
	for _, o := range r.Outcomes {
		if o.Admitted() {
			count++
		}
	}
	return count
}

// RejectedCount returns the number of rejected or failed files.
func (r *BatchReport) RejectedCount() int {
	return len(r.Outcomes) - r.AdmittedCount()
}

// StagedPaths returns the staged file paths in input order.
func (r *BatchReport) StagedPaths() []string {
	var paths []string
	for _, o := range r.Outcomes {
		if o.Admitted() {
			paths = append(paths, o.StagedPath)
		}
	}
	return paths
}

// Service runs ingestion batches. The caller is responsible for holding the
// workspace lock around each batch.
type Service struct {
	pipeline  *inspection.Pipeline
	workspace *staging.Workspace
	logger    *slog.Logger
}

// NewService creates an ingestion service.
func NewService(pipeline *inspection.Pipeline, workspace *staging.Workspace, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pipeline:  pipeline,
		workspace: workspace,
		logger:    logger.With(slog.String("component", "ingest")),
	}
}

// IngestBatch rebuilds the staging directory, then inspects every candidate
// path independently and stages the admitted ones. Per-file failures never
// abort the batch; only a workspace failure does.
func (s *Service) IngestBatch(ctx context.Context, candidatePaths []string) (*BatchReport, error) {
	report := &BatchReport{BatchID: uuid.NewString()}
	ctx = infrastructure.WithBatchID(ctx, report.BatchID)

	if err := s.workspace.Reset(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ingestion batch started",
		slog.Int("candidate_count", len(candidatePaths)))

	for _, path := range candidatePaths {
		report.Outcomes = append(report.Outcomes, s.ingestOne(ctx, path))
	}

	s.logger.InfoContext(ctx, "ingestion batch completed",
		slog.Int("admitted", report.AdmittedCount()),
		slog.Int("rejected", report.RejectedCount()))

	return report, nil
}

// ingestOne inspects a single candidate and stages it when clean.
func (s *Service) ingestOne(ctx context.Context, path string) FileOutcome {
	name := filepath.Base(path)

	candidate, err := inspection.NewCandidateFromPath(path, name)
	if err != nil {
		return FileOutcome{
			Name: name,
			Verdict: inspection.Verdict{
				Safe:   false,
				Kind:   gwerrors.KindIntegrityFailure,
				Reason: fmt.Sprintf("cannot access candidate: %v", err),
			},
		}
	}

	outcome := FileOutcome{Name: name, Verdict: s.pipeline.Inspect(ctx, candidate)}
	if !outcome.Verdict.Safe {
		return outcome
	}

	content, err := candidate.Open()
	if err != nil {
		outcome.StageErr = fmt.Errorf("failed to reopen admitted file: %w", err)
		return outcome
	}
	defer content.Close()

	outcome.StagedPath, outcome.StageErr = s.workspace.Stage(name, content)
	if outcome.StageErr != nil {
		s.logger.ErrorContext(ctx, "failed to stage admitted file",
			slog.String("filename", name),
			slog.String("error", outcome.StageErr.Error()))
	}

	return outcome
}

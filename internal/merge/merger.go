// Package merge consolidates processed artifacts into one ordered dataset.
//
// Two modes exist: naive (everything in memory, acceptable for small
// batches) and streaming (one artifact resident at a time, preferred).
// Artifacts are visited in natural sort order, the header is written once,
// and a corrupt artifact is skipped with a recorded reason — never silently.
package merge

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/exporter"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/processing"
)

// Options configures a merge run.
type Options struct {
	// SortColumn, when set, re-sorts each artifact's rows by a natural
	// sort key on that column before appending.
	SortColumn string
	// Archive controls whether the merged dataset is also packed into a
	// deflate-compressed zip for distribution.
	Archive bool
}

// SkippedArtifact records one artifact excluded from the merge and why.
type SkippedArtifact struct {
	File   string
	Reason string
}

// Report is the outcome of one merge run. TotalRows always equals the sum
// of row counts of the merged artifacts; skipped artifacts contribute
// nothing.
type Report struct {
	OutputPath      string
	ArchivePath     string
	MergedArtifacts int
	TotalRows       int
	Skipped         []SkippedArtifact
}

// Merger consolidates the artifacts of one processed directory.
type Merger struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewMerger creates a merger over the workspace paths.
func NewMerger(paths *config.Paths, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		paths:  paths,
		logger: logger.With(slog.String("component", "merge")),
	}
}

// MergeStreaming consolidates all artifacts while keeping at most one
// artifact in memory. This is the preferred mode for large batches.
func (m *Merger) MergeStreaming(ctx context.Context, opts Options) (*Report, error) {
	artifacts, err := m.listArtifacts()
	if err != nil {
		return nil, err
	}

	report := &Report{OutputPath: m.paths.GetExportPath(config.MergedDatasetName)}

	// First pass reads only header rows, so the union column set is known
	// before the destination is opened. Memory stays bounded.
	headers, skipped := m.unionHeaders(artifacts)
	report.Skipped = append(report.Skipped, skipped...)

	writer, err := exporter.NewStreamWriter(report.OutputPath, headers)
	if err != nil {
		return nil, gwerrors.WorkspaceFatal("cannot create merged dataset", err)
	}

	for _, path := range artifacts {
		if m.isSkipped(report, path) {
			continue
		}
		rows, err := m.appendArtifact(writer, path, headers, opts.SortColumn)
		if err != nil {
			skipErr := gwerrors.MergeError(filepath.Base(path), "unreadable artifact", err)
			m.logger.WarnContext(ctx, "skipping corrupt artifact",
				slog.String("artifact", filepath.Base(path)),
				slog.String("error", skipErr.Error()))
			report.Skipped = append(report.Skipped, SkippedArtifact{
				File:   filepath.Base(path),
				Reason: skipErr.Error(),
			})
			continue
		}
		report.MergedArtifacts++
		report.TotalRows += rows
	}

	if err := writer.Close(); err != nil {
		return nil, gwerrors.WorkspaceFatal("cannot finalize merged dataset", err)
	}

	if err := m.finish(ctx, report, opts); err != nil {
		return nil, err
	}
	return report, nil
}

// MergeNaive reads every artifact fully into memory, concatenates and
// writes once. Acceptable only for small artifact counts and sizes.
func (m *Merger) MergeNaive(ctx context.Context, opts Options) (*Report, error) {
	artifacts, err := m.listArtifacts()
	if err != nil {
		return nil, err
	}

	report := &Report{OutputPath: m.paths.GetExportPath(config.MergedDatasetName)}

	var headers []string
	var merged [][]string
	var tables []*processing.Table

	for _, path := range artifacts {
		table, err := processing.ReadTable(path)
		if err != nil {
			skipErr := gwerrors.MergeError(filepath.Base(path), "unreadable artifact", err)
			m.logger.WarnContext(ctx, "skipping corrupt artifact",
				slog.String("artifact", filepath.Base(path)),
				slog.String("error", skipErr.Error()))
			report.Skipped = append(report.Skipped, SkippedArtifact{
				File:   filepath.Base(path),
				Reason: skipErr.Error(),
			})
			continue
		}
		headers = unionInto(headers, table.Headers)
		tables = append(tables, table)
	}

	for _, table := range tables {
		sortRows(table, opts.SortColumn)
		mapping := columnMapping(table, headers)
		for r := range table.Rows {
			merged = append(merged, projectRow(table, r, mapping))
		}
		report.MergedArtifacts++
		report.TotalRows += len(table.Rows)
	}

	if err := exporter.WriteCSV(report.OutputPath, headers, merged); err != nil {
		return nil, gwerrors.WorkspaceFatal("cannot write merged dataset", err)
	}

	if err := m.finish(ctx, report, opts); err != nil {
		return nil, err
	}
	return report, nil
}

// finish logs the outcome and optionally produces the distribution archive.
func (m *Merger) finish(ctx context.Context, report *Report, opts Options) error {
	if opts.Archive {
		report.ArchivePath = m.paths.GetExportPath(config.MergedArchiveName)
		if err := exporter.ZipFile(report.OutputPath, report.ArchivePath); err != nil {
			return gwerrors.WorkspaceFatal("cannot create distribution archive", err)
		}
	}

	m.logger.InfoContext(ctx, "merge completed",
		slog.Int("merged_artifacts", report.MergedArtifacts),
		slog.Int("total_rows", report.TotalRows),
		slog.Int("skipped", len(report.Skipped)),
		slog.String("output", report.OutputPath))

	return nil
}

// listArtifacts returns the processed artifact paths in natural sort order.
func (m *Merger) listArtifacts() ([]string, error) {
	entries, err := os.ReadDir(m.paths.ProcessedDir)
	if err != nil {
		return nil, gwerrors.WorkspaceFatal("cannot read processed directory", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(m.paths.ProcessedDir, entry.Name()))
	}

	sort.Slice(paths, func(i, j int) bool {
		return NaturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})

	return paths, nil
}

// unionHeaders reads only each artifact's header row and folds the columns
// into a union, preserving first-seen order. Unreadable artifacts are
// reported as skipped here so the row pass does not try them again.
func (m *Merger) unionHeaders(artifacts []string) ([]string, []SkippedArtifact) {
	var headers []string
	var skipped []SkippedArtifact

	for _, path := range artifacts {
		h, err := readHeaderRow(path)
		if err != nil {
			skipped = append(skipped, SkippedArtifact{
				File:   filepath.Base(path),
				Reason: gwerrors.MergeError(filepath.Base(path), "unreadable header", err).Error(),
			})
			continue
		}
		headers = unionInto(headers, h)
	}

	return headers, skipped
}

// appendArtifact loads one artifact, optionally re-sorts its rows, projects
// them onto the union header and appends to the destination. The table is
// dropped as soon as the function returns.
func (m *Merger) appendArtifact(writer *exporter.StreamWriter, path string, headers []string, sortColumn string) (int, error) {
	table, err := processing.ReadTable(path)
	if err != nil {
		return 0, err
	}

	sortRows(table, sortColumn)

	mapping := columnMapping(table, headers)
	for r := range table.Rows {
		if err := writer.WriteRecord(projectRow(table, r, mapping)); err != nil {
			return 0, fmt.Errorf("failed to append row: %w", err)
		}
	}

	return len(table.Rows), nil
}

// sortRows orders a table's rows by a natural sort key on the named column.
// A missing column leaves the order untouched.
func sortRows(table *processing.Table, column string) {
	if column == "" {
		return
	}
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return
	}
	sort.SliceStable(table.Rows, func(i, j int) bool {
		return NaturalLess(table.Cell(i, idx), table.Cell(j, idx))
	})
}

// columnMapping resolves, once per artifact, where each union column lives
// in the artifact's own header (-1 when absent).
func columnMapping(table *processing.Table, headers []string) []int {
	mapping := make([]int, len(headers))
	for i, h := range headers {
		mapping[i] = table.ColumnIndex(h)
	}
	return mapping
}

// projectRow maps one row onto the union header, filling columns this
// artifact does not have with empty values. No column is ever dropped.
func projectRow(table *processing.Table, row int, mapping []int) []string {
	out := make([]string, len(mapping))
	for i, idx := range mapping {
		if idx >= 0 {
			out[i] = table.Cell(row, idx)
		}
	}
	return out
}

// unionInto appends the columns of next that are not yet present in base,
// preserving first-seen order.
func unionInto(base, next []string) []string {
	for _, col := range next {
		found := false
		for _, existing := range base {
			if existing == col {
				found = true
				break
			}
		}
		if !found {
			base = append(base, col)
		}
	}
	return base
}

// readHeaderRow reads only the first CSV record of an artifact.
func readHeaderRow(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	return header, nil
}

// isSkipped reports whether path was already marked skipped during the
// header pass.
func (m *Merger) isSkipped(report *Report, path string) bool {
	name := filepath.Base(path)
	for _, s := range report.Skipped {
		if s.File == name {
			return true
		}
	}
	return false
}

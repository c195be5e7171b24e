package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/ingest"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/merge"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/runner"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderIngestTable summarizes one ingestion batch per file, followed by a
// one-line admitted/rejected tally.
func renderIngestTable(report *ingest.BatchReport) string {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		status := "REJECTED"
		if o.Admitted() {
			status = "ADMITTED"
		}
		reason := o.Verdict.Reason
		if err := o.Err(); err != nil {
			reason = err.Error()
		}
		rows = append(rows, []string{o.Name, status, reason})
	}

	out := renderTable(
		[]string{"File", "Status", "Reason"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	)
	return out + fmt.Sprintf("\nBatch %s: %d admitted, %d rejected",
		report.BatchID, report.AdmittedCount(), report.RejectedCount())
}

// renderProcessTable summarizes a transformation run: one row per artifact,
// one per failure, plus the strategy and elapsed time.
func renderProcessTable(result *runner.BatchResult) string {
	rows := make([][]string, 0, len(result.Artifacts)+len(result.Failures))
	for _, a := range result.Artifacts {
		rows = append(rows, []string{
			a.SourceFile,
			"OK",
			filepath.Base(a.Path),
			strconv.Itoa(a.RowCount),
		})
	}
	for _, f := range result.Failures {
		rows = append(rows, []string{f.File, "FAILED", f.Err.Error(), ""})
	}

	out := renderTable(
		[]string{"Source", "Status", "Artifact", "Rows"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
	return out + fmt.Sprintf("\nStrategy %s: %d processed, %d failed in %s",
		result.Strategy, result.ProcessedCount(), result.FailedCount(), result.Elapsed.Round(time.Millisecond))
}

// renderMergeTable summarizes a merge run, listing any skipped artifacts.
func renderMergeTable(report *merge.Report) string {
	rows := [][]string{
		{"Merged artifacts", strconv.Itoa(report.MergedArtifacts)},
		{"Total rows", strconv.Itoa(report.TotalRows)},
		{"Dataset", report.OutputPath},
	}
	if report.ArchivePath != "" {
		rows = append(rows, []string{"Archive", report.ArchivePath})
	}
	for _, s := range report.Skipped {
		rows = append(rows, []string{"Skipped " + s.File, s.Reason})
	}

	return renderTable(
		[]string{"Merge", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignLeft},
	)
}

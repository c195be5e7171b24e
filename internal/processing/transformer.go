// Package processing implements the per-file transformation unit: staged
// tabular input in, standardized delimited artifact out.
package processing

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/exporter"
)

// amountColumn is the business field the tax derivation keys on.
const amountColumn = "Amount"

// Artifact describes one standardized output table.
type Artifact struct {
	SourceFile string
	Path       string
	RowCount   int
}

// Transformer applies the business calculation to one staged file at a
// time. It is stateless between calls and safe for concurrent use.
type Transformer struct {
	taxRate   float64
	outputDir string
	logger    *slog.Logger
}

// NewTransformer creates a transformer writing artifacts into the processed
// directory of the workspace.
func NewTransformer(procCfg config.ProcessingConfig, paths *config.Paths, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		taxRate:   procCfg.TaxRate,
		outputDir: paths.ProcessedDir,
		logger:    logger.With(slog.String("component", "transform")),
	}
}

// Transform reads one staged file, derives the tax columns when a numeric
// Amount column exists, tags provenance and writes the standardized CSV
// artifact. All failures are returned as per-file processing errors; they
// never affect other files in the batch.
func (t *Transformer) Transform(ctx context.Context, stagedPath string) (*Artifact, error) {
	source := filepath.Base(stagedPath)

	table, err := ReadTable(stagedPath)
	if err != nil {
		t.logger.ErrorContext(ctx, "transformation failed",
			slog.String("file", source),
			slog.String("error", err.Error()))
		return nil, gwerrors.ProcessingError(source, "cannot read tabular content", err)
	}

	t.deriveTaxColumns(table)
	t.tagProvenance(table, source)

	outPath := filepath.Join(t.outputDir, OutputName(source))
	if err := exporter.WriteCSV(outPath, table.Headers, table.Rows); err != nil {
		t.logger.ErrorContext(ctx, "artifact write failed",
			slog.String("file", source),
			slog.String("error", err.Error()))
		return nil, gwerrors.ProcessingError(source, "cannot write artifact", err)
	}

	t.logger.InfoContext(ctx, "file transformed",
		slog.String("file", source),
		slog.String("artifact", outPath),
		slog.Int("row_count", len(table.Rows)))

	return &Artifact{SourceFile: source, Path: outPath, RowCount: len(table.Rows)}, nil
}

// deriveTaxColumns appends Tax_Amount and Total_Amount when the table has an
// Amount column. Rows whose Amount does not parse get empty derived cells.
func (t *Transformer) deriveTaxColumns(table *Table) {
	amountIdx := table.ColumnIndex(amountColumn)
	if amountIdx < 0 {
		return
	}

	taxValues := make([]string, len(table.Rows))
	totalValues := make([]string, len(table.Rows))
	for i := range table.Rows {
		amount, err := strconv.ParseFloat(strings.TrimSpace(table.Cell(i, amountIdx)), 64)
		if err != nil {
			continue
		}
		tax := roundMoney(amount * t.taxRate)
		taxValues[i] = formatMoney(tax)
		totalValues[i] = formatMoney(roundMoney(amount + tax))
	}

	table.AddColumn("Tax_Amount", taxValues)
	table.AddColumn("Total_Amount", totalValues)
}

// tagProvenance appends the column naming the source file of every row.
func (t *Transformer) tagProvenance(table *Table, source string) {
	values := make([]string, len(table.Rows))
	for i := range values {
		values[i] = source
	}
	table.AddColumn(config.ProvenanceColumnName, values)
}

// OutputName returns the deterministic artifact name of a staged file:
// processed_<basename> with the extension normalized to .csv.
func OutputName(source string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return config.ProcessedFilePrefix + base + ".csv"
}

// roundMoney rounds to the monetary precision (2 decimal places).
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatMoney renders a monetary value with exactly 2 decimal places.
func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', config.MonetaryDecimals, 64)
}

package processing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
)

func newTestTransformer(t *testing.T) (*Transformer, *config.Paths) {
	t.Helper()

	cfg := config.Default()
	cfg.Workspace.Root = t.TempDir()

	paths, err := config.NewPaths(cfg.Workspace)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	return NewTransformer(cfg.Processing, paths, nil), paths
}

func writeStaged(t *testing.T, paths *config.Paths, name, content string) string {
	t.Helper()
	path := paths.GetStagingPath(name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readArtifact(t *testing.T, path string) *Table {
	t.Helper()
	table, err := ReadTable(path)
	require.NoError(t, err)
	return table
}

func TestTransformDerivesTaxColumns(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "sales.csv", "id,Amount\n1,1000\n2,99.99\n")

	artifact, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)

	assert.Equal(t, "sales.csv", artifact.SourceFile)
	assert.Equal(t, 2, artifact.RowCount)
	assert.Equal(t, paths.GetProcessedPath("processed_sales.csv"), artifact.Path)

	table := readArtifact(t, artifact.Path)
	assert.Equal(t, []string{"id", "Amount", "Tax_Amount", "Total_Amount", "Source_File"}, table.Headers)
	assert.Equal(t, []string{"1", "1000", "180.00", "1180.00", "sales.csv"}, table.Rows[0])
	assert.Equal(t, []string{"2", "99.99", "18.00", "117.99", "sales.csv"}, table.Rows[1])
}

func TestTransformWithoutAmountColumn(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "users.csv", "id,name\n1,alpha\n")

	artifact, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)

	table := readArtifact(t, artifact.Path)
	assert.Equal(t, []string{"id", "name", "Source_File"}, table.Headers)
	assert.Equal(t, []string{"1", "alpha", "users.csv"}, table.Rows[0])
}

func TestTransformNonNumericAmount(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "mixed.csv", "id,Amount\n1,100\n2,n/a\n")

	artifact, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)

	table := readArtifact(t, artifact.Path)
	assert.Equal(t, []string{"1", "100", "18.00", "118.00", "mixed.csv"}, table.Rows[0])
	// Unparseable amounts leave the derived cells empty instead of failing
	// the whole file.
	assert.Equal(t, []string{"2", "n/a", "", "", "mixed.csv"}, table.Rows[1])
}

func TestTransformCaseInsensitiveAmountHeader(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "lower.csv", "id,amount\n1,50\n")

	artifact, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)

	table := readArtifact(t, artifact.Path)
	assert.Equal(t, []string{"1", "50", "9.00", "59.00", "lower.csv"}, table.Rows[0])
}

func TestTransformJSONInput(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "orders.json",
		`[{"id": 2, "Amount": 200}, {"id": 1, "Amount": 100, "note": "first"}]`)

	artifact, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)

	assert.Equal(t, paths.GetProcessedPath("processed_orders.csv"), artifact.Path)

	table := readArtifact(t, artifact.Path)
	// Sorted union of keys, then derived and provenance columns.
	assert.Equal(t, []string{"Amount", "id", "note", "Tax_Amount", "Total_Amount", "Source_File"}, table.Headers)
	assert.Equal(t, []string{"200", "2", "", "36.00", "236.00", "orders.json"}, table.Rows[0])
	assert.Equal(t, []string{"100", "1", "first", "18.00", "118.00", "orders.json"}, table.Rows[1])
}

func TestTransformUnreadableFile(t *testing.T) {
	transformer, paths := newTestTransformer(t)

	_, err := transformer.Transform(context.Background(), paths.GetStagingPath("missing.csv"))
	require.Error(t, err)
	assert.Equal(t, gwerrors.KindProcessingError, gwerrors.KindOf(err))
}

func TestTransformUnsupportedFormat(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "notes.txt", "free text")

	_, err := transformer.Transform(context.Background(), staged)
	require.Error(t, err)
	assert.Equal(t, gwerrors.KindProcessingError, gwerrors.KindOf(err))
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{source: "sales.csv", expected: "processed_sales.csv"},
		{source: "orders.json", expected: "processed_orders.csv"},
		{source: "inventory.xlsx", expected: "processed_inventory.csv"},
		{source: "noext", expected: "processed_noext.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputName(tt.source))
		})
	}
}

func TestTransformXLSXMatchesCSV(t *testing.T) {
	transformer, paths := newTestTransformer(t)

	csvStaged := writeStaged(t, paths, "ledger.csv", "id,Amount\n1,100\n2,250.50\n")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"id", "Amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"1", "100"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2", "250.50"}))
	xlsxStaged := paths.GetStagingPath("sheet.xlsx")
	require.NoError(t, f.SaveAs(xlsxStaged))
	require.NoError(t, f.Close())

	fromCSV, err := transformer.Transform(context.Background(), csvStaged)
	require.NoError(t, err)
	fromXLSX, err := transformer.Transform(context.Background(), xlsxStaged)
	require.NoError(t, err)

	csvTable := readArtifact(t, fromCSV.Path)
	xlsxTable := readArtifact(t, fromXLSX.Path)

	// Same rows and derived values; only the provenance column differs.
	assert.Equal(t, csvTable.Headers, xlsxTable.Headers)
	require.Equal(t, len(csvTable.Rows), len(xlsxTable.Rows))
	provenance := csvTable.ColumnIndex("Source_File")
	for i := range csvTable.Rows {
		for c := range csvTable.Rows[i] {
			if c == provenance {
				continue
			}
			assert.Equal(t, csvTable.Rows[i][c], xlsxTable.Rows[i][c])
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	transformer, paths := newTestTransformer(t)
	staged := writeStaged(t, paths, "repeat.csv", "id,Amount\n1,42.50\n")

	first, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)
	firstContent, err := os.ReadFile(first.Path)
	require.NoError(t, err)

	second, err := transformer.Transform(context.Background(), staged)
	require.NoError(t, err)
	secondContent, err := os.ReadFile(second.Path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(first.Path), filepath.Base(second.Path))
	assert.Equal(t, firstContent, secondContent)
}

package exporter

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "data.csv")

	err := WriteCSV(path, []string{"id", "name"}, [][]string{
		{"1", "alpha"},
		{"2", "value,with,commas"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,alpha\n2,\"value,with,commas\"\n", string(data))
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")

	writer, err := NewStreamWriter(path, []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, writer.WriteRecord([]string{"1", "2"}))
	require.NoError(t, writer.WriteRecord([]string{"3", "4"}))
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}

func TestStreamWriterMatchesWriteCSV(t *testing.T) {
	dir := t.TempDir()
	headers := []string{"id", "Amount"}
	records := [][]string{{"1", "100"}, {"2", "200"}}

	oneShot := filepath.Join(dir, "oneshot.csv")
	require.NoError(t, WriteCSV(oneShot, headers, records))

	streamed := filepath.Join(dir, "streamed.csv")
	writer, err := NewStreamWriter(streamed, headers)
	require.NoError(t, err)
	for _, record := range records {
		require.NoError(t, writer.WriteRecord(record))
	}
	require.NoError(t, writer.Close())

	a, err := os.ReadFile(oneShot)
	require.NoError(t, err)
	b, err := os.ReadFile(streamed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestZipFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "dataset.csv")
	content := "id,Amount\n1,100\n"
	require.NoError(t, os.WriteFile(source, []byte(content), 0644))

	archive := filepath.Join(dir, "dataset.zip")
	require.NoError(t, ZipFile(source, archive))

	reader, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 1)
	entry := reader.File[0]
	assert.Equal(t, "dataset.csv", entry.Name)
	assert.Equal(t, zip.Deflate, entry.Method)

	rc, err := entry.Open()
	require.NoError(t, err)
	defer rc.Close()
	extracted, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(extracted))
}

func TestZipFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := ZipFile(filepath.Join(dir, "absent.csv"), filepath.Join(dir, "out.zip"))
	require.Error(t, err)
}

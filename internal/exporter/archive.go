package exporter

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ZipFile packs a single file into a deflate-compressed zip archive at
// archivePath, streaming the source so large datasets stay bounded in
// memory.
func ZipFile(sourcePath, archivePath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open archive source: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	header := &zip.FileHeader{
		Name:   filepath.Base(sourcePath),
		Method: zip.Deflate,
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to create archive entry: %w", err)
	}

	if _, err := io.Copy(entry, src); err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress %s: %w", sourcePath, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	slog.Info("archive created",
		slog.String("source", sourcePath),
		slog.String("archive", archivePath))

	return nil
}

// Package staging manages the workspace directory that admitted files are
// persisted into between inspection and transformation.
package staging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
)

// unsafeNameChars matches every character replaced during filename
// sanitization. Path separators and control characters never survive.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Workspace owns the staging directory of one ingestion flow. The staging
// directory is fully rebuilt at the start of each batch; concurrent batches
// against the same workspace are serialized through a file lock.
type Workspace struct {
	paths  *config.Paths
	lock   *flock.Flock
	logger *slog.Logger
}

// NewWorkspace creates a workspace over the resolved paths. No directories
// are touched until Acquire.
func NewWorkspace(paths *config.Paths, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		paths:  paths,
		lock:   flock.New(filepath.Join(paths.Root, ".ingest.lock")),
		logger: logger.With(slog.String("component", "staging")),
	}
}

// Acquire takes the workspace lock and prepares the directory layout.
// It fails immediately if another batch holds the lock.
func (w *Workspace) Acquire() error {
	if err := w.paths.EnsureDirectories(); err != nil {
		return gwerrors.WorkspaceFatal("workspace directories are not writable", err)
	}

	locked, err := w.lock.TryLock()
	if err != nil {
		return gwerrors.WorkspaceFatal("failed to acquire workspace lock", err)
	}
	if !locked {
		return gwerrors.WorkspaceFatal(
			fmt.Sprintf("workspace %s is in use by another batch", w.paths.Root), nil)
	}

	w.logger.Debug("workspace lock acquired", slog.String("root", w.paths.Root))
	return nil
}

// Release drops the workspace lock.
func (w *Workspace) Release() error {
	return w.lock.Unlock()
}

// Reset clears and recreates the staging directory. Called once at the
// start of each ingestion batch.
func (w *Workspace) Reset() error {
	if err := os.RemoveAll(w.paths.StagingDir); err != nil {
		return gwerrors.WorkspaceFatal("failed to clear staging directory", err)
	}
	if err := os.MkdirAll(w.paths.StagingDir, 0755); err != nil {
		return gwerrors.WorkspaceFatal("failed to recreate staging directory", err)
	}

	w.logger.Info("staging directory rebuilt", slog.String("dir", w.paths.StagingDir))
	return nil
}

// Stage persists an admitted file under its sanitized name and returns the
// staged path.
func (w *Workspace) Stage(name string, content io.Reader) (string, error) {
	staged := w.paths.GetStagingPath(SanitizeFilename(name))

	dst, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync staged file: %w", err)
	}

	w.logger.Debug("file staged",
		slog.String("name", name),
		slog.String("path", staged))

	return staged, nil
}

// StagedFiles lists the staged file paths in lexical order.
func (w *Workspace) StagedFiles() ([]string, error) {
	entries, err := os.ReadDir(w.paths.StagingDir)
	if err != nil {
		return nil, gwerrors.WorkspaceFatal("failed to read staging directory", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(w.paths.StagingDir, entry.Name()))
		}
	}
	return files, nil
}

// SanitizeFilename strips path components and replaces every character
// outside [a-zA-Z0-9._-] so a declared name can never escape the staging
// directory.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == ".." {
		return "unnamed_file"
	}
	return base
}

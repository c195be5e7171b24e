package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute directories of one workspace. It is
// built once from WorkspaceConfig and passed to every component that touches
// the filesystem, so no package reads ambient path state.
type Paths struct {
	Root         string
	IncomingDir  string
	StagingDir   string
	ProcessedDir string
	ExportDir    string
	LogsDir      string
}

// NewPaths resolves the workspace layout against the configured root.
// Relative roots are resolved against the current working directory.
func NewPaths(wc WorkspaceConfig) (*Paths, error) {
	root, err := filepath.Abs(wc.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	return &Paths{
		Root:         root,
		IncomingDir:  filepath.Join(root, wc.IncomingDir),
		StagingDir:   filepath.Join(root, wc.StagingDir),
		ProcessedDir: filepath.Join(root, wc.ProcessedDir),
		ExportDir:    filepath.Join(root, wc.ExportDir),
		LogsDir:      filepath.Join(root, wc.LogsDir),
	}, nil
}

// EnsureDirectories creates every workspace directory that does not yet
// exist. A failure here is the one fatal, batch-aborting condition: without
// a writable workspace no per-file error isolation is possible.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.IncomingDir, p.StagingDir, p.ProcessedDir, p.ExportDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetStagingPath returns the absolute path of a staged file.
func (p *Paths) GetStagingPath(filename string) string {
	return filepath.Join(p.StagingDir, filename)
}

// GetProcessedPath returns the absolute path of a processed artifact.
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetExportPath returns the absolute path of an export file.
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportDir, filename)
}

// GetLogPath returns the absolute path of a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// AuditLogPath returns the absolute path of the append-only audit log.
func (p *Paths) AuditLogPath() string {
	return p.GetLogPath(AuditLogName)
}

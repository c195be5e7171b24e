package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/audit"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/inspection"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/staging"
)

type fixture struct {
	service  *Service
	paths    *config.Paths
	auditLog *audit.Logger
	incoming string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Workspace.Root = t.TempDir()

	paths, err := config.NewPaths(cfg.Workspace)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	auditLog, err := audit.NewLogger(paths.AuditLogPath())
	require.NoError(t, err)
	t.Cleanup(func() { auditLog.Close() })

	workspace := staging.NewWorkspace(paths, nil)
	require.NoError(t, workspace.Acquire())
	t.Cleanup(func() { workspace.Release() })

	pipeline := inspection.NewPipeline(inspection.DefaultPolicy(cfg.Security), auditLog, nil)

	return &fixture{
		service:  NewService(pipeline, workspace, nil),
		paths:    paths,
		auditLog: auditLog,
		incoming: paths.IncomingDir,
	}
}

func (f *fixture) addCandidate(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.incoming, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestBatchMixedCandidates(t *testing.T) {
	f := newFixture(t)

	clean := f.addCandidate(t, "sales_data.csv", "id,Amount\n1,100\n")
	executable := f.addCandidate(t, "malicious_executable.exe", "this is just text content")
	scripted := f.addCandidate(t, "injected.csv", "id,comment\n1,<script>alert(1)</script>\n")

	report, err := f.service.IngestBatch(context.Background(), []string{clean, executable, scripted})
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchID)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 1, report.AdmittedCount())
	assert.Equal(t, 2, report.RejectedCount())

	// The clean file is staged under its own name.
	staged := report.StagedPaths()
	require.Len(t, staged, 1)
	assert.Equal(t, f.paths.GetStagingPath("sales_data.csv"), staged[0])
	_, statErr := os.Stat(staged[0])
	assert.NoError(t, statErr)

	// Rejected files never reach staging.
	_, statErr = os.Stat(f.paths.GetStagingPath("malicious_executable.exe"))
	assert.True(t, os.IsNotExist(statErr))

	// Exactly one audit event per candidate.
	events, err := audit.ReadEvents(f.paths.AuditLogPath())
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "sales_data.csv", events[0].Filename)
	assert.Equal(t, audit.StatusClean, events[0].Status)
	assert.Equal(t, "File is clean.", events[0].Reason)
	assert.Len(t, events[0].FileHash, 64)

	assert.Equal(t, "malicious_executable.exe", events[1].Filename)
	assert.Equal(t, audit.StatusBlocked, events[1].Status)
	assert.Contains(t, events[1].Reason, "naming policy violation")

	assert.Equal(t, "injected.csv", events[2].Filename)
	assert.Equal(t, audit.StatusBlocked, events[2].Status)
	assert.Contains(t, events[2].Reason, "threat signature detected")

	// Outcomes expose classified errors: nil for admitted files, the
	// matching taxonomy kind for rejections.
	assert.NoError(t, report.Outcomes[0].Err())
	assert.Equal(t, gwerrors.KindPolicyViolation, gwerrors.KindOf(report.Outcomes[1].Err()))
	assert.Equal(t, gwerrors.KindThreatDetected, gwerrors.KindOf(report.Outcomes[2].Err()))
}

func TestIngestBatchResetsStaging(t *testing.T) {
	f := newFixture(t)

	first := f.addCandidate(t, "first.csv", "id,Amount\n1,100\n")
	report, err := f.service.IngestBatch(context.Background(), []string{first})
	require.NoError(t, err)
	require.Equal(t, 1, report.AdmittedCount())

	// A new batch starts from an empty staging directory.
	second := f.addCandidate(t, "second.csv", "id,Amount\n2,200\n")
	report, err = f.service.IngestBatch(context.Background(), []string{second})
	require.NoError(t, err)
	require.Equal(t, 1, report.AdmittedCount())

	entries, err := os.ReadDir(f.paths.StagingDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second.csv", entries[0].Name())
}

func TestIngestBatchMissingCandidate(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.IngestBatch(context.Background(),
		[]string{filepath.Join(f.incoming, "ghost.csv")})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.False(t, report.Outcomes[0].Admitted())
	assert.Contains(t, report.Outcomes[0].Verdict.Reason, "cannot access candidate")
	assert.Equal(t, gwerrors.KindIntegrityFailure, gwerrors.KindOf(report.Outcomes[0].Err()))
	assert.Zero(t, report.AdmittedCount())
}

func TestIngestBatchEmpty(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.IngestBatch(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, report.Outcomes)
	assert.Zero(t, report.AdmittedCount())
	assert.Zero(t, report.RejectedCount())
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/audit"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/infrastructure"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/ingest"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/inspection"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/merge"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/processing"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/staging"
)

// app holds the wired gateway components for one CLI invocation.
type app struct {
	cfg         *config.Config
	paths       *config.Paths
	logger      *slog.Logger
	auditLog    *audit.Logger
	workspace   *staging.Workspace
	ingestSvc   *ingest.Service
	transformer *processing.Transformer
	merger      *merge.Merger
}

// newApp loads configuration and constructs every component. The workspace
// flag, when set, overrides the configured root.
func newApp(configFile, workspaceRoot string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if workspaceRoot != "" {
		cfg.Workspace.Root = workspaceRoot
	}

	paths, err := config.NewPaths(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	cfg.Logging.FilePath = paths.GetLogPath("gateway.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	auditLog, err := audit.NewLogger(paths.AuditLogPath())
	if err != nil {
		return nil, err
	}

	workspace := staging.NewWorkspace(paths, logger)
	pipeline := inspection.NewPipeline(inspection.DefaultPolicy(cfg.Security), auditLog, logger)

	return &app{
		cfg:         cfg,
		paths:       paths,
		logger:      logger,
		auditLog:    auditLog,
		workspace:   workspace,
		ingestSvc:   ingest.NewService(pipeline, workspace, logger),
		transformer: processing.NewTransformer(cfg.Processing, paths, logger),
		merger:      merge.NewMerger(paths, logger),
	}, nil
}

// close releases the audit log handle.
func (a *app) close() {
	if a.auditLog != nil {
		a.auditLog.Close()
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var workspaceFlag string

	rootCmd := &cobra.Command{
		Use:           "gateway",
		Short:         "Batch ingestion gateway for untrusted tabular files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace root directory")

	rootCmd.AddCommand(newScanCommand(&configFlag, &workspaceFlag))
	rootCmd.AddCommand(newProcessCommand(&configFlag, &workspaceFlag))
	rootCmd.AddCommand(newMergeCommand(&configFlag, &workspaceFlag))
	rootCmd.AddCommand(newRunCommand(&configFlag, &workspaceFlag))

	return rootCmd
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/files"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/ingest"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/merge"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/runner"
)

// newScanCommand inspects and stages a directory of candidate files.
func newScanCommand(configFlag, workspaceFlag *string) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Inspect candidate files and stage the clean ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configFlag, *workspaceFlag)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.workspace.Acquire(); err != nil {
				return err
			}
			defer a.workspace.Release()

			report, err := runScan(cmd.Context(), a, inputDir)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderIngestTable(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "in", "i", "", "Directory of candidate files")
	cmd.MarkFlagRequired("in")

	return cmd
}

// newProcessCommand transforms all currently staged files.
func newProcessCommand(configFlag, workspaceFlag *string) *cobra.Command {
	var parallel bool
	var workers int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Transform staged files into standardized artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configFlag, *workspaceFlag)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.workspace.Acquire(); err != nil {
				return err
			}
			defer a.workspace.Release()

			result, err := runProcess(cmd.Context(), a, parallel, workers, cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderProcessTable(result))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&parallel, "parallel", "p", false, "Use the parallel worker-pool strategy")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = number of CPUs)")

	return cmd
}

// newMergeCommand consolidates processed artifacts into one dataset.
func newMergeCommand(configFlag, workspaceFlag *string) *cobra.Command {
	var naive bool
	var sortColumn string
	var archive bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Consolidate processed artifacts into a single dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configFlag, *workspaceFlag)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.workspace.Acquire(); err != nil {
				return err
			}
			defer a.workspace.Release()

			report, err := runMerge(cmd.Context(), a, naive, sortColumn, archive)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderMergeTable(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&naive, "naive", false, "Read all artifacts into memory instead of streaming")
	cmd.Flags().StringVar(&sortColumn, "sort-column", "", "Identifier column to natural-sort each artifact's rows by")
	cmd.Flags().BoolVar(&archive, "archive", true, "Also produce the zip distribution archive")

	return cmd
}

// newRunCommand executes the full batch: scan, process, merge.
func newRunCommand(configFlag, workspaceFlag *string) *cobra.Command {
	var inputDir string
	var parallel bool
	var workers int
	var sortColumn string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full ingestion batch: scan, process, merge",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configFlag, *workspaceFlag)
			if err != nil {
				return err
			}
			defer a.close()

			// The lock is held across all three phases so another
			// batch cannot rebuild the staging directory mid-run.
			if err := a.workspace.Acquire(); err != nil {
				return err
			}
			defer a.workspace.Release()

			ingestReport, err := runScan(cmd.Context(), a, inputDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderIngestTable(ingestReport))

			result, err := runProcess(cmd.Context(), a, parallel, workers, cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProcessTable(result))

			// Merge runs only after every transformation has
			// completed; its ordering invariant needs the barrier.
			mergeReport, err := runMerge(cmd.Context(), a, false, sortColumn, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMergeTable(mergeReport))

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "in", "i", "", "Directory of candidate files")
	cmd.MarkFlagRequired("in")
	cmd.Flags().BoolVarP(&parallel, "parallel", "p", false, "Use the parallel worker-pool strategy")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = number of CPUs)")
	cmd.Flags().StringVar(&sortColumn, "sort-column", "", "Identifier column to natural-sort each artifact's rows by")

	return cmd
}

// runScan discovers candidates and runs the ingestion batch.
func runScan(ctx context.Context, a *app, inputDir string) (*ingest.BatchReport, error) {
	candidates, err := files.FindCandidates(inputDir)
	if err != nil {
		return nil, err
	}
	return a.ingestSvc.IngestBatch(ctx, files.Paths(candidates))
}

// runProcess drives the selected execution strategy over the staged files.
func runProcess(ctx context.Context, a *app, parallel bool, workers int, cmd *cobra.Command) (*runner.BatchResult, error) {
	staged, err := a.workspace.StagedFiles()
	if err != nil {
		return nil, err
	}

	progress := func(fraction float64, message string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%3.0f%%] %s\n", fraction*100, message)
	}

	var strategy runner.Strategy
	if parallel {
		if workers == 0 {
			workers = a.cfg.Processing.Workers
		}
		strategy = runner.NewParallel(a.transformer, workers, a.logger)
	} else {
		strategy = runner.NewSequential(a.transformer, a.logger)
	}

	return strategy.Run(ctx, staged, progress), nil
}

// runMerge consolidates artifacts in the requested mode.
func runMerge(ctx context.Context, a *app, naive bool, sortColumn string, archive bool) (*merge.Report, error) {
	opts := merge.Options{SortColumn: sortColumn, Archive: archive}
	if naive {
		return a.merger.MergeNaive(ctx, opts)
	}
	return a.merger.MergeStreaming(ctx, opts)
}

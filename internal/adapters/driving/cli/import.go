package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sluglab/slugline/internal/core/domain"
)

var (
	importBatchSize   int
	importRetryFailed bool
	importStateFile   string
)

var importCmd = &cobra.Command{
	Use:   "import [path...]",
	Short: "Bulk-import screenplay files",
	Long: `Imports screenplay files in transactional batches. Directories are
expanded to their .json files.

Progress is persisted after every batch, so an interrupted run resumes
where it stopped. A file that fails validation is marked failed without
blocking the rest of its batch; a storage failure rolls the batch back
and leaves its other files pending for the next run.
Press Ctrl-C to stop cleanly at the next batch boundary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "files per transaction (default 10)")
	importCmd.Flags().BoolVar(&importRetryFailed, "retry-failed", false, "re-queue files that failed in a previous run")
	importCmd.Flags().StringVar(&importStateFile, "state-file", "", "import state path (default alongside the index)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No screenplay files found.")
		return nil
	}

	stateFile := importStateFile
	if stateFile == "" {
		stateFile = appConfig.Import.StateFile
	}
	if stateFile == "" {
		stateFile = filepath.Join(filepath.Dir(store.Path()), "import-state.json")
	}

	batchSize := importBatchSize
	if batchSize <= 0 {
		batchSize = appConfig.Import.BatchSize
	}

	// Stop at the next batch boundary on interrupt; a second interrupt
	// kills the process the usual way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.Printf("Importing %d files (batch size %d)...\n", len(paths), batchSize)

	summary, err := importService.Import(ctx, paths, domain.ImportOptions{
		BatchSize:   batchSize,
		RetryFailed: importRetryFailed,
		StateFile:   stateFile,
	})
	if summary != nil {
		printSummary(cmd, summary)
	}
	if err != nil {
		if errors.Is(err, domain.ErrImportCancelled) {
			cmd.Printf("Import interrupted; re-run to resume from %s\n", stateFile)
			return nil
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d files failed", summary.Failed)
	}
	return nil
}

// expandPaths flattens directory arguments into their .json files.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printSummary(cmd *cobra.Command, summary *domain.ImportSummary) {
	if summary.Resumed {
		cmd.Println("Resumed previous import run.")
	}
	cmd.Printf("Import finished in %s: %d succeeded, %d failed, %d skipped\n",
		summary.Duration.Round(10*time.Millisecond), summary.Succeeded, summary.Failed, summary.Skipped)

	for _, ierr := range summary.Errors {
		cmd.Printf("  %s [%s]: %v\n", ierr.Path, ierr.Category, ierr.Err)
		cmd.Printf("    hint: %s\n", ierr.Suggestion())
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sluglab/slugline/internal/adapters/driven/parser/jsonfile"
	"github.com/sluglab/slugline/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index screenplay files",
	Long: `Parses the given screenplay files and brings the index up to date
with their content. Unchanged scenes are skipped, moved scenes are
renumbered in place, and vanished scenes are removed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := context.Background()
	parser := jsonfile.NewParser()

	failed := 0
	for _, path := range args {
		script, err := parser.Parse(ctx, path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}

		if script.SeriesName != "" && script.SeriesID == "" {
			series, err := sceneStore.ResolveSeries(ctx, script.SeriesName)
			if err != nil {
				cmd.PrintErrf("%s: resolving series: %v\n", path, err)
				failed++
				continue
			}
			script.SeriesID = series.ID
		}

		report, err := indexerService.Index(ctx, script)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}

		printReport(cmd, path, report)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func printReport(cmd *cobra.Command, path string, report *domain.IndexReport) {
	if report.NoOp {
		cmd.Printf("%s: unchanged\n", path)
		return
	}

	cmd.Printf("%s: %d added, %d updated, %d removed, %d moved\n",
		path, report.Added, report.Updated, report.Removed, report.Moved)
	for _, msg := range report.Errors {
		cmd.Printf("  warning: %s\n", msg)
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sluglab/slugline/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed scenes",
	Long: `Runs a hybrid search over all indexed scenes.

The query combines free text with scoped and structured syntax:

  dialogue:"exact phrase"    match dialogue only
  action:"exact phrase"      match action text only
  character:NAME             scenes where NAME speaks
  location:NAME              scenes at a location (underscores become spaces)
  time:NIGHT                 scenes at a time of day
  s1e2 or s1e2-s2e5          one episode or an inclusive range

Free text runs lexically and, for longer queries, semantically; when the
embedding service is unreachable, results silently degrade to lexical.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	query, err := domain.ParseQuery(args[0])
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	query.Limit = searchLimit
	query.Offset = searchOffset

	resp, err := searchService.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchText(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.BibleResults) > 0 {
		cmd.Println("Characters:")
		for _, c := range resp.BibleResults {
			if len(c.Aliases) > 0 {
				cmd.Printf("  %s (also: %s)\n", c.Name, strings.Join(c.Aliases, ", "))
			} else {
				cmd.Printf("  %s\n", c.Name)
			}
		}
		cmd.Println()
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%d total, %s):\n\n", resp.TotalCount, strings.Join(resp.SearchMethodsUsed, "+"))
	for i, r := range resp.Results {
		c := r.Candidate
		heading := fmt.Sprintf("%s. %s - %s", c.SceneType, c.Location, c.TimeOfDay)
		cmd.Printf("  [%d] %s (%.2f)\n", searchOffset+i+1, heading, r.Score)
		cmd.Printf("      %s, scene %d\n", c.ScriptTitle, c.SceneNumber)
		if c.Season > 0 {
			cmd.Printf("      s%02de%02d\n", c.Season, c.Episode)
		}
		for _, h := range r.Highlights {
			cmd.Printf("      %s\n", h)
		}
		cmd.Println()
	}

	if resp.HasMore {
		cmd.Println("More results available; use --offset to page.")
	}
	return nil
}

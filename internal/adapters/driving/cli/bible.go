package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sluglab/slugline/internal/core/domain"
)

var bibleDescribe bool

var bibleCmd = &cobra.Command{
	Use:   "bible [character]",
	Short: "Look up a character across the indexed series",
	Long: `Shows a character's indexed footprint: matched identities, aliases
and dialogue line counts per series. With --describe and a configured
completion model, a short profile is generated from sampled dialogue.`,
	Args: cobra.ExactArgs(1),
	RunE: runBible,
}

func init() {
	bibleCmd.Flags().BoolVar(&bibleDescribe, "describe", false, "generate a profile from sampled dialogue")
	rootCmd.AddCommand(bibleCmd)
}

func runBible(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := context.Background()
	name := args[0]

	characters, err := sceneStore.SearchCharacters(ctx, []string{name})
	if err != nil {
		return fmt.Errorf("character lookup failed: %w", err)
	}
	if len(characters) == 0 {
		cmd.Printf("No character matching %q in the index.\n", name)
		return nil
	}

	for _, c := range characters {
		cmd.Printf("%s\n", c.Name)
		if len(c.Aliases) > 0 {
			cmd.Printf("  also credited as: %s\n", strings.Join(c.Aliases, ", "))
		}

		counts, err := sceneStore.CharacterLineCounts(ctx, c.SeriesID)
		if err != nil {
			return fmt.Errorf("line counts failed: %w", err)
		}
		cmd.Printf("  dialogue lines: %d\n", counts[c.NormalizedName])

		if bibleDescribe {
			if err := describeCharacter(ctx, cmd, c); err != nil {
				cmd.PrintErrf("  profile unavailable: %v\n", err)
			}
		}
		cmd.Println()
	}

	return nil
}

// maxProfileScenes bounds how much dialogue is sampled into the prompt.
const maxProfileScenes = 5

// describeCharacter asks the completion model for a short profile based
// on the character's sampled dialogue.
func describeCharacter(ctx context.Context, cmd *cobra.Command, c domain.Character) error {
	if llmService == nil {
		return fmt.Errorf("no completion model configured")
	}

	scenes, err := sceneStore.SearchCandidates(ctx, domain.SearchQuery{
		Characters: []string{c.Name},
	}, maxProfileScenes)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		return fmt.Errorf("no dialogue indexed")
	}

	var sample strings.Builder
	for _, scene := range scenes {
		sample.WriteString(scene.DialogueText)
		sample.WriteString("\n")
	}

	prompt := fmt.Sprintf(
		"Based only on the following screenplay dialogue involving %s, "+
			"write a two-sentence character profile.\n\n%s",
		c.Name, sample.String())

	profile, err := llmService.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	cmd.Printf("  profile: %s\n", profile)
	return nil
}

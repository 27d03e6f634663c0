package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askFlags retrievalFlags

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the stored documents",
	Long: `Retrieves the passages most similar to the question and asks the
configured LLM to answer from them. The passages used are listed as sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	addRetrievalFlags(askCmd, &askFlags)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	askFlags.minScoreSet = cmd.Flags().Changed("min-score")
	opts, err := askFlags.options()
	if err != nil {
		return err
	}

	answer, err := answerService.Ask(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) == 0 {
		cmd.Println("\n(no matching sources; answer is not grounded in stored documents)")
		return nil
	}

	cmd.Println("\nSources:")
	for i, s := range answer.Sources {
		label := s.Title
		if s.Citation != "" {
			label += " (" + s.Citation + ")"
		}
		cmd.Printf("  [%d] %s, score %.2f\n", i+1, label, s.Score)
	}
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askNoRAG bool
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using the indexed documents as context.

By default the most relevant chunks are retrieved and passed to the
LLM. Use --no-rag to query the model directly without retrieval.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNoRAG, "no-rag", false, "skip retrieval and query the model directly")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}

	answer, err := engine.Ask(cmd.Context(), args[0], !askNoRAG)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if answer.ContextUsed {
		cmd.Println()
		cmd.Printf("(%d context chunks, %s via %s)\n", len(answer.Sources), answer.Mode, answer.Model)
	}
	return nil
}

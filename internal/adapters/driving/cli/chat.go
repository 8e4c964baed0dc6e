package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdoc/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question and answer session",
	Long: `Opens an interactive chat over your indexed documents.

Controls:
  Enter   - Ask the question
  Ctrl+R  - Toggle between RAG and direct mode
  ↑/↓     - Scroll the transcript
  Ctrl+C  - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	model := tui.New(engine)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}

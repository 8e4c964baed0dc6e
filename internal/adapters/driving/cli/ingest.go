package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

var ingestReplace bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents into the vector store",
	Long: `Indexes documents for retrieval.

With no arguments, every .txt and .md file in the data folder is
loaded. With file arguments, only those files are indexed.

Already indexed chunks are skipped, so re-running ingest is safe.
Use --replace to drop a document's existing chunks first, for example
after editing a file.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "drop existing chunks for each document before indexing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}

	opts := domain.IngestOptions{Replace: ingestReplace}

	if len(args) > 0 {
		for _, path := range args {
			report, err := docLoader.LoadFile(cmd.Context(), path, opts)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			printIngestReport(cmd, report)
		}
		return nil
	}

	run, err := docLoader.LoadAll(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if run.FilesFound == 0 {
		cmd.Printf("No .txt or .md files found in %s\n", docLoader.DataDir())
		return nil
	}

	for _, result := range run.Results {
		if result.Err != nil {
			cmd.Printf("  %s: %v\n", result.Path, result.Err)
			continue
		}
		printIngestReport(cmd, result.Report)
	}
	cmd.Printf("Loaded %d/%d files\n", run.FilesLoaded, run.FilesFound)
	return nil
}

func printIngestReport(cmd *cobra.Command, report domain.IngestReport) {
	cmd.Printf("  %s: %d chunks (%d indexed, %d skipped)\n",
		report.Source, report.ChunkCount, report.Indexed, report.Skipped)
	for _, failure := range report.Failures {
		cmd.Printf("    failed %s: %v\n", failure.ChunkID, failure.Err)
	}
}

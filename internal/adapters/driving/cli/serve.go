package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdoc/internal/adapters/driving/api"
	"github.com/custodia-labs/askdoc/internal/core/domain"
)

var (
	serveAddr  string
	serveWatch bool
	serveSkip  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API.

On startup every document in the data folder is indexed, then the
server accepts requests:

  GET  /        health check
  GET  /stats   index statistics
  GET  /files   documents in the data folder
  POST /chat    ask a question  {"query": "...", "use_rag": true}
  POST /upload  upload and index a .txt or .md file (multipart)
  POST /reload  re-index the data folder

Use --watch to also re-index documents as they change on disk.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "re-index documents when files change")
	serveCmd.Flags().BoolVar(&serveSkip, "skip-load", false, "skip the initial document load")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	ctx := cmd.Context()

	if !serveSkip {
		run, err := docLoader.LoadAll(ctx, domain.IngestOptions{})
		if err != nil {
			return err
		}
		cmd.Printf("Loaded %d/%d documents\n", run.FilesLoaded, run.FilesFound)
	}

	if serveWatch {
		go func() {
			if err := docLoader.Watch(ctx); err != nil && ctx.Err() == nil {
				cmd.PrintErrf("watch stopped: %v\n", err)
			}
		}()
	}

	server, err := api.NewServer(engine, docLoader)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = appConfig.Server.Addr
	}
	if addr == "" {
		addr = ":8000"
	}

	cmd.Printf("Listening on %s\n", addr)
	return server.Start(ctx, addr)
}

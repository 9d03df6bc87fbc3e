package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lorecast/internal/queue"
)

func newInjectCommand(ctx *commandContext) *cobra.Command {
	var req queue.InjectionRequest

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Inject a book into the pipeline",
		Long: "Inject enqueues a book-discovery job. The daemon scrapes the chapter\n" +
			"index, slices the inclusive [start-url, end-url] range, and processes\n" +
			"every chapter in it to tagged audio.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.BookURL == "" || req.StartFromURL == "" || req.EndAtURL == "" {
				return fmt.Errorf("--book-url, --start-url, and --end-url are required")
			}

			st, qc, err := ctx.openClients()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := qc.EnsureGroups(cmd.Context()); err != nil {
				return err
			}
			job := queue.NewDiscoveryJob(req)
			if err := qc.Enqueue(cmd.Context(), job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Injected %s (job %s)\n", req.BookURL, job.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.BookURL, "book-url", "", "Source URL of the book's chapter index")
	cmd.Flags().StringVar(&req.MetadataURL, "metadata-url", "", "External metadata page URL")
	cmd.Flags().StringVar(&req.ShortName, "name", "", "Short display name for the book")
	cmd.Flags().StringVar(&req.StartFromURL, "start-url", "", "URL of the first chapter to process")
	cmd.Flags().StringVar(&req.EndAtURL, "end-url", "", "URL of the last chapter to process")

	return cmd
}

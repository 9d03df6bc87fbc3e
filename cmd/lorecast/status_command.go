package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"lorecast/internal/catalog"
	"lorecast/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var bookFilter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pipeline state per chapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ctx.openClients()
			if err != nil {
				return err
			}
			defer st.Close()

			chapters, err := store.ListAll[catalog.Chapter](cmd.Context(), st)
			if err != nil {
				return err
			}

			if bookFilter != "" {
				filtered := chapters[:0]
				for _, chapter := range chapters {
					if chapter.BookName == bookFilter {
						filtered = append(filtered, chapter)
					}
				}
				chapters = filtered
			}

			sort.Slice(chapters, func(i, j int) bool {
				if chapters[i].BookName != chapters[j].BookName {
					return chapters[i].BookName < chapters[j].BookName
				}
				return chapters[i].Number < chapters[j].Number
			})

			counts := make(map[catalog.Status]int)
			rows := make([][]string, 0, len(chapters))
			for _, chapter := range chapters {
				counts[chapter.Status]++
				rows = append(rows, []string{
					chapter.BookName,
					strconv.Itoa(chapter.Number),
					chapter.Title,
					string(chapter.Status),
					chapter.CreatedAt.Format("2006-01-02 15:04"),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Book", "#", "Chapter", "Status", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "\n%d chapters", len(chapters))
			for _, status := range catalog.AllStatuses() {
				if counts[status] > 0 {
					fmt.Fprintf(out, "  %s=%d", status, counts[status])
				}
			}
			fmt.Fprintln(out)

			pending, err := st.SetMembers(cmd.Context(), store.PendingSyncKey)
			if err != nil {
				return err
			}
			if len(pending) > 0 {
				sort.Strings(pending)
				fmt.Fprintf(out, "syncing: %v\n", pending)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bookFilter, "book", "", "Only show chapters of this book")
	return cmd
}

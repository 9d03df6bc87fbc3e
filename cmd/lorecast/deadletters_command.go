package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"lorecast/internal/catalog"
	"lorecast/internal/store"
)

func newDeadLettersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deadletters",
		Short: "Show jobs dropped after exhausting retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ctx.openClients()
			if err != nil {
				return err
			}
			defer st.Close()

			letters, err := store.ListAll[catalog.DeadLetter](cmd.Context(), st)
			if err != nil {
				return err
			}
			if len(letters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dead letters.")
				return nil
			}

			sort.Slice(letters, func(i, j int) bool {
				return letters[i].FailedAt.Before(letters[j].FailedAt)
			})

			rows := make([][]string, 0, len(letters))
			for _, letter := range letters {
				rows = append(rows, []string{
					letter.FailedAt.Format("2006-01-02 15:04"),
					letter.Stage,
					letter.ChapterHash,
					strconv.Itoa(letter.Attempts),
					letter.Error,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Failed", "Stage", "Chapter", "Attempts", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

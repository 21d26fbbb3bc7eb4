package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/portkeeper/infrastructure/report"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored audit runs",
		Long: `History lists audit runs stored in the history database (history.path).

Examples:
  portkeeper history --limit 5
  portkeeper history --run 3f7c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.History.Path == "" {
				return fmt.Errorf("history.path is not configured")
			}
			h, err := report.OpenHistory(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer h.Close()

			if runID != "" {
				records, err := h.Records(cmd.Context(), runID)
				if err != nil {
					return err
				}
				printRunRecords(cmd.OutOrStdout(), records)
				return nil
			}
			runs, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the records of one run")
	return cmd
}

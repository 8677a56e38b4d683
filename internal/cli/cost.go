package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cost",
		Short: "Dry-run the refresh cost for the configured tabs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			assessment, err := d.sync.AssessRefreshCost(cmd.Context(), d.cfg.Settings)
			if err != nil {
				return err
			}

			for _, tab := range assessment.PerTab {
				if tab.Err != "" {
					fmt.Printf("%-24s estimate failed: %s\n", tab.Title, tab.Err)
					continue
				}
				fmt.Printf("%-24s %d points\n", tab.Title, tab.Cost)
			}

			fmt.Println()
			fmt.Printf("total: %d points, budget: %d/%d remaining, warning: %s\n",
				assessment.TotalCost, assessment.Remaining, assessment.Limit, assessment.Warning)
			return nil
		},
	}
}

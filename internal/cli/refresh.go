package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh round and print a per-tab summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			d.sync.LoadCachedIfNeeded(ctx)
			refreshErr := d.sync.RefreshAll(ctx, true, d.cfg.Settings)

			for _, tab := range d.cfg.Settings.EnabledTabs() {
				items, err := d.sync.Items(tab.ID)
				if err != nil {
					fmt.Printf("%-24s (no data)\n", tab.Title)
					continue
				}
				fmt.Printf("%-24s %d pull requests\n", tab.Title, len(items))
			}

			if msg := d.sync.LastError(); msg != "" {
				fmt.Println()
				fmt.Println(msg)
			}
			return refreshErr
		},
	}
}

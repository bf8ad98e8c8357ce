package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming close approaches",
		Long: `Fetches the NeoWs feed from today through the next --days days and prints
one row per object, ordered by close-approach time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 || days > neows.MaxFeedDays {
				return fmt.Errorf("--days must be between 0 and %d", neows.MaxFeedDays)
			}

			start := time.Now().UTC()
			end := start.AddDate(0, 0, days)

			data, err := opts.client().Feed(cmd.Context(), start, end)
			if err != nil {
				return fmt.Errorf("could not retrieve the list of asteroids: %w", err)
			}
			approaches, err := neows.ParseFeed(bytes.NewReader(data), opts.logger)
			if err != nil {
				return err
			}

			if len(approaches) == 0 {
				cmd.Println("No approaching asteroids found")
				return nil
			}
			cmd.Print(renderApproaches(approaches))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", neows.MaxFeedDays, "number of days after today to include")
	return cmd
}

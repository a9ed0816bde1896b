package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var statsUpcoming int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard summary as JSON",
	Long: `Print the dashboard summary as JSON. With --upcoming N, print the
vaccinations due within N days instead.

Examples:
  pashuctl stats
  pashuctl stats --upcoming 14 | jq '.[].owner_name'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if remote() {
			client, err := newClient()
			if err != nil {
				return err
			}
			path := apiPath("/analytics/summary")
			if statsUpcoming > 0 {
				path = apiPath("/analytics/vaccinations/upcoming?days=") + strconv.Itoa(statsUpcoming)
			}
			data, err := client.Get(ctx, path)
			if err != nil {
				return wrap("stats", err)
			}
			return printRaw(out, data)
		}

		l, err := openLocal(ctx)
		if err != nil {
			return err
		}
		defer l.Close()

		if statsUpcoming > 0 {
			due, err := l.domain.Analytics.Upcoming(ctx, statsUpcoming)
			if err != nil {
				return wrap("upcoming", err)
			}
			return printJSON(out, due)
		}

		summary, err := l.domain.Analytics.Summary(ctx)
		if err != nil {
			return wrap("summary", err)
		}
		return printJSON(out, summary)
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsUpcoming, "upcoming", 0, "list vaccinations due within this many days")
	rootCmd.AddCommand(statsCmd)
}

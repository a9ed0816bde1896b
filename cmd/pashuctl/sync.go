package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pashuvision/internal/syncer"
)

var syncStatusOnly bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass, pushing unsynced registrations to the remote",
	Long: `Run one sync pass, pushing unsynced completed registrations to the
configured remote. With --status, report the loop state without syncing.

Examples:
  pashuctl sync
  pashuctl sync --server http://localhost:8080 --status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if remote() {
			client, err := newClient()
			if err != nil {
				return err
			}
			if syncStatusOnly {
				var status syncer.Status
				if err := client.DoJSON(ctx, http.MethodGet, apiPath("/sync/status"), nil, nil, &status); err != nil {
					return wrap("sync status", err)
				}
				return printJSON(out, status)
			}
			var result syncer.Result
			if err := client.DoJSON(ctx, http.MethodPost, apiPath("/sync"), nil, nil, &result); err != nil {
				return wrap("sync", err)
			}
			return printJSON(out, result)
		}

		l, err := openLocal(ctx)
		if err != nil {
			return err
		}
		defer l.Close()

		if syncStatusOnly {
			status, err := l.domain.Sync.Status(ctx)
			if err != nil {
				return wrap("sync status", err)
			}
			return printJSON(out, status)
		}
		return printJSON(out, l.domain.Sync.Run(ctx))
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncStatusOnly, "status", false, "report status only")
	rootCmd.AddCommand(syncCmd)
}

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pashuvision/internal/analytics"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export completed registrations as CSV, one row per animal",
	Long: `Export completed registrations as CSV, one row per animal.

Use -o - to write to stdout.

Examples:
  pashuctl export
  pashuctl export --server http://field-01:8080 -o field-01.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var buf bytes.Buffer

		if remote() {
			client, err := newClient()
			if err != nil {
				return err
			}
			data, err := client.Get(ctx, apiPath("/analytics/export"))
			if err != nil {
				return wrap("export", err)
			}
			buf.Write(data)
		} else {
			l, err := openLocal(ctx)
			if err != nil {
				return err
			}
			defer l.Close()

			regs, err := l.domain.Analytics.Completed(ctx)
			if err != nil {
				return wrap("load registrations", err)
			}
			if err := analytics.WriteCSV(&buf, regs); err != nil {
				return wrap("write csv", err)
			}
		}

		return writeOutput(cmd.OutOrStdout(), exportOutput, &buf)
	},
}

func writeOutput(stdout io.Writer, path string, r io.Reader) error {
	if path == "-" {
		_, err := io.Copy(stdout, r)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return wrap("create output", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return wrap("write output", err)
	}
	fmt.Fprintf(stdout, "wrote %d bytes to %s\n", n, path)
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", analytics.ExportFilename, "output file")
	rootCmd.AddCommand(exportCmd)
}

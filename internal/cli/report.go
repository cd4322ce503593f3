package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/core"
	"spendwise/internal/report"
)

func newReportCommand(opts *options) *cobra.Command {
	var (
		username string
		month    string
		year     string
		out      string
	)

	kinds := make([]string, len(report.Kinds))
	for i, k := range report.Kinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:       "report <" + strings.Join(kinds, "|") + ">",
		Short:     "Export a CSV report for one user",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := time.Now().UTC()
			if month == "" {
				month = now.Format(core.MonthLayout)
			}
			if year == "" {
				year = now.Format("2006")
			}

			a, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			user, found, err := a.auth.Lookup(ctx, username)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("unknown user %q", username)
			}
			expenses, err := a.expenses.List(ctx, user.ID)
			if err != nil {
				return err
			}

			kind := report.Kind(args[0])
			params := report.Params{Month: month, Year: year}
			table, filename, err := report.Build(kind, expenses, params)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				if info, err := os.Stat(out); err == nil && info.IsDir() {
					out = filepath.Join(out, filename)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create report file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := table.WriteCSV(w); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			summary := report.Summarize(kind, expenses, params)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d expenses, %s\n",
				summary.Period, summary.Count, core.FormatCurrency(summary.Total))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username whose expenses are exported")
	cmd.Flags().StringVar(&month, "month", "", "month for the monthly report (YYYY-MM, default current)")
	cmd.Flags().StringVar(&year, "year", "", "year for the yearly report (YYYY, default current)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default stdout)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/tabletpath/internal/sessionlog"
)

func newLogCmd(e *env) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show or export the session log",
	}
	cmd.PersistentFlags().StringVar(&path, "file", "", "session log (default from config)")
	logPath := func() string {
		if path != "" {
			return path
		}
		return e.cfg.SessionLogPath
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the logged jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := sessionlog.Read(logPath())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tJOB\tSHAPE\tQTY\tHEADS\tAPI MG\tUNIT MG")
			for _, en := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.2f\t%.1f\n",
					en.Timestamp.Local().Format(time.DateTime), en.JobID, en.Shape,
					en.Quantity, en.HeadMode, en.APITotalMg, en.UnitWeightMg)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Write the session log to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := sessionlog.Read(logPath())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("session log %s is empty", logPath())
			}
			return sessionlog.ExportXLSX(args[0], entries)
		},
	})
	return cmd
}

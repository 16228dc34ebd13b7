package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/schedulizer/internal/core"
	"github.com/JonMunkholm/schedulizer/internal/facultyload"
	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

func newLoadsCmd(c *cli) *cobra.Command {
	var (
		asCSV    bool
		xlsxPath string
	)

	cmd := &cobra.Command{
		Use:   "loads FILE...",
		Short: "Print the faculty load report for one or more schedule files",
		Long: `Print the faculty load report for one or more schedule files.

The first spreadsheet replaces the empty schedule; each following one is
merged into it the same way an additive import is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := schedule.NewState()
			imported := 0

			for _, path := range args {
				payload, err := readPayload(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if payload.Type == core.FileJSON {
					c.logger.Warn("constraints file ignored", "file", path)
					continue
				}

				sched, err := c.parseSchedule(cmd.Context(), path, payload)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				st = schedule.Reduce(st, schedule.ImportSchedule{Schedule: sched, Additive: imported > 0})
				imported++
			}

			if imported == 0 {
				return fmt.Errorf("%w: no spreadsheet among the arguments", core.ErrNoFile)
			}

			rows := facultyload.Aggregate(st.Schedule)

			if xlsxPath != "" {
				buf, err := facultyload.WriteXLSX(rows)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, buf.Bytes(), 0o644); err != nil {
					return err
				}
				c.logger.Info("faculty loads written", "path", xlsxPath, "faculty", len(rows))
				return nil
			}
			if asCSV {
				return facultyload.WriteCSV(cmd.OutOrStdout(), rows)
			}
			return c.encode(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the report as csv")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the report to an xlsx workbook at `path`")
	cmd.MarkFlagsMutuallyExclusive("csv", "xlsx")
	return cmd
}

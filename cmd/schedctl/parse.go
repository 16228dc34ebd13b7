package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/schedulizer/internal/core"
	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

func newParseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a csv, xlsx or constraints json file and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0])
			if err != nil {
				return err
			}
			if payload.Type == core.FileJSON {
				return c.encode(cmd.OutOrStdout(), payload.Constraints)
			}

			sched, err := c.parseSchedule(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			st := schedule.Reduce(schedule.NewState(), schedule.ImportSchedule{Schedule: sched})
			return c.encode(cmd.OutOrStdout(), st.Schedule)
		},
	}
}

// parseSchedule runs the row parser over a decoded spreadsheet.
func (c *cli) parseSchedule(ctx context.Context, path string, payload core.Payload) (schedule.Schedule, error) {
	sched, stats, err := core.ParseCSVContext(ctx, strings.NewReader(payload.Text))
	if err != nil {
		return schedule.Schedule{}, err
	}

	c.logger.Info("parsed",
		"file", path,
		"type", payload.Type,
		"rows", stats.Rows,
		"skipped_rows", stats.SkippedRows,
		"empty_meetings", stats.EmptyMeetings,
	)
	if len(stats.UnknownHeaders) > 0 {
		c.logger.Warn("unrecognized columns ignored", "file", path, "headers", stats.UnknownHeaders)
	}
	return sched, nil
}

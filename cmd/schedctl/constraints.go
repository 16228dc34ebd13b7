package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/schedulizer/internal/core"
)

func newConstraintsCmd(c *cli) *cobra.Command {
	var groups []string

	cmd := &cobra.Command{
		Use:   "constraints FILE",
		Short: "Normalize a constraints json file into its expanded conflict map",
		Example: `  schedctl constraints conflicts.json
  schedctl constraints conflicts.json --group "MATH-171,CS-108" -f yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0])
			if err != nil {
				return err
			}
			if payload.Type != core.FileJSON {
				return fmt.Errorf("%w: %s is not a constraints json file", core.ErrUnsupportedFormat, args[0])
			}

			extra := make([][]string, 0, len(groups))
			for _, g := range groups {
				if members := splitGroup(g); len(members) > 0 {
					extra = append(extra, members)
				}
			}

			out := core.ExpandConstraints(payload.Constraints, extra)
			c.logger.Info("constraints loaded", "file", args[0], "entries", len(out), "extra_groups", len(extra))
			return c.encode(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringArrayVarP(&groups, "group", "g", nil, "additional comma-separated conflict group (repeatable)")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/schedulizer/internal/core"
	"github.com/JonMunkholm/schedulizer/internal/logging"
)

// cli carries the flags shared by every subcommand.
type cli struct {
	format   string
	logLevel string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "schedctl",
		Short:         "Inspect course schedule exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.format {
			case "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (want json or yaml)", c.format)
			}
			c.logger = logging.New(cmd.ErrOrStderr(), c.logLevel, "text")
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.format, "format", "f", "json", "output format: json or yaml")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newParseCmd(c),
		newLoadsCmd(c),
		newConstraintsCmd(c),
	)
	return root
}

// readPayload loads and decodes one input file.
func readPayload(path string) (core.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Payload{}, err
	}
	if len(data) == 0 {
		return core.Payload{}, fmt.Errorf("%w: %s", core.ErrEmptyFile, filepath.Base(path))
	}
	return core.Decode(path, data)
}

// encode writes v to w in the selected format.
func (c *cli) encode(w io.Writer, v any) error {
	if c.format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError prefixes err with its user-facing message and code when known.
func userError(err error) error {
	msg := core.MapError(err)
	if msg.Code == "" || msg.Code == "ERR000" {
		return err
	}
	return fmt.Errorf("%s (%s): %w", msg.Message, msg.Code, err)
}

func splitGroup(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

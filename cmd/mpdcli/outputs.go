package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pior/mpd"
	"github.com/spf13/cobra"
)

func newOutputsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "List audio outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *mpd.Client) error {
				outputs, err := client.Outputs(c)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderOutputs(outputs))
				return nil
			})
		},
	}
}

func newEnableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <id>",
		Short: "Enable an audio output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOutputID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *mpd.Client) error {
				return client.EnableOutput(c, id)
			})
		},
	}
}

func newDisableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable an audio output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOutputID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *mpd.Client) error {
				return client.DisableOutput(c, id)
			})
		},
	}
}

func parseOutputID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid output id %q", arg)
	}
	return id, nil
}

func renderOutputs(outputs []*mpd.Output) string {
	rows := make([][]string, 0, len(outputs))
	for _, o := range outputs {
		rows = append(rows, []string{
			strconv.Itoa(o.ID),
			o.Name,
			o.Plugin,
			yesNo(o.Enabled),
			formatAttributes(o.Attributes),
		})
	}

	return renderTable(
		[]string{"ID", "Name", "Plugin", "Enabled", "Attributes"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

// formatAttributes renders attributes as sorted name=value pairs.
func formatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + attrs[name]
	}
	return strings.Join(parts, " ")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		hostFlag   string
		portFlag   int
		timeout    time.Duration
		logLevel   string
	)

	ctx := &commandContext{
		configFlag: &configFlag,
		hostFlag:   &hostFlag,
		portFlag:   &portFlag,
		timeout:    &timeout,
		logLevel:   &logLevel,
	}

	rootCmd := &cobra.Command{
		Use:           "mpdcli",
		Short:         "Query and control a Music Player Daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path (default ~/.config/mpdcli/config.toml)")
	flags.StringVar(&hostFlag, "host", "", "Daemon host or unix socket path")
	flags.IntVar(&portFlag, "port", 0, "Daemon TCP port")
	flags.DurationVar(&timeout, "timeout", 0, "Timeout for the whole command")
	flags.StringVar(&logLevel, "log-level", "", "Log level: "+logLevelNames())

	rootCmd.AddCommand(newOutputsCommand(ctx))
	rootCmd.AddCommand(newEnableCommand(ctx))
	rootCmd.AddCommand(newDisableCommand(ctx))
	rootCmd.AddCommand(newPlaylistCommand(ctx))
	rootCmd.AddCommand(newCurrentCommand(ctx))
	rootCmd.AddCommand(newBenchCommand(ctx))

	return rootCmd
}

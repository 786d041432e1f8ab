package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keja",
		Short: "keja - rental listings API",
		Long: `keja serves a rental listings API: accounts with cookie sessions,
listings with optional images, and search by house type and location.

Configuration is read from the environment (DATABASE_URL, REDIS_URL, ...).`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitDBCmd())

	return cmd
}

package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd creates the root command and its subcommands
func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "dncscrub",
		Short: "Scrub phone number lists against Do-Not-Call registries",
		Long: `dncscrub normalizes and validates US phone numbers, then checks each valid number
against the TCPA, Person and Premium DNC lookup services. A number is DNC when any
source flags it. Run it as an HTTP service or check a single file from the shell.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is configs/config.yaml when present)")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newCheckCmd(&configPath))
	return cmd
}

// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Root returns the root command for the fleetctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Manage named clusters of cloud instances",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command given")
		},
	}

	// Cluster lifecycle
	cmd.AddCommand(Create())
	cmd.AddCommand(Add())
	cmd.AddCommand(Kill())
	cmd.AddCommand(Shutdown())
	cmd.AddCommand(ShutdownAll())
	cmd.AddCommand(Show())
	cmd.AddCommand(ShowAll())
	cmd.AddCommand(DNS())

	// Fleet operations
	cmd.AddCommand(Login())
	cmd.AddCommand(SSH())
	cmd.AddCommand(SSHAll())
	cmd.AddCommand(SCP())
	cmd.AddCommand(SCPAll())

	// Maintenance
	cmd.AddCommand(Recover())
	cmd.AddCommand(Backup())
	cmd.AddCommand(Version())

	return cmd
}

// parseIndex converts an INDEX argument.
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid instance index %q: must be a non-negative integer", arg)
	}
	return index, nil
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/fleetctl/cmd/fleetctl/handlers"
)

// Create returns the create command.
func Create() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new cluster",
		Long: `Create launches instances, waits until every one of them is running
with a public address and records them as a new cluster.

Instance type and image default to the config file, then to the provider's
built-in defaults (m3.xlarge / ami-02938c63 on ec2).

Example:
  fleetctl create web -n 3 -t m1.small --ami ami-12345678`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Create(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "num-instances", "n", 1, "Number of instances to launch")
	cmd.Flags().StringVarP(&opts.InstanceType, "type", "t", "", "Instance type (defaults to the configured type)")
	cmd.Flags().StringVar(&opts.Image, "ami", "", "Image to boot (defaults to the configured image)")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Cloud provider: ec2 or hcloud (defaults to the configured provider)")

	return cmd
}

// Add returns the add command.
func Add() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add instances to a cluster",
		Long: `Add launches more instances with the cluster's instance type and image
and appends them. Existing instances keep their indices.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Add(cmd.Context(), args[0], count)
		},
	}

	cmd.Flags().IntVarP(&count, "num-instances", "n", 1, "Number of instances to add")

	return cmd
}

// Kill returns the kill command.
func Kill() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "kill NAME INDEX",
		Short: "Terminate one instance of a cluster",
		Long: `Kill terminates the instance at INDEX and removes it from the cluster.
Instances after it move down one index. Killing the last instance shuts
down the whole cluster.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return handlers.Kill(cmd.Context(), args[0], index, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// Shutdown returns the shutdown command.
func Shutdown() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "shutdown NAME",
		Short: "Terminate every instance of a cluster and forget it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Shutdown(cmd.Context(), args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// ShutdownAll returns the shutdown-all command.
func ShutdownAll() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "shutdown-all",
		Aliases: []string{"shutdown_all"},
		Short:   "Shut down every cluster",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ShutdownAll(cmd.Context(), yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// Show returns the show command.
func Show() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show the instances of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Show(cmd.Context(), args[0])
		},
	}
}

// ShowAll returns the show-all command.
func ShowAll() *cobra.Command {
	return &cobra.Command{
		Use:     "show-all",
		Aliases: []string{"show_all"},
		Short:   "Show every cluster",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ShowAll(cmd.Context())
		},
	}
}

// DNS returns the dns command.
func DNS() *cobra.Command {
	return &cobra.Command{
		Use:   "dns NAME",
		Short: "Print user@address for every instance of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DNS(cmd.Context(), args[0])
		},
	}
}

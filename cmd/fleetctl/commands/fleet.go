package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/fleetctl/cmd/fleetctl/handlers"
)

// Login returns the login command.
func Login() *cobra.Command {
	return &cobra.Command{
		Use:   "login NAME [INDEX]",
		Short: "Open an interactive shell on an instance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := 0
			if len(args) == 2 {
				var err error
				if index, err = parseIndex(args[1]); err != nil {
					return err
				}
			}
			return handlers.Login(cmd.Context(), args[0], index)
		},
	}
}

// SSH returns the ssh command.
func SSH() *cobra.Command {
	var background bool

	cmd := &cobra.Command{
		Use:   "ssh NAME INDEX COMMAND",
		Short: "Run a command on one instance",
		Long: `SSH runs COMMAND on the instance at INDEX and prints its output.

With --background the command is detached with nohup. Its output is written
to fleetctl.out and fleetctl.err in the remote home directory.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return handlers.SSH(cmd.Context(), args[0], index, args[2], background)
		},
	}

	cmd.Flags().BoolVar(&background, "background", false, "Detach the command and return immediately")

	return cmd
}

// SSHAll returns the ssh-all command.
func SSHAll() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:     "ssh-all NAME COMMAND",
		Aliases: []string{"ssh_all"},
		Short:   "Run a command on every instance of a cluster",
		Long: `SSH-all runs COMMAND on every instance. A failure on one instance does
not stop the others; failed indices are reported at the end.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SSHAll(cmd.Context(), args[0], args[1], parallel)
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 0, "Instances to work on at once (defaults to the configured parallelism)")

	return cmd
}

// SCP returns the scp command.
func SCP() *cobra.Command {
	return &cobra.Command{
		Use:   "scp NAME INDEX LOCAL [REMOTE]",
		Short: "Copy a file or directory to one instance",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return handlers.SCP(cmd.Context(), args[0], index, args[2], optionalArg(args, 3))
		},
	}
}

// SCPAll returns the scp-all command.
func SCPAll() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:     "scp-all NAME LOCAL [REMOTE]",
		Aliases: []string{"scp_all"},
		Short:   "Copy a file or directory to every instance of a cluster",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SCPAll(cmd.Context(), args[0], args[1], optionalArg(args, 2), parallel)
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 0, "Instances to work on at once (defaults to the configured parallelism)")

	return cmd
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

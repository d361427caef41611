package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/fleetctl/cmd/fleetctl/handlers"
)

// Recover returns the recover command.
func Recover() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Terminate instances left behind by interrupted launches",
		Long: `Recover reads the launch journal for instances that were started but
never recorded on a cluster, for example because provisioning was
interrupted or an instance failed to boot, and terminates them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Recover(cmd.Context(), dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List orphaned instances without terminating them")

	return cmd
}

// Backup returns the backup command with its push and pull subcommands.
func Backup() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Store or restore registry snapshots in S3",
	}

	cmd.AddCommand(backupPush())
	cmd.AddCommand(backupPull())

	return cmd
}

func backupPush() *cobra.Command {
	var opts handlers.BackupOptions

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload the registry to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.BackupPush(cmd.Context(), opts)
		},
	}

	bindBackupFlags(cmd, &opts)

	return cmd
}

func backupPull() *cobra.Command {
	var opts handlers.BackupOptions

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace the registry with a snapshot from S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.BackupPull(cmd.Context(), opts)
		},
	}

	bindBackupFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite a registry that already holds clusters")

	return cmd
}

func bindBackupFlags(cmd *cobra.Command, opts *handlers.BackupOptions) {
	cmd.Flags().StringVar(&opts.Bucket, "bucket", "", "S3 bucket (defaults to backup.bucket from the config file)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "Object key (defaults to backup.key from the config file)")
}

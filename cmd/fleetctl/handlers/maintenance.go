package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/fleetctl/internal/config"
	"github.com/imamik/fleetctl/internal/ui/render"
)

// BackupOptions holds the backup commands' flags.
type BackupOptions struct {
	Bucket string
	Key    string
	Force  bool
}

// Recover terminates instances left behind by interrupted launches.
func Recover(ctx context.Context, dryRun bool) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	entries, err := s.manager.Recover(ctx, dryRun)
	render.New(stdout).Pending(entries, dryRun)
	return err
}

// BackupPush uploads a registry snapshot to S3.
func BackupPush(ctx context.Context, opts BackupOptions) error {
	s, store, opts, err := backupSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if err := store.EnsureBucket(ctx, opts.Bucket); err != nil {
		return err
	}
	n, err := s.manager.Backup(ctx, store, opts.Bucket, opts.Key)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Uploaded %d cluster(s) to s3://%s/%s\n", n, opts.Bucket, opts.Key)
	return nil
}

// BackupPull replaces the local registry with a snapshot from S3.
func BackupPull(ctx context.Context, opts BackupOptions) error {
	s, store, opts, err := backupSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	n, err := s.manager.Restore(ctx, store, opts.Bucket, opts.Key, opts.Force)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Restored %d cluster(s) from s3://%s/%s\n", n, opts.Bucket, opts.Key)
	return nil
}

func backupSession(ctx context.Context, opts BackupOptions) (*session, backupStore, BackupOptions, error) {
	s, err := newSession(config.ProviderEC2)
	if err != nil {
		return nil, nil, opts, err
	}
	if opts.Bucket == "" {
		opts.Bucket = s.cfg.Backup.Bucket
	}
	if opts.Key == "" {
		opts.Key = s.cfg.Backup.Key
	}
	if opts.Bucket == "" {
		s.close(ctx)
		return nil, nil, opts, fmt.Errorf("no backup bucket configured: pass --bucket or set backup.bucket in the config file")
	}

	store, err := newBackupStore(ctx, s.cfg, s.env)
	if err != nil {
		s.close(ctx)
		return nil, nil, opts, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return s, store, opts, nil
}

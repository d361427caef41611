package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/fleetctl/internal/ui/render"
)

// SSH runs a command on one instance and prints its output.
func SSH(ctx context.Context, name string, index int, command string, background bool) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	e, err := s.executor(0)
	if err != nil {
		return err
	}
	out, err := e.Run(ctx, name, index, command, background)
	fmt.Fprint(stdout, out)
	if err != nil {
		return err
	}
	if background {
		fmt.Fprintf(stdout, "Started in background on %s[%d], output in fleetctl.out and fleetctl.err\n", name, index)
	}
	return nil
}

// SSHAll runs a command on every instance.
func SSHAll(ctx context.Context, name, command string, parallelism int) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	e, err := s.executor(parallelism)
	if err != nil {
		return err
	}
	results, err := e.RunAll(ctx, name, command)
	render.New(stdout).Results(results)
	return err
}

// SCP copies a local file or directory to one instance.
func SCP(ctx context.Context, name string, index int, localPath, remotePath string) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	e, err := s.executor(0)
	if err != nil {
		return err
	}
	return e.Copy(ctx, name, index, localPath, remotePath)
}

// SCPAll copies a local file or directory to every instance.
func SCPAll(ctx context.Context, name, localPath, remotePath string, parallelism int) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	e, err := s.executor(parallelism)
	if err != nil {
		return err
	}
	results, err := e.CopyAll(ctx, name, localPath, remotePath)
	render.New(stdout).Results(results)
	return err
}

// Login opens an interactive shell on one instance.
func Login(ctx context.Context, name string, index int) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	e, err := s.executor(0)
	if err != nil {
		return err
	}
	return e.Login(ctx, name, index)
}

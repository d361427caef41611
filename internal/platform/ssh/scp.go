package ssh

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRemotePath is where Copy places files when no destination is given.
const DefaultRemotePath = "."

// Copy pushes localPath to remotePath on host using the scp protocol.
// Directories are copied recursively.
func (c *Client) Copy(ctx context.Context, host, localPath, remotePath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}
	if remotePath == "" {
		remotePath = DefaultRemotePath
	}

	client, err := c.connect(ctx, host)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	stop := closeOnDone(ctx, client)
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session on %s: %w", host, err)
	}
	defer func() { _ = session.Close() }()

	stdin, err := session.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		return err
	}

	cmd := "scp -t " + shellQuote(remotePath)
	if info.IsDir() {
		cmd = "scp -rt " + shellQuote(remotePath)
	}
	if err := session.Start(cmd); err != nil {
		return fmt.Errorf("failed to start scp on %s: %w", host, err)
	}

	s := &scpSender{w: stdin, r: bufio.NewReader(stdout)}
	sendErr := s.start(localPath, info)
	_ = stdin.Close()
	waitErr := session.Wait()

	if sendErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("copy to %s:%s failed: %w", host, remotePath, sendErr)
	}
	if waitErr != nil {
		return fmt.Errorf("scp on %s exited: %w", host, waitErr)
	}
	return nil
}

// scpSender speaks the source side of the scp protocol.
type scpSender struct {
	w io.Writer
	r *bufio.Reader
}

func (s *scpSender) start(path string, info os.FileInfo) error {
	if err := s.ack(); err != nil {
		return err
	}
	if info.IsDir() {
		return s.sendDir(path, info)
	}
	return s.sendFile(path, info)
}

func (s *scpSender) sendFile(path string, info os.FileInfo) error {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(s.w, "C%04o %d %s\n", info.Mode().Perm(), info.Size(), info.Name()); err != nil {
		return err
	}
	if err := s.ack(); err != nil {
		return err
	}
	if _, err := io.CopyN(s.w, f, info.Size()); err != nil {
		return fmt.Errorf("failed to send %s: %w", path, err)
	}
	if _, err := s.w.Write([]byte{0}); err != nil {
		return err
	}
	return s.ack()
}

func (s *scpSender) sendDir(path string, info os.FileInfo) error {
	if _, err := fmt.Fprintf(s.w, "D%04o 0 %s\n", info.Mode().Perm(), info.Name()); err != nil {
		return err
	}
	if err := s.ack(); err != nil {
		return err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		childInfo, err := entry.Info()
		if err != nil {
			return err
		}
		// Symlinked files are sent as their target. Symlinked directories
		// are skipped so a link back up the tree cannot recurse forever.
		if childInfo.Mode()&os.ModeSymlink != 0 {
			if childInfo, err = os.Stat(child); err != nil || childInfo.IsDir() {
				continue
			}
		}
		switch {
		case childInfo.IsDir():
			err = s.sendDir(child, childInfo)
		case childInfo.Mode().IsRegular():
			err = s.sendFile(child, childInfo)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(s.w, "E\n"); err != nil {
		return err
	}
	return s.ack()
}

// ack reads one response byte. 1 is a warning and 2 a fatal error; both
// carry a message line.
func (s *scpSender) ack() error {
	b, err := s.r.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to read scp response: %w", err)
	}
	if b == 0 {
		return nil
	}
	msg, _ := s.r.ReadString('\n')
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = fmt.Sprintf("scp response code %d", b)
	}
	return errors.New(msg)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

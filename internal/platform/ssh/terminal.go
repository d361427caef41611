package ssh

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// attachTerminal requests a pty for session and puts the local terminal in
// raw mode when stdin is one. The returned func restores the terminal.
func attachTerminal(session *ssh.Session, stdin io.Reader) (func(), error) {
	width, height := 80, 24
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		if err := session.RequestPty("xterm", height, width, ssh.TerminalModes{}); err != nil {
			return nil, fmt.Errorf("failed to request pty: %w", err)
		}
		return func() {}, nil
	}

	fd := int(f.Fd())
	if w, h, err := term.GetSize(fd); err == nil {
		width, height = w, h
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	termType := os.Getenv("TERM")
	if termType == "" {
		termType = "xterm-256color"
	}
	if err := session.RequestPty(termType, height, width, modes); err != nil {
		return nil, fmt.Errorf("failed to request pty: %w", err)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set terminal raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

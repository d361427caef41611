package ssh

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"

	fltesting "github.com/imamik/fleetctl/internal/testing"
)

func generateTestKey(t *testing.T) *fltesting.KeyPair {
	t.Helper()
	return fltesting.GenerateKeyPair(t)
}

// testSSHServer is an in-process SSH server that echoes exec requests,
// accepts scp uploads and serves a canned login shell.
type testSSHServer struct {
	listener net.Listener
	config   *ssh.ServerConfig

	mu       sync.Mutex
	commands []string
	files    map[string]string
	dirs     []string
}

// newTestSSHServer starts a server that only accepts clientKey.
func newTestSSHServer(t *testing.T, clientKey *fltesting.KeyPair) *testSSHServer {
	t.Helper()

	hostKey := generateTestKey(t)
	hostSigner, err := ssh.ParsePrivateKey(hostKey.PrivateKey)
	if err != nil {
		t.Fatalf("failed to parse host key: %v", err)
	}
	authorized, _, _, _, err := ssh.ParseAuthorizedKey(clientKey.PublicKey)
	if err != nil {
		t.Fatalf("failed to parse client public key: %v", err)
	}

	config := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown key")
		},
	}
	config.AddHostKey(hostSigner)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := &testSSHServer{listener: listener, config: config, files: map[string]string{}}
	go s.serve()
	t.Cleanup(func() { _ = listener.Close() })
	return s
}

func (s *testSSHServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *testSSHServer) recordedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *testSSHServer) recordedFiles() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

func (s *testSSHServer) recordedDirs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dirs...)
}

func (s *testSSHServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *testSSHServer) handleConn(conn net.Conn) {
	_, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		_ = conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(ch, requests)
	}
}

func (s *testSSHServer) handleSession(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()

	for req := range requests {
		switch req.Type {
		case "pty-req":
			_ = req.Reply(true, nil)
		case "shell":
			_ = req.Reply(true, nil)
			_, _ = io.WriteString(ch, "welcome\n")
			sendExitStatus(ch, 0)
			return
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				return
			}
			_ = req.Reply(true, nil)
			sendExitStatus(ch, s.exec(ch, payload.Command))
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

func (s *testSSHServer) exec(ch ssh.Channel, command string) uint32 {
	s.mu.Lock()
	s.commands = append(s.commands, command)
	s.mu.Unlock()

	switch {
	case strings.HasPrefix(command, "scp -rt ") || strings.HasPrefix(command, "scp -t "):
		dest := strings.Trim(command[strings.LastIndex(command, " ")+1:], "'")
		if err := s.sink(ch, dest); err != nil {
			return 1
		}
		return 0
	case strings.HasPrefix(command, "exit "):
		code, _ := strconv.Atoi(strings.TrimPrefix(command, "exit "))
		_, _ = io.WriteString(ch.Stderr(), "boom\n")
		return uint32(code) //nolint:gosec // test input
	default:
		_, _ = io.WriteString(ch, "ran: "+command+"\n")
		return 0
	}
}

// sink is a minimal scp receiver recording uploaded files by path.
func (s *testSSHServer) sink(ch ssh.Channel, dest string) error {
	r := bufio.NewReader(ch)
	ack := func() { _, _ = ch.Write([]byte{0}) }
	stack := []string{dest}

	ack()
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.SplitN(strings.TrimSpace(line[1:]), " ", 3)
		switch line[0] {
		case 'C':
			size, _ := strconv.Atoi(fields[1])
			ack()
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return err
			}
			if _, err := r.ReadByte(); err != nil {
				return err
			}
			s.mu.Lock()
			s.files[path.Join(append(stack, fields[2])...)] = string(buf)
			s.mu.Unlock()
			ack()
		case 'D':
			stack = append(stack, fields[2])
			s.mu.Lock()
			s.dirs = append(s.dirs, path.Join(stack...))
			s.mu.Unlock()
			ack()
		case 'E':
			stack = stack[:len(stack)-1]
			ack()
		default:
			return fmt.Errorf("unexpected scp message %q", line)
		}
	}
}

func sendExitStatus(ch ssh.Channel, code uint32) {
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{code}))
}

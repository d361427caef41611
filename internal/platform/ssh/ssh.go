// Package ssh provides SSH client utilities for executing commands on remote servers.
// It handles connection establishment with retry logic, key-based authentication,
// and command execution with context support.
//
// Security: Host key verification is disabled by default since fleet instances
// are short lived and recycled addresses would otherwise trip known_hosts.
// Configure HostKeyCallback for environments with persistent servers.
package ssh

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/fleetctl/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback

	// Stdin, Stdout and Stderr are attached to interactive logins.
	// They default to the process's standard streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Client executes commands on remote hosts via SSH.
// It parses the private key once during construction and
// creates connections on-demand per call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // instances are ephemeral
	}
	if configCopy.Stdin == nil {
		configCopy.Stdin = os.Stdin
	}
	if configCopy.Stdout == nil {
		configCopy.Stdout = os.Stdout
	}
	if configCopy.Stderr == nil {
		configCopy.Stderr = os.Stderr
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// User returns the login user.
func (c *Client) User() string {
	return c.config.User
}

// Run executes command on host and returns its combined stdout and stderr.
// A non-zero exit status is returned as an error alongside the output.
func (c *Client) Run(ctx context.Context, host, command string) (string, error) {
	client, err := c.connect(ctx, host)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()
	stop := closeOnDone(ctx, client)
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", host, err)
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(command)
	if err != nil {
		if ctx.Err() != nil {
			return string(output), ctx.Err()
		}
		return string(output), fmt.Errorf("command failed on %s: %w", host, err)
	}

	return string(output), nil
}

// Login attaches the configured terminal streams to a login shell on host
// and blocks until the shell exits.
func (c *Client) Login(ctx context.Context, host string) error {
	client, err := c.connect(ctx, host)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session on %s: %w", host, err)
	}
	defer func() { _ = session.Close() }()

	restore, err := attachTerminal(session, c.config.Stdin)
	if err != nil {
		return err
	}
	defer restore()

	session.Stdin = c.config.Stdin
	session.Stdout = c.config.Stdout
	session.Stderr = c.config.Stderr

	if err := session.Shell(); err != nil {
		return fmt.Errorf("failed to start shell on %s: %w", host, err)
	}
	if err := session.Wait(); err != nil {
		if _, ok := err.(*ssh.ExitError); ok {
			return nil
		}
		return fmt.Errorf("session on %s ended: %w", host, err)
	}
	return nil
}

// connect establishes SSH connection with retry logic.
func (c *Client) connect(ctx context.Context, host string) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(c.config.Port))
	var client *ssh.Client

	// Freshly booted instances often refuse connections for a few seconds
	// after they report running.
	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = dial(ctx, addr, config)
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s after %d retry attempts: %w",
			addr, c.config.MaxRetries, err)
	}

	return client, nil
}

func dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// closeOnDone tears the connection down when ctx is cancelled so blocked
// session calls return.
func closeOnDone(ctx context.Context, client *ssh.Client) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

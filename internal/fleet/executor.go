package fleet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/imamik/fleetctl/internal/metrics"
	"github.com/imamik/fleetctl/internal/registry"
	"github.com/imamik/fleetctl/internal/util/async"
)

const (
	// DefaultParallelism bounds how many instances RunAll and CopyAll work on at once.
	DefaultParallelism = 4
	// DefaultRemotePath is where Copy puts files when no destination is given.
	DefaultRemotePath = "."

	backgroundStdout = "fleetctl.out"
	backgroundStderr = "fleetctl.err"
)

// Remote executes work on a single host.
type Remote interface {
	Run(ctx context.Context, host, command string) (string, error)
	Copy(ctx context.Context, host, localPath, remotePath string) error
	Login(ctx context.Context, host string) error
}

// Clusters resolves a cluster name to a snapshot of its record.
type Clusters interface {
	Cluster(name string) (*registry.Cluster, error)
}

// Result is the outcome of one instance in a fleet-wide operation.
type Result struct {
	Index  int
	Host   string
	Output string
	Err    error
}

// Executor dispatches remote work to cluster members.
type Executor struct {
	clusters    Clusters
	remote      Remote
	parallelism int
	log         logr.Logger
	metrics     *metrics.Recorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithParallelism bounds fan-out. 1 runs instances strictly in index order.
func WithParallelism(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Executor) {
		e.metrics = r
	}
}

// NewExecutor creates an Executor.
func NewExecutor(clusters Clusters, remote Remote, opts ...Option) *Executor {
	e := &Executor{
		clusters:    clusters,
		remote:      remote,
		parallelism: DefaultParallelism,
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes command on the instance at index and returns its output.
// A background command is detached with nohup and returns immediately; its
// output lands in fleetctl.out and fleetctl.err in the remote home directory.
func (e *Executor) Run(ctx context.Context, name string, index int, command string, background bool) (string, error) {
	host, err := e.host(name, index)
	if err != nil {
		return "", err
	}
	if background {
		command = Background(command)
	}

	e.log.V(1).Info("Running remote command", "cluster", name, "index", index, "host", host)
	out, err := e.remote.Run(ctx, host, command)
	e.metrics.RemoteCommand(err)
	return out, err
}

// RunAll executes command on every instance of the cluster.
func (e *Executor) RunAll(ctx context.Context, name, command string) ([]Result, error) {
	return e.fanOut(ctx, name, func(ctx context.Context, r *Result) error {
		out, err := e.remote.Run(ctx, r.Host, command)
		r.Output = out
		return err
	})
}

// Copy transfers localPath (a file or a directory tree) to remotePath on
// the instance at index.
func (e *Executor) Copy(ctx context.Context, name string, index int, localPath, remotePath string) error {
	host, err := e.host(name, index)
	if err != nil {
		return err
	}
	if remotePath == "" {
		remotePath = DefaultRemotePath
	}

	e.log.V(1).Info("Copying to instance", "cluster", name, "index", index, "local", localPath, "remote", remotePath)
	err = e.remote.Copy(ctx, host, localPath, remotePath)
	e.metrics.RemoteCommand(err)
	return err
}

// CopyAll transfers localPath to remotePath on every instance.
func (e *Executor) CopyAll(ctx context.Context, name, localPath, remotePath string) ([]Result, error) {
	if remotePath == "" {
		remotePath = DefaultRemotePath
	}
	return e.fanOut(ctx, name, func(ctx context.Context, r *Result) error {
		return e.remote.Copy(ctx, r.Host, localPath, remotePath)
	})
}

// Login opens an interactive shell on the instance at index.
func (e *Executor) Login(ctx context.Context, name string, index int) error {
	host, err := e.host(name, index)
	if err != nil {
		return err
	}
	return e.remote.Login(ctx, host)
}

func (e *Executor) host(name string, index int) (string, error) {
	c, err := e.clusters.Cluster(name)
	if err != nil {
		return "", err
	}
	inst, err := c.Instance(index)
	if err != nil {
		return "", fmt.Errorf("cluster %s: %w", name, err)
	}
	return inst.PublicAddress, nil
}

// fanOut runs fn once per instance with bounded parallelism. Every instance
// is attempted; results come back in index order.
func (e *Executor) fanOut(ctx context.Context, name string, fn func(context.Context, *Result) error) ([]Result, error) {
	c, err := e.clusters.Cluster(name)
	if err != nil {
		return nil, err
	}

	results := make([]Result, c.Size())
	tasks := make([]async.Task, c.Size())
	for i, inst := range c.Instances {
		results[i] = Result{Index: i, Host: inst.PublicAddress}
		tasks[i] = async.Task{
			Name: strconv.Itoa(i),
			Func: func(ctx context.Context) error {
				err := fn(ctx, &results[i])
				e.metrics.RemoteCommand(err)
				if err != nil {
					e.log.Error(err, "Remote operation failed", "cluster", name, "index", i, "host", inst.PublicAddress)
				}
				return err
			},
		}
	}

	for i, r := range async.RunBounded(ctx, e.parallelism, tasks) {
		results[i].Err = r.Err
	}
	if err := async.Errors(resultsAsAsync(results)); err != nil {
		return results, fmt.Errorf("cluster %s: %w", name, err)
	}
	return results, nil
}

func resultsAsAsync(results []Result) []async.Result {
	out := make([]async.Result, len(results))
	for i, r := range results {
		out[i] = async.Result{Name: "index " + strconv.Itoa(r.Index), Err: r.Err}
	}
	return out
}

// Background wraps command so it keeps running after the session closes.
func Background(command string) string {
	return fmt.Sprintf("nohup sh -c %s > %s 2> %s < /dev/null &",
		quote(command), backgroundStdout, backgroundStderr)
}

// quote wraps s in single quotes for a POSIX shell.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/fleetctl/internal/registry"
	"github.com/imamik/fleetctl/internal/util/retry"
)

const (
	// DefaultPollInterval is how often instance status is checked.
	DefaultPollInterval = 1 * time.Second
	// DefaultMaxPollAttempts bounds the readiness wait (ten minutes at the default interval).
	DefaultMaxPollAttempts = 600
)

var (
	// ErrShortLaunch means the provider returned fewer instances than requested.
	ErrShortLaunch = errors.New("provider launched fewer instances than requested")
	// ErrNotReady means an instance left pending into a state other than running.
	ErrNotReady = errors.New("instance did not reach running state")
)

// Options tunes Provision.
type Options struct {
	PollInterval    time.Duration
	MaxPollAttempts int

	// Launched, when set, is called with the ids as soon as the provider
	// accepts the launch, before any waiting happens.
	Launched func(ids []string) error

	Log logr.Logger
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxPollAttempts <= 0 {
		o.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if o.Log.GetSink() == nil {
		o.Log = logr.Discard()
	}
	return o
}

// Provision creates req.Count instances and waits until all of them are
// running with a public address. Instances are returned in the order the
// provider reported them.
func Provision(ctx context.Context, p Provider, req LaunchRequest, opts Options) ([]registry.Instance, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("instance count must be at least 1, got %d", req.Count)
	}
	opts = opts.withDefaults()
	log := opts.Log.WithValues("provider", p.Name(), "cluster", req.Cluster)

	log.Info("Launching instances", "count", req.Count, "type", req.InstanceType, "image", req.ImageID)
	ids, err := p.Launch(ctx, req)
	if len(ids) > 0 && opts.Launched != nil {
		// Journal whatever was created, even on a failed or short launch.
		if jerr := opts.Launched(ids); jerr != nil {
			return nil, fmt.Errorf("failed to journal launched instances %v: %w", ids, jerr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to launch instances: %w", err)
	}
	if len(ids) != req.Count {
		return nil, fmt.Errorf("%w: requested %d, got %d", ErrShortLaunch, req.Count, len(ids))
	}

	instances, err := waitRunning(ctx, p, ids, opts)
	if err != nil {
		return nil, err
	}

	log.Info("Instances running", "ids", ids)
	return instances, nil
}

// waitRunning polls Describe until every id is running and addressable.
func waitRunning(ctx context.Context, p Provider, ids []string, opts Options) ([]registry.Instance, error) {
	ready := make(map[string]string, len(ids))

	err := retry.Poll(ctx, opts.PollInterval, opts.MaxPollAttempts, func() (bool, error) {
		statuses, err := p.Describe(ctx, ids)
		if err != nil {
			return false, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, st := range statuses {
			switch st.State {
			case StatePending:
				continue
			case StateRunning:
				if st.PublicAddress != "" {
					ready[st.ID] = st.PublicAddress
				}
			default:
				return false, fmt.Errorf("%w: %s is %s", ErrNotReady, st.ID, st.State)
			}
		}
		opts.Log.V(1).Info("Waiting for instances", "ready", len(ready), "total", len(ids))
		return len(ready) == len(ids), nil
	})
	if err != nil {
		return nil, fmt.Errorf("instances %v did not become ready: %w", ids, err)
	}

	instances := make([]registry.Instance, len(ids))
	for i, id := range ids {
		instances[i] = registry.Instance{ID: id, PublicAddress: ready[id]}
	}
	return instances, nil
}

// Terminate requests termination of ids in one batch. It does not wait for
// the instances to stop.
func Terminate(ctx context.Context, p Provider, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.Terminate(ctx, ids); err != nil {
		return fmt.Errorf("failed to terminate instances %v: %w", ids, err)
	}
	return nil
}

package hcloud

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/util/labels"
	"github.com/imamik/fleetctl/internal/util/naming"
	"github.com/imamik/fleetctl/internal/util/retry"
)

// ProviderName is recorded on clusters created through this package.
const ProviderName = "hcloud"

// Provider talks to the Hetzner Cloud API.
type Provider struct {
	client       *hcloud.Client
	location     string
	maxRetries   int
	initialDelay time.Duration
	nameFunc     func(cluster string) string
}

// ClientOption configures a Provider.
type ClientOption func(*Provider)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(p *Provider) {
		p.client = hc
	}
}

// WithLocation pins new servers to a location such as "nbg1".
func WithLocation(location string) ClientOption {
	return func(p *Provider) {
		p.location = location
	}
}

// WithRetry sets the retry budget for transient API errors.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(p *Provider) {
		p.maxRetries = maxRetries
		p.initialDelay = initialDelay
	}
}

// NewProvider creates a Provider authenticated with token.
func NewProvider(token string, opts ...ClientOption) *Provider {
	p := &Provider{
		client:       hcloud.NewClient(hcloud.WithToken(token)),
		maxRetries:   5,
		initialDelay: time.Second,
		nameFunc:     naming.Instance,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements provisioning.Provider.
func (p *Provider) Name() string {
	return ProviderName
}

// Launch implements provisioning.Provider.
func (p *Provider) Launch(ctx context.Context, req provisioning.LaunchRequest) ([]string, error) {
	opts, err := p.buildCreateOpts(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, req.Count)
	for range req.Count {
		opts.Name = p.nameFunc(req.Cluster)

		var result hcloud.ServerCreateResult
		err := p.withRetry(ctx, func() error {
			var err error
			result, _, err = p.client.Server.Create(ctx, opts)
			return classify(err)
		})
		if err != nil {
			return ids, fmt.Errorf("failed to create server %s: %w", opts.Name, err)
		}
		ids = append(ids, strconv.FormatInt(result.Server.ID, 10))
	}

	return ids, nil
}

// buildCreateOpts resolves the server type, image and SSH key once for the
// whole batch.
func (p *Provider) buildCreateOpts(ctx context.Context, req provisioning.LaunchRequest) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := p.client.ServerType.Get(ctx, req.InstanceType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", req.InstanceType)
	}

	image, _, err := p.client.Image.GetForArchitecture(ctx, req.ImageID, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("image not found for %s: %s", serverType.Architecture, req.ImageID)
	}

	opts := hcloud.ServerCreateOpts{
		ServerType: serverType,
		Image:      image,
		Labels:     labels.ForCluster(req.Cluster),
	}

	if req.KeyName != "" {
		key, _, err := p.client.SSHKey.Get(ctx, req.KeyName)
		if err != nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get ssh key %s: %w", req.KeyName, err)
		}
		if key == nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("ssh key not found: %s", req.KeyName)
		}
		opts.SSHKeys = []*hcloud.SSHKey{key}
	}

	if p.location != "" {
		opts.Location = &hcloud.Location{Name: p.location}
	}

	return opts, nil
}

// Describe implements provisioning.Provider.
func (p *Provider) Describe(ctx context.Context, ids []string) ([]provisioning.InstanceStatus, error) {
	statuses := make([]provisioning.InstanceStatus, 0, len(ids))
	for _, id := range ids {
		serverID, err := parseID(id)
		if err != nil {
			return nil, err
		}

		var server *hcloud.Server
		err = p.withRetry(ctx, func() error {
			var err error
			server, _, err = p.client.Server.GetByID(ctx, serverID)
			return classify(err)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get server %s: %w", id, err)
		}

		st := provisioning.InstanceStatus{ID: id, State: provisioning.StateStopped}
		if server != nil {
			st.State = stateOf(server.Status)
			st.PublicAddress = ServerIPv4(server)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Terminate implements provisioning.Provider. Servers that no longer exist
// are skipped.
func (p *Provider) Terminate(ctx context.Context, ids []string) error {
	for _, id := range ids {
		serverID, err := parseID(id)
		if err != nil {
			return err
		}
		err = p.withRetry(ctx, func() error {
			_, _, err := p.client.Server.DeleteWithResult(ctx, &hcloud.Server{ID: serverID})
			if IsNotFound(err) {
				return nil
			}
			return classify(err)
		})
		if err != nil {
			return fmt.Errorf("failed to delete server %s: %w", id, err)
		}
	}
	return nil
}

func (p *Provider) withRetry(ctx context.Context, op func() error) error {
	return retry.WithExponentialBackoff(ctx, op,
		retry.WithMaxRetries(p.maxRetries),
		retry.WithInitialDelay(p.initialDelay),
	)
}

func stateOf(s hcloud.ServerStatus) provisioning.State {
	switch s {
	case hcloud.ServerStatusInitializing, hcloud.ServerStatusStarting, hcloud.ServerStatusOff,
		hcloud.ServerStatusRebuilding, hcloud.ServerStatusMigrating:
		return provisioning.StatePending
	case hcloud.ServerStatusRunning:
		return provisioning.StateRunning
	case hcloud.ServerStatusStopping, hcloud.ServerStatusDeleting:
		return provisioning.StateStopped
	default:
		return provisioning.StateUnknown
	}
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid server id: %s", id)
	}
	return n, nil
}

// ServerIPv4 extracts the public IPv4 address from a server, or empty string if not set.
func ServerIPv4(s *hcloud.Server) string {
	if s != nil && s.PublicNet.IPv4.IP != nil && !s.PublicNet.IPv4.IP.IsUnspecified() {
		return s.PublicNet.IPv4.IP.String()
	}
	return ""
}

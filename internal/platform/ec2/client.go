package ec2

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/google/uuid"

	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/util/retry"
)

// ProviderName is recorded on clusters created through this package.
const ProviderName = "ec2"

// ClusterTagKey tags every instance with the cluster that owns it.
const ClusterTagKey = "fleetctl:cluster"

// API is the subset of the EC2 client used here.
type API interface {
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
}

// Credentials holds the static AWS credentials and region.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Provider talks to EC2.
type Provider struct {
	api          API
	maxRetries   int
	initialDelay time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithAPI replaces the EC2 client (useful for testing).
func WithAPI(api API) Option {
	return func(p *Provider) {
		p.api = api
	}
}

// WithRetry sets the retry budget for transient API errors.
func WithRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(p *Provider) {
		p.maxRetries = maxRetries
		p.initialDelay = initialDelay
	}
}

// NewProvider builds a Provider from static credentials.
func NewProvider(ctx context.Context, creds Credentials, opts ...Option) (*Provider, error) {
	p := &Provider{maxRetries: 5, initialDelay: time.Second}
	for _, opt := range opts {
		opt(p)
	}
	if p.api != nil {
		return p, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(creds.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	p.api = ec2.NewFromConfig(cfg)
	return p, nil
}

// Name implements provisioning.Provider.
func (p *Provider) Name() string {
	return ProviderName
}

// Launch implements provisioning.Provider.
func (p *Provider) Launch(ctx context.Context, req provisioning.LaunchRequest) ([]string, error) {
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(req.ImageID),
		InstanceType: types.InstanceType(req.InstanceType),
		MinCount:     aws.Int32(int32(req.Count)),
		MaxCount:     aws.Int32(int32(req.Count)),
		ClientToken:  aws.String(uuid.NewString()),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags: []types.Tag{
				{Key: aws.String("Name"), Value: aws.String(req.Cluster)},
				{Key: aws.String(ClusterTagKey), Value: aws.String(req.Cluster)},
			},
		}},
	}
	if req.KeyName != "" {
		input.KeyName = aws.String(req.KeyName)
	}

	var out *ec2.RunInstancesOutput
	err := p.withRetry(ctx, func() error {
		var err error
		out, err = p.api.RunInstances(ctx, input)
		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("RunInstances failed: %w", err)
	}

	ids := make([]string, 0, len(out.Instances))
	for _, inst := range out.Instances {
		ids = append(ids, aws.ToString(inst.InstanceId))
	}
	return ids, nil
}

// Describe implements provisioning.Provider.
func (p *Provider) Describe(ctx context.Context, ids []string) ([]provisioning.InstanceStatus, error) {
	var out *ec2.DescribeInstancesOutput
	err := p.withRetry(ctx, func() error {
		var err error
		out, err = p.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: ids})
		return classify(err)
	})
	if err != nil {
		// Freshly launched ids can be invisible to DescribeInstances for a
		// few seconds.
		if isInstanceNotFound(err) {
			return allPending(ids), nil
		}
		return nil, fmt.Errorf("DescribeInstances failed: %w", err)
	}

	byID := make(map[string]provisioning.InstanceStatus, len(ids))
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			id := aws.ToString(inst.InstanceId)
			byID[id] = provisioning.InstanceStatus{
				ID:            id,
				State:         stateOf(inst.State),
				PublicAddress: publicAddress(inst),
			}
		}
	}

	statuses := make([]provisioning.InstanceStatus, len(ids))
	for i, id := range ids {
		st, ok := byID[id]
		if !ok {
			st = provisioning.InstanceStatus{ID: id, State: provisioning.StatePending}
		}
		statuses[i] = st
	}
	return statuses, nil
}

// Terminate implements provisioning.Provider. Instances EC2 no longer knows
// about count as terminated.
func (p *Provider) Terminate(ctx context.Context, ids []string) error {
	err := p.terminate(ctx, ids)
	if err == nil || !isInstanceNotFound(err) {
		return err
	}

	remaining, err := p.existing(ctx, ids)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	return p.terminate(ctx, remaining)
}

func (p *Provider) terminate(ctx context.Context, ids []string) error {
	err := p.withRetry(ctx, func() error {
		_, err := p.api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: ids})
		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("TerminateInstances failed: %w", err)
	}
	return nil
}

// existing returns the ids from ids that EC2 still lists and that are not
// already terminated. A filter is used because listing unknown ids by
// InstanceIds fails the whole call.
func (p *Provider) existing(ctx context.Context, ids []string) ([]string, error) {
	var out *ec2.DescribeInstancesOutput
	err := p.withRetry(ctx, func() error {
		var err error
		out, err = p.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			Filters: []types.Filter{{Name: aws.String("instance-id"), Values: ids}},
		})
		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeInstances failed: %w", err)
	}

	found := make(map[string]bool, len(ids))
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			if inst.State != nil && inst.State.Name == types.InstanceStateNameTerminated {
				continue
			}
			found[aws.ToString(inst.InstanceId)] = true
		}
	}

	var remaining []string
	for _, id := range ids {
		if found[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining, nil
}

func (p *Provider) withRetry(ctx context.Context, op func() error) error {
	return retry.WithExponentialBackoff(ctx, op,
		retry.WithMaxRetries(p.maxRetries),
		retry.WithInitialDelay(p.initialDelay),
	)
}

func stateOf(s *types.InstanceState) provisioning.State {
	if s == nil {
		return provisioning.StatePending
	}
	switch s.Name {
	case types.InstanceStateNamePending:
		return provisioning.StatePending
	case types.InstanceStateNameRunning:
		return provisioning.StateRunning
	case types.InstanceStateNameStopping, types.InstanceStateNameStopped,
		types.InstanceStateNameShuttingDown, types.InstanceStateNameTerminated:
		return provisioning.StateStopped
	default:
		return provisioning.StateUnknown
	}
}

// publicAddress prefers the public DNS name and falls back to the public IP
// for VPCs without DNS hostnames.
func publicAddress(inst types.Instance) string {
	if name := aws.ToString(inst.PublicDnsName); name != "" {
		return name
	}
	return aws.ToString(inst.PublicIpAddress)
}

func allPending(ids []string) []provisioning.InstanceStatus {
	out := make([]provisioning.InstanceStatus, len(ids))
	for i, id := range ids {
		out[i] = provisioning.InstanceStatus{ID: id, State: provisioning.StatePending}
	}
	return out
}

package provisioning

import (
	"context"
)

// State is a provider-neutral instance status.
type State string

const (
	// StatePending covers every status before the instance is usable.
	StatePending State = "pending"
	// StateRunning means the instance is up.
	StateRunning State = "running"
	// StateStopped covers stopping, stopped, shutting-down and terminated.
	StateStopped State = "stopped"
	// StateUnknown is any status the provider adapter does not recognise.
	StateUnknown State = "unknown"
)

// LaunchRequest describes one batch of identical instances.
type LaunchRequest struct {
	Cluster      string
	Count        int
	InstanceType string
	ImageID      string
	KeyName      string
}

// InstanceStatus is what Describe reports for one instance.
type InstanceStatus struct {
	ID            string
	State         State
	PublicAddress string
}

// Provider is a cloud compute API.
type Provider interface {
	// Name identifies the provider in cluster records ("ec2", "hcloud").
	Name() string

	// Launch requests Count instances and returns their ids in provider
	// order. It does not wait for them to boot.
	Launch(ctx context.Context, req LaunchRequest) ([]string, error)

	// Describe reports the status of each id. Ids the provider does not
	// know about yet are reported as StatePending.
	Describe(ctx context.Context, ids []string) ([]InstanceStatus, error)

	// Terminate requests termination of all ids in one call.
	Terminate(ctx context.Context, ids []string) error
}

package registry

import (
	"errors"
	"fmt"
	"time"
)

// ErrIndexOutOfRange is returned when an instance index does not address a
// member of the cluster.
var ErrIndexOutOfRange = errors.New("instance index out of range")

// Instance is one provisioned machine.
type Instance struct {
	ID            string `json:"id"`
	PublicAddress string `json:"public_address"`
}

// Cluster is a named, ordered group of instances sharing one instance type
// and image. The position of an instance in Instances is its index.
type Cluster struct {
	Name         string     `json:"name"`
	Provider     string     `json:"provider"`
	InstanceType string     `json:"instance_type"`
	ImageID      string     `json:"image_id"`
	Instances    []Instance `json:"instances"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Size returns the number of instances in the cluster.
func (c *Cluster) Size() int {
	return len(c.Instances)
}

// Instance returns the member at index.
func (c *Cluster) Instance(index int) (Instance, error) {
	if index < 0 || index >= len(c.Instances) {
		return Instance{}, fmt.Errorf("%w: the instance index must be in the range 0 to %d",
			ErrIndexOutOfRange, len(c.Instances)-1)
	}
	return c.Instances[index], nil
}

// InstanceIDs returns the provider ids in index order.
func (c *Cluster) InstanceIDs() []string {
	ids := make([]string, len(c.Instances))
	for i, inst := range c.Instances {
		ids[i] = inst.ID
	}
	return ids
}

// Validate checks the invariants a stored record must satisfy.
func (c *Cluster) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cluster name cannot be empty")
	}
	if len(c.Instances) == 0 {
		return fmt.Errorf("cluster %s has no instances", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Instances))
	for i, inst := range c.Instances {
		if inst.ID == "" {
			return fmt.Errorf("cluster %s: instance %d has no id", c.Name, i)
		}
		if _, dup := seen[inst.ID]; dup {
			return fmt.Errorf("cluster %s: instance %s listed twice", c.Name, inst.ID)
		}
		seen[inst.ID] = struct{}{}
	}
	return nil
}

// Pending is a journal entry for instances the provider has launched that
// are not yet part of a stored cluster.
type Pending struct {
	ID           string    `json:"id"`
	Cluster      string    `json:"cluster"`
	Provider     string    `json:"provider"`
	InstanceType string    `json:"instance_type"`
	ImageID      string    `json:"image_id"`
	InstanceIDs  []string  `json:"instance_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

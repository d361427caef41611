package lifecycle

import (
	"fmt"

	"github.com/imamik/fleetctl/internal/registry"
)

// Cluster returns a snapshot of the named cluster.
func (m *Manager) Cluster(name string) (*registry.Cluster, error) {
	var c *registry.Cluster
	err := m.withStore(true, func(s *registry.Store) error {
		var err error
		c, err = lookup(s, name)
		return err
	})
	return c, err
}

// Show is Cluster under the name the CLI uses.
func (m *Manager) Show(name string) (*registry.Cluster, error) {
	return m.Cluster(name)
}

// ShowAll returns every cluster in name order. An empty registry yields an
// empty slice.
func (m *Manager) ShowAll() ([]*registry.Cluster, error) {
	var clusters []*registry.Cluster
	err := m.withStore(true, func(s *registry.Store) error {
		var err error
		clusters, err = s.Clusters()
		return err
	})
	return clusters, err
}

// Exists reports whether name is in the registry.
func (m *Manager) Exists(name string) (bool, error) {
	var ok bool
	err := m.withStore(true, func(s *registry.Store) error {
		var err error
		ok, err = s.Contains(name)
		return err
	})
	return ok, err
}

// Size returns the number of instances in the named cluster.
func (m *Manager) Size(name string) (int, error) {
	c, err := m.Cluster(name)
	if err != nil {
		return 0, err
	}
	return c.Size(), nil
}

// Instance returns the member at index of the named cluster.
func (m *Manager) Instance(name string, index int) (registry.Instance, error) {
	c, err := m.Cluster(name)
	if err != nil {
		return registry.Instance{}, err
	}
	inst, err := c.Instance(index)
	if err != nil {
		return registry.Instance{}, fmt.Errorf("cluster %s: %w", name, err)
	}
	return inst, nil
}

// PublicDNSNames returns user@address for every instance in index order.
func (m *Manager) PublicDNSNames(name string) ([]string, error) {
	c, err := m.Cluster(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(c.Instances))
	for i, inst := range c.Instances {
		names[i] = m.cfg.RemoteUser + "@" + inst.PublicAddress
	}
	return names, nil
}

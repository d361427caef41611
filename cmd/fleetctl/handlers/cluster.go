package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/fleetctl/internal/lifecycle"
	"github.com/imamik/fleetctl/internal/ui/render"
)

// CreateOptions holds the create command's flags.
type CreateOptions struct {
	Count        int
	InstanceType string
	Image        string
	Provider     string
}

// Create provisions a new cluster and prints it.
func Create(ctx context.Context, name string, opts CreateOptions) error {
	s, err := newSession(opts.Provider)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	provider := opts.Provider
	if provider == "" {
		provider = s.cfg.Provider
	}
	if opts.InstanceType == "" {
		opts.InstanceType = s.cfg.InstanceType(provider)
	}
	if opts.Image == "" {
		opts.Image = s.cfg.Image(provider)
	}

	c, err := s.manager.Create(ctx, lifecycle.CreateRequest{
		Name:         name,
		Count:        opts.Count,
		InstanceType: opts.InstanceType,
		ImageID:      opts.Image,
		Provider:     provider,
	})
	if err != nil {
		return err
	}
	render.New(stdout).Cluster(c)
	return nil
}

// Add grows a cluster by n instances and prints it.
func Add(ctx context.Context, name string, n int) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	c, err := s.manager.Add(ctx, name, n)
	if err != nil {
		return err
	}
	render.New(stdout).Cluster(c)
	return nil
}

// Show prints one cluster.
func Show(ctx context.Context, name string) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	c, err := s.manager.Show(name)
	if err != nil {
		return err
	}
	render.New(stdout).Cluster(c)
	return nil
}

// ShowAll prints every cluster.
func ShowAll(ctx context.Context) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	clusters, err := s.manager.ShowAll()
	if err != nil {
		return err
	}
	render.New(stdout).Clusters(clusters)
	return nil
}

// DNS prints user@address for every instance of a cluster.
func DNS(ctx context.Context, name string) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	names, err := s.manager.PublicDNSNames(name)
	if err != nil {
		return err
	}
	render.New(stdout).Lines(names)
	return nil
}

// Kill terminates one instance.
func Kill(ctx context.Context, name string, index int, yes bool) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	ok, err := confirm(fmt.Sprintf("Terminate instance %d of cluster %s?", index, name), yes)
	if err != nil || !ok {
		return err
	}

	removed, err := s.manager.Kill(ctx, name, index)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(stdout, "Last machine in cluster, shut down cluster %s\n", name)
		return nil
	}
	fmt.Fprintf(stdout, "Killed instance %d of cluster %s\n", index, name)
	return nil
}

// Shutdown terminates a whole cluster.
func Shutdown(ctx context.Context, name string, yes bool) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	ok, err := confirm(fmt.Sprintf("Shut down cluster %s and terminate all of its instances?", name), yes)
	if err != nil || !ok {
		return err
	}

	if err := s.manager.Shutdown(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Shut down cluster %s\n", name)
	return nil
}

// ShutdownAll terminates every cluster.
func ShutdownAll(ctx context.Context, yes bool) error {
	s, err := newSession("")
	if err != nil {
		return err
	}
	defer s.close(ctx)

	ok, err := confirm("Shut down ALL clusters and terminate every instance?", yes)
	if err != nil || !ok {
		return err
	}

	removed, err := s.manager.ShutdownAll(ctx)
	for _, name := range removed {
		fmt.Fprintf(stdout, "Shut down cluster %s\n", name)
	}
	return err
}

package lifecycle_test

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/fleetctl/internal/lifecycle"
	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
	fltesting "github.com/imamik/fleetctl/internal/testing"
)

var _ = Describe("Cluster lifecycle", func() {
	var (
		ctx      context.Context
		provider *fltesting.FakeProvider
		manager  *lifecycle.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = fltesting.NewFakeProvider("ec2")
		provider.PendingPolls = 2

		path := filepath.Join(GinkgoT().TempDir(), registry.DefaultFileName)
		manager = lifecycle.New(lifecycle.Config{
			RegistryPath:    path,
			LockTimeout:     time.Second,
			DefaultProvider: "ec2",
			KeyName:         "fleet",
			PollInterval:    time.Millisecond,
			MaxPollAttempts: 20,
		}, func(_ context.Context, name string) (provisioning.Provider, error) {
			if name != "ec2" {
				return nil, fmt.Errorf("unknown provider %q", name)
			}
			return provider, nil
		})
	})

	create := func(name string, n int) *registry.Cluster {
		c, err := manager.Create(ctx, lifecycle.CreateRequest{
			Name: name, Count: n, InstanceType: "m1.small", ImageID: "ami-x",
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Context("when an instance in the middle is killed", func() {
		It("renumbers the survivors and keeps their ids in order", func() {
			created := create("web", 3)
			ids := created.InstanceIDs()

			shown, err := manager.Show("web")
			Expect(err).NotTo(HaveOccurred())
			Expect(shown.Instances).To(HaveLen(3))
			Expect(shown.InstanceType).To(Equal("m1.small"))
			Expect(shown.InstanceIDs()).To(Equal(ids))

			removed, err := manager.Kill(ctx, "web", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeFalse())

			shown, err = manager.Show("web")
			Expect(err).NotTo(HaveOccurred())
			Expect(shown.Instances).To(HaveLen(2))
			Expect(shown.Instances[0].ID).To(Equal(ids[0]))
			Expect(shown.Instances[1].ID).To(Equal(ids[2]))
			Expect(provider.IsLive(ids[1])).To(BeFalse())
		})
	})

	Context("when instances are added and then the cluster is killed down to nothing", func() {
		It("removes the cluster with its last instance", func() {
			create("batch", 1)
			_, err := manager.Add(ctx, "batch", 2)
			Expect(err).NotTo(HaveOccurred())

			for range 2 {
				removed, err := manager.Kill(ctx, "batch", 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(removed).To(BeFalse())
			}

			removed, err := manager.Kill(ctx, "batch", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())

			exists, err := manager.Exists("batch")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
			Expect(provider.Live()).To(BeZero())
		})
	})

	Context("when the registry holds several clusters", func() {
		It("lists them by name and shuts all of them down", func() {
			create("zeta", 1)
			create("alpha", 2)

			all, err := manager.ShowAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Name).To(Equal("alpha"))
			Expect(all[1].Name).To(Equal("zeta"))

			names, err := manager.ShutdownAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"alpha", "zeta"}))

			all, err = manager.ShowAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})
	})

	Context("when a create collides with an existing name", func() {
		It("is rejected without launching anything", func() {
			create("web", 2)
			launches := len(provider.Launches)

			_, err := manager.Create(ctx, lifecycle.CreateRequest{Name: "web", Count: 1})
			Expect(err).To(MatchError(lifecycle.ErrClusterExists))
			Expect(provider.Launches).To(HaveLen(launches))
		})
	})
})

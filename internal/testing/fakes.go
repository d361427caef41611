package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/imamik/fleetctl/internal/provisioning"
)

// FakeProvider is an in-memory provisioning.Provider. Launched instances
// become running with an address on the first Describe unless PendingPolls
// says otherwise.
type FakeProvider struct {
	mu sync.Mutex

	ProviderName string

	// PendingPolls is how many Describe calls report a new instance as pending.
	PendingPolls int
	// ShortBy makes Launch return this many fewer ids than requested.
	ShortBy int
	// StopOnBoot makes launched instances end up stopped instead of running.
	StopOnBoot bool

	FailLaunch    error
	FailDescribe  error
	FailTerminate error

	next       int
	polls      map[string]int
	live       map[string]bool
	Launches   []provisioning.LaunchRequest
	Terminated [][]string
}

// NewFakeProvider returns a FakeProvider reporting the given name.
func NewFakeProvider(name string) *FakeProvider {
	return &FakeProvider{
		ProviderName: name,
		polls:        map[string]int{},
		live:         map[string]bool{},
	}
}

// Name implements provisioning.Provider.
func (f *FakeProvider) Name() string {
	return f.ProviderName
}

// Launch implements provisioning.Provider.
func (f *FakeProvider) Launch(_ context.Context, req provisioning.LaunchRequest) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Launches = append(f.Launches, req)
	if f.FailLaunch != nil {
		return nil, f.FailLaunch
	}

	n := req.Count - f.ShortBy
	ids := make([]string, 0, n)
	for range n {
		f.next++
		id := fmt.Sprintf("i-%04d", f.next)
		f.live[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// Describe implements provisioning.Provider.
func (f *FakeProvider) Describe(_ context.Context, ids []string) ([]provisioning.InstanceStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailDescribe != nil {
		return nil, f.FailDescribe
	}

	out := make([]provisioning.InstanceStatus, 0, len(ids))
	for _, id := range ids {
		f.polls[id]++
		st := provisioning.InstanceStatus{ID: id, State: provisioning.StatePending}
		if f.polls[id] > f.PendingPolls {
			if f.StopOnBoot {
				st.State = provisioning.StateStopped
			} else {
				st.State = provisioning.StateRunning
				st.PublicAddress = "ec2-" + id + ".compute.example.com"
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Terminate implements provisioning.Provider.
func (f *FakeProvider) Terminate(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailTerminate != nil {
		return f.FailTerminate
	}
	f.Terminated = append(f.Terminated, append([]string(nil), ids...))
	for _, id := range ids {
		delete(f.live, id)
	}
	return nil
}

// Live returns how many launched instances have not been terminated.
func (f *FakeProvider) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

// IsLive reports whether id was launched and not terminated.
func (f *FakeProvider) IsLive(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[id]
}

package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imamik/fleetctl/internal/metrics"
	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
	fltesting "github.com/imamik/fleetctl/internal/testing"
)

// testManager wires a Manager to a temp registry and fake providers.
type testManager struct {
	*Manager
	ec2     *fltesting.FakeProvider
	hcloud  *fltesting.FakeProvider
	metrics *metrics.Recorder
	path    string
}

func testConfig(path string) Config {
	return Config{
		RegistryPath:    path,
		LockTimeout:     time.Second,
		DefaultProvider: "ec2",
		KeyName:         "fleet",
		RemoteUser:      "ubuntu",
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 50,
	}
}

func newTestManager(tb testing.TB) *testManager {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), registry.DefaultFileName)
	tm := &testManager{
		ec2:     fltesting.NewFakeProvider("ec2"),
		hcloud:  fltesting.NewFakeProvider("hcloud"),
		metrics: metrics.New(),
		path:    path,
	}

	var ids int
	tm.Manager = New(testConfig(path), tm.provider, WithMetrics(tm.metrics))
	tm.newID = func() string {
		ids++
		return fmt.Sprintf("pending-%d", ids)
	}
	return tm
}

func (tm *testManager) provider(_ context.Context, name string) (provisioning.Provider, error) {
	switch name {
	case "ec2":
		return tm.ec2, nil
	case "hcloud":
		return tm.hcloud, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func (tm *testManager) mustCreate(t *testing.T, name string, n int) *registry.Cluster {
	t.Helper()
	c, err := tm.Create(fltesting.TestContext(t), CreateRequest{
		Name: name, Count: n, InstanceType: "m1.small", ImageID: "ami-x",
	})
	require.NoError(t, err)
	return c
}

func (tm *testManager) pending(t *testing.T) []registry.Pending {
	t.Helper()
	var entries []registry.Pending
	err := tm.withStore(true, func(s *registry.Store) error {
		var err error
		entries, err = s.Pending()
		return err
	})
	require.NoError(t, err)
	return entries
}

// memoryObjectStore is an in-memory ObjectStore.
type memoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}}
}

func (s *memoryObjectStore) PutObject(_ context.Context, bucket, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}

func (s *memoryObjectStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no object %s/%s", bucket, key)
	}
	return data, nil
}

package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	s, err := Open(path, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func testCluster(name string, ids ...string) *Cluster {
	c := &Cluster{Name: name, Provider: "ec2", InstanceType: "m1.small", ImageID: "ami-x"}
	for _, id := range ids {
		c.Instances = append(c.Instances, Instance{ID: id, PublicAddress: id + ".example.com"})
	}
	return c
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()
	s, _ := openTestStore(t)

	require.NoError(t, s.Put(testCluster("web", "i-1", "i-2")))

	got, ok, err := s.Get("web")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "m1.small", got.InstanceType)
	assert.Equal(t, []string{"i-1", "i-2"}, got.InstanceIDs())
	assert.Equal(t, 2, got.Size())
}

func TestStore_GetAbsent(t *testing.T) {
	t.Parallel()
	s, _ := openTestStore(t)

	got, ok, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	exists, err := s.Contains("nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_PutRejectsEmptyCluster(t *testing.T) {
	t.Parallel()
	s, _ := openTestStore(t)

	err := s.Put(testCluster("empty"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no instances")

	exists, err := s.Contains("empty")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_PutRejectsDuplicateInstance(t *testing.T) {
	t.Parallel()
	s, _ := openTestStore(t)

	err := s.Put(testCluster("dup", "i-1", "i-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listed twice")
}

func TestStore_DeleteAndKeys(t *testing.T) {
	t.Parallel()
	s, _ := openTestStore(t)

	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(testCluster(name, "i-"+name)))
	}

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	require.NoError(t, s.Delete("b"))
	require.NoError(t, s.Delete("missing"))

	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)
}

func TestStore_KeysEmpty(t *testing.T) {
	t.Parallel()
	s, _ := openTestStore(t)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	s, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, s.Put(testCluster("web", "i-1")))
	require.NoError(t, s.Close())

	s, err = Open(path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, ok, err := s.Get("web")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "i-1", got.Instances[0].ID)
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	s, err := Open(path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	err = s.Put(testCluster("web", "i-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestStore_SecondWriterTimesOut(t *testing.T) {
	t.Parallel()
	s, path := openTestStore(t)
	_ = s

	_, err := Open(path, Options{LockTimeout: 50 * time.Millisecond})
	require.ErrorIs(t, err, ErrLocked)
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := Open("", Options{})
	require.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("/home/op", ".fleetctl.db"), DefaultPath("/home/op"))
}

package labels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCluster(t *testing.T) {
	t.Parallel()
	got := ForCluster("web")
	assert.Equal(t, map[string]string{
		KeyCluster:   "web",
		KeyManagedBy: ManagedByFleetctl,
	}, got)
}

func TestForCluster_SanitizesValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "my_cluster_1", ForCluster("my cluster/1")[KeyCluster])
	assert.Len(t, ForCluster(strings.Repeat("a", 80))[KeyCluster], 63)
}

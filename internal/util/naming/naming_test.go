package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostname(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"web", "web"},
		{"Web_Tier", "web-tier"},
		{"data.lake 01", "data-lake-01"},
		{"--edge--", "edge"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Hostname(tt.in), tt.in)
	}
}

func TestInstanceWithSuffix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "web-ab12c", InstanceWithSuffix("web", "ab12c"))
	assert.Equal(t, "fleet-ab12c", InstanceWithSuffix("___", "ab12c"))

	long := InstanceWithSuffix(strings.Repeat("x", 100), "ab12c")
	assert.LessOrEqual(t, len(long), maxHostname)
	assert.True(t, strings.HasSuffix(long, "-ab12c"))
}

func TestInstance_Unique(t *testing.T) {
	t.Parallel()
	a, b := Instance("web"), Instance("web")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "web-"))
	assert.Len(t, a, len("web-")+suffixLength)
}

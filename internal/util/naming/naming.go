package naming

import (
	"strings"

	"github.com/google/uuid"
)

const (
	suffixLength = 5
	// maxHostname is the longest hostname label providers accept.
	maxHostname = 63
)

// Instance returns a fresh instance name for cluster.
func Instance(cluster string) string {
	return InstanceWithSuffix(cluster, randomSuffix())
}

// InstanceWithSuffix returns {cluster}-{suffix}, trimmed to a valid hostname.
func InstanceWithSuffix(cluster, suffix string) string {
	base := Hostname(cluster)
	limit := maxHostname - len(suffix) - 1
	if len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	if base == "" {
		base = "fleet"
	}
	return base + "-" + suffix
}

// Hostname lowercases s and replaces every character outside [a-z0-9-]
// with a dash.
func Hostname(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
}

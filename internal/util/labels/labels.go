package labels

const (
	// KeyCluster identifies which cluster an instance belongs to.
	KeyCluster = "fleetctl.io/cluster"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "fleetctl.io/managed-by"

	// ManagedByFleetctl is the KeyManagedBy value.
	ManagedByFleetctl = "fleetctl"
)

// ForCluster returns the label set for an instance of cluster. Label values
// are restricted to hostname characters.
func ForCluster(cluster string) map[string]string {
	return map[string]string{
		KeyCluster:   sanitize(cluster),
		KeyManagedBy: ManagedByFleetctl,
	}
}

func sanitize(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v) && len(out) < 63; i++ {
		c := v[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

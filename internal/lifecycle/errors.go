package lifecycle

import (
	"errors"

	"github.com/imamik/fleetctl/internal/registry"
)

var (
	// ErrClusterExists is returned by Create for a name already in the registry.
	ErrClusterExists = errors.New("cluster already exists")
	// ErrClusterNotFound is returned for names absent from the registry.
	ErrClusterNotFound = errors.New("cluster not found")
	// ErrInvalidName is returned by Create for an empty cluster name.
	ErrInvalidName = errors.New("invalid cluster name")
	// ErrInvalidSize is returned for instance counts outside the allowed range.
	ErrInvalidSize = errors.New("invalid number of instances")
	// ErrIndexOutOfRange is returned for indices that do not address an instance.
	ErrIndexOutOfRange = registry.ErrIndexOutOfRange
	// ErrNoClusters is returned by ShutdownAll on an empty registry.
	ErrNoClusters = errors.New("no clusters to shut down")
	// ErrRegistryNotEmpty is returned by Restore when it would overwrite clusters.
	ErrRegistryNotEmpty = errors.New("registry is not empty")
)

// IsUserError reports whether err was caused by invalid input rather than a
// provider or storage failure.
func IsUserError(err error) bool {
	for _, target := range []error{ErrClusterExists, ErrClusterNotFound, ErrInvalidName, ErrInvalidSize, ErrIndexOutOfRange, ErrNoClusters, ErrRegistryNotEmpty} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

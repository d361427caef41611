// Package labels provides the labels fleetctl puts on provider resources.
//
// Labels use the fleetctl.io prefix and make it possible to find every
// instance belonging to a cluster from the provider side, for example when
// reconciling orphans by hand.
package labels

// Package fleet runs remote commands and file copies against the members of
// a registered cluster.
//
// Fleet operations only read the registry. The cluster is snapshotted before
// any remote work starts, so a long-running command never holds the
// registry lock.
package fleet

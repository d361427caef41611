// Package registry is the durable record of which instances belong to which
// cluster.
//
// Cluster records live in a single bbolt file keyed by cluster name. The
// file is opened for one logical operation and closed again; while it is
// open for writing, bbolt's advisory file lock keeps other invocations out.
// A second bucket journals launches the provider has accepted but that are
// not yet recorded on a cluster, so that orphans can be found after a crash.
package registry

// Package lifecycle implements the cluster state machine: create, add,
// kill, shutdown and the read-only queries, plus recovery of orphaned
// launches and registry backups.
//
// Every mutating operation keeps the registry open (and therefore locked)
// from the initial existence check until the final write, so provisioning
// happens while the lock is held. User errors are detected before any
// provider call or registry write and wrap one of the exported sentinels.
package lifecycle

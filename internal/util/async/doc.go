// Package async runs independent tasks on a bounded worker pool and
// collects one result per task.
//
// [RunBounded] never stops early: a failing task does not cancel its
// siblings. It is used by the fleet executor to fan remote commands out
// across the instances of a cluster.
package async

// Package provisioning turns a provider's asynchronous create/terminate API
// into the synchronous contract the lifecycle manager relies on.
//
// [Provision] launches n instances in one batch, journals their ids, and
// blocks until every one has left the pending state and has a public
// address. [Terminate] requests termination of a batch and returns without
// waiting. Neither cleans up after a failure: orphaned ids stay in the
// caller's journal for a later recovery pass.
package provisioning

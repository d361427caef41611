// Package retry provides bounded retry and polling helpers for provider API
// calls and remote connections.
//
// [WithExponentialBackoff] retries an operation that may fail transiently.
// [Poll] checks a condition at a fixed interval until it holds, the attempt
// budget is spent, or the context is cancelled. Errors wrapped with [Fatal]
// stop both immediately.
package retry

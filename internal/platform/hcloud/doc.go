// Package hcloud implements provisioning.Provider on Hetzner Cloud.
//
// Hetzner has no batch create, so Launch creates one server per requested
// instance, named {cluster}-{5char} and labelled with the owning cluster. If
// a create fails part way through, the servers created so far are still
// returned alongside the error so the caller can journal them.
//
// Error classification follows the API error codes: locked and rate
// limited resources are retried with exponential backoff, invalid input and
// unknown server types are fatal.
package hcloud

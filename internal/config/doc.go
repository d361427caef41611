// Package config loads fleetctl settings.
//
// Settings come from three places, later ones winning: built-in defaults,
// the optional YAML file at $HOME/.fleetctl.yaml (or $FLEETCTL_CONFIG), and
// a handful of environment overrides. Credentials and the SSH key location
// are only ever read from the environment; [Env.Validate] reports every
// missing variable at once before any cluster operation runs.
//
// Timeouts and retry budgets are tuned separately through FLEETCTL_*
// variables, see [LoadTimeouts].
package config

// Package metrics records fleetctl operation counters in a private
// prometheus registry and optionally pushes them to a Pushgateway when the
// command exits. A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "fleetctl"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder holds the fleetctl collectors.
type Recorder struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	provisioned       prometheus.Counter
	terminated        prometheus.Counter
	provisionDuration prometheus.Histogram
	remoteCommands    *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Lifecycle operations by name and result",
		}, []string{"operation", "result"}),
		provisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_provisioned_total",
			Help:      "Instances launched and recorded in the registry",
		}),
		terminated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_terminated_total",
			Help:      "Instances terminated and removed from the registry",
		}),
		provisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provision_duration_seconds",
			Help:      "Time from launch until every instance was running with an address",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8), // 5s to ~10min
		}),
		remoteCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_commands_total",
			Help:      "Remote commands and copies by result",
		}, []string{"result"}),
	}

	r.registry.MustRegister(r.operations, r.provisioned, r.terminated, r.provisionDuration, r.remoteCommands)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Operation counts one lifecycle operation.
func (r *Recorder) Operation(name string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(name, result(err)).Inc()
}

// Provisioned records n instances that became ready after d.
func (r *Recorder) Provisioned(n int, d time.Duration) {
	if r == nil || n <= 0 {
		return
	}
	r.provisioned.Add(float64(n))
	r.provisionDuration.Observe(d.Seconds())
}

// Terminated records n terminated instances.
func (r *Recorder) Terminated(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.terminated.Add(float64(n))
}

// RemoteCommand counts one remote command or copy.
func (r *Recorder) RemoteCommand(err error) {
	if r == nil {
		return
	}
	r.remoteCommands.WithLabelValues(result(err)).Inc()
}

// Push sends the current registry contents to the Pushgateway at endpoint,
// grouped by instance.
func (r *Recorder) Push(ctx context.Context, endpoint, instance string) error {
	if r == nil {
		return nil
	}
	if endpoint == "" {
		return errors.New("pushgateway endpoint is empty")
	}
	return push.New(endpoint, namespace).
		Grouping("instance", instance).
		Gatherer(r.registry).
		PushContext(ctx)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

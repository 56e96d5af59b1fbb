package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics records deployment phase and collaborator call metrics in a
// dedicated registry. A nil *Metrics discards everything.
type Metrics struct {
	Registry *prometheus.Registry

	phaseDuration     *prometheus.HistogramVec
	phaseTotal        *prometheus.CounterVec
	collaboratorCalls *prometheus.CounterVec
}

// NewMetrics creates and registers the deployment metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tzchain",
				Subsystem: "deploy",
				Name:      "phase_duration_seconds",
				Help:      "Duration of deployment phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15), // 10ms to ~5min
			},
			[]string{"phase"},
		),
		phaseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tzchain",
				Subsystem: "deploy",
				Name:      "phase_total",
				Help:      "Total number of deployment phases by result",
			},
			[]string{"phase", "result"},
		),
		collaboratorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tzchain",
				Subsystem: "deploy",
				Name:      "collaborator_calls_total",
				Help:      "Total number of storage, build, cluster and DNS calls by result",
			},
			[]string{"operation", "result"},
		),
	}

	m.Registry.MustRegister(m.phaseDuration, m.phaseTotal, m.collaboratorCalls)
	return m
}

// ObservePhase records a finished phase.
func (m *Metrics) ObservePhase(phase string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
	m.phaseTotal.WithLabelValues(phase, result(err)).Inc()
}

// ObserveCall records a collaborator call.
func (m *Metrics) ObserveCall(operation string, err error) {
	if m == nil {
		return
	}
	m.collaboratorCalls.WithLabelValues(operation, result(err)).Inc()
}

// Push sends the registry to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, url, chain string) error {
	if m == nil || url == "" {
		return nil
	}
	err := push.New(url, "tzchain_deploy").
		Grouping("chain", chain).
		Gatherer(m.Registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

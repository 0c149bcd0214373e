// Package metrics records per-stage install metrics and exports them as a
// node_exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Metrics defines the observations made by the orchestrator.
type Metrics interface {
	ObserveStage(stage string, ok bool, durationSeconds float64)
	IncRetry(label string)
	SetOutcome(state string, exitCode int)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) ObserveStage(string, bool, float64) {}
func (Noop) IncRetry(string)                    {}
func (Noop) SetOutcome(string, int)             {}

// Prom implements Metrics on a private registry.
type Prom struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.GaugeVec
	stageStatus   *prometheus.GaugeVec
	retries       *prometheus.CounterVec
	exitCode      prometheus.Gauge
	outcome       *prometheus.GaugeVec
}

// NewProm constructs a Prom registered on its own registry.
func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each install stage",
		}, []string{"stage"}),
		stageStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_success",
			Help:      "1 if the stage succeeded, 0 if it failed",
		}, []string{"stage"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Re-attempts of transient actions by label",
		}, []string{"label"}),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exit_code",
			Help:      "Exit code of the last install run",
		}),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outcome",
			Help:      "Final install state of the last run",
		}, []string{"state"}),
	}
	p.registry.MustRegister(p.stageDuration, p.stageStatus, p.retries, p.exitCode, p.outcome)
	return p
}

// ObserveStage records how long stage took and whether it succeeded.
func (p *Prom) ObserveStage(stage string, ok bool, durationSeconds float64) {
	p.stageDuration.WithLabelValues(stage).Set(durationSeconds)
	v := 0.0
	if ok {
		v = 1
	}
	p.stageStatus.WithLabelValues(stage).Set(v)
}

// IncRetry counts one re-attempt of label.
func (p *Prom) IncRetry(label string) {
	p.retries.WithLabelValues(label).Inc()
}

// SetOutcome records the final state and exit code.
func (p *Prom) SetOutcome(state string, exitCode int) {
	p.outcome.Reset()
	p.outcome.WithLabelValues(state).Set(1)
	p.exitCode.Set(float64(exitCode))
}

// Registry exposes the underlying registry.
func (p *Prom) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (p *Prom) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf(messages.MetricsWriteFmt, path, err)
	}
	return nil
}

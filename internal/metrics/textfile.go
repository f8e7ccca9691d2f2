// Package metrics exports task run outcomes in the Prometheus text format.
package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tyemirov/winvitals/internal/taskengine"
)

const (
	metricsNamespaceConstant          = "winvitals"
	taskSubsystemConstant             = "task"
	runSubsystemConstant              = "run"
	statusMetricNameConstant          = "status"
	durationMetricNameConstant        = "duration_seconds"
	completedMetricNameConstant       = "completed_timestamp_seconds"
	statusMetricHelpConstant          = "Task result status for the most recent run, 1 for the reported status"
	durationMetricHelpConstant        = "Task execution duration for the most recent run in seconds"
	completedMetricHelpConstant       = "Completion time of the most recent run as a unix timestamp"
	runnerLabelConstant               = "runner"
	taskLabelConstant                 = "task"
	statusLabelConstant               = "status"
	metricsPathMissingMessageConstant = "metrics file path is required"
	statusActiveValueConstant         = 1
	statusInactiveValueConstant       = 0
)

// ErrMetricsPathMissing indicates that no textfile destination was configured.
var ErrMetricsPathMissing = errors.New(metricsPathMissingMessageConstant)

// TextfileExporter collects run reports and writes them for a textfile collector.
type TextfileExporter struct {
	registry        *prometheus.Registry
	statusGauge     *prometheus.GaugeVec
	durationGauge   *prometheus.GaugeVec
	completionGauge *prometheus.GaugeVec
}

// NewTextfileExporter constructs an exporter backed by a private registry.
func NewTextfileExporter() *TextfileExporter {
	registry := prometheus.NewRegistry()
	statusGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Subsystem: taskSubsystemConstant,
			Name:      statusMetricNameConstant,
			Help:      statusMetricHelpConstant,
		},
		[]string{runnerLabelConstant, taskLabelConstant, statusLabelConstant},
	)
	durationGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Subsystem: taskSubsystemConstant,
			Name:      durationMetricNameConstant,
			Help:      durationMetricHelpConstant,
		},
		[]string{runnerLabelConstant, taskLabelConstant},
	)
	completionGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Subsystem: runSubsystemConstant,
			Name:      completedMetricNameConstant,
			Help:      completedMetricHelpConstant,
		},
		[]string{runnerLabelConstant},
	)
	registry.MustRegister(statusGauge, durationGauge, completionGauge)

	return &TextfileExporter{
		registry:        registry,
		statusGauge:     statusGauge,
		durationGauge:   durationGauge,
		completionGauge: completionGauge,
	}
}

// Gatherer exposes the underlying registry.
func (exporter *TextfileExporter) Gatherer() prometheus.Gatherer {
	return exporter.registry
}

// Observe records every entry of the report. Each task publishes one series per status.
func (exporter *TextfileExporter) Observe(report taskengine.Report) {
	runnerName := string(report.Runner)
	for _, entry := range report.Entries {
		taskName := string(entry.Task)
		for _, status := range taskengine.AllStatuses() {
			value := float64(statusInactiveValueConstant)
			if status == entry.Result.Status {
				value = statusActiveValueConstant
			}
			exporter.statusGauge.WithLabelValues(runnerName, taskName, string(status)).Set(value)
		}
		exporter.durationGauge.WithLabelValues(runnerName, taskName).Set(entry.Duration.Seconds())
	}
	if !report.CompletedAt.IsZero() {
		exporter.completionGauge.WithLabelValues(runnerName).Set(float64(report.CompletedAt.Unix()))
	}
}

// WriteTextfile atomically writes the gathered metrics to the destination path.
func (exporter *TextfileExporter) WriteTextfile(destinationPath string) error {
	trimmedPath := strings.TrimSpace(destinationPath)
	if len(trimmedPath) == 0 {
		return ErrMetricsPathMissing
	}
	return prometheus.WriteToTextfile(trimmedPath, exporter.registry)
}
